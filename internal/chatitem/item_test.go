package chatitem

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"guildhall/internal/attachment"
	"guildhall/internal/entity"
	"guildhall/internal/form"
)

type MockUpdater struct {
	calls   int
	content string
	route   Route
	err     error
	block   chan struct{}
}

func (m *MockUpdater) UpdateMessage(ctx context.Context, route Route, messageID, content string) (*entity.Message, error) {
	m.calls++
	m.content = content
	m.route = route
	if m.block != nil {
		<-m.block
	}
	if m.err != nil {
		return nil, m.err
	}
	return &entity.Message{ID: messageID, Content: content, Edited: true}, nil
}

type MockCoordinator struct {
	deletes []DeleteRequest
	paths   []string
}

func (m *MockCoordinator) ConfirmDelete(req DeleteRequest) { m.deletes = append(m.deletes, req) }
func (m *MockCoordinator) Navigate(path string)           { m.paths = append(m.paths, path) }

var testRoute = Route{BaseURL: "/api/socket/messages", ServerID: "srv", ChannelID: "chn"}

func author(role entity.MemberRole) entity.Member {
	return entity.Member{ID: "author", Role: role, Profile: entity.Profile{Name: "Alice"}}
}

func textMessage(content string) entity.Message {
	return entity.Message{
		ID:        "msg-1",
		Content:   content,
		MemberID:  "author",
		Member:    author(entity.RoleGuest),
		CreatedAt: time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC),
	}
}

func ownItem(content string, updater Updater, coord Coordinator) *Item {
	msg := textMessage(content)
	viewer := msg.Member
	return New(msg, &viewer, testRoute, updater, coord)
}

func TestEditWithoutPermissionStaysViewing(t *testing.T) {
	msg := textMessage("hello")
	viewer := entity.Member{ID: "someone-else", Role: entity.RoleAdmin}
	it := New(msg, &viewer, testRoute, &MockUpdater{}, nil)

	if err := it.RequestEdit(); !errors.Is(err, ErrNotEditable) {
		t.Errorf("Expected ErrNotEditable, GOT %v", err)
	}
	if it.State() != Viewing {
		t.Errorf("State changed without permission")
	}
}

func TestAttachmentCannotBeEdited(t *testing.T) {
	msg := textMessage("img")
	url := "https://cdn/x.png"
	msg.FileURL = &url
	viewer := msg.Member
	it := New(msg, &viewer, testRoute, &MockUpdater{}, nil)

	if err := it.RequestEdit(); !errors.Is(err, ErrNotEditable) {
		t.Errorf("Expected ErrNotEditable, GOT %v", err)
	}
}

func TestEditSeedsDraft(t *testing.T) {
	it := ownItem("hello", &MockUpdater{}, nil)

	if err := it.RequestEdit(); err != nil {
		t.Fatalf("Expected no error, GOT %v", err)
	}
	if it.State() != Editing || it.Draft() != "hello" {
		t.Errorf("GOT state %s draft %q", it.State(), it.Draft())
	}
}

func TestEscapeDiscardsDraft(t *testing.T) {
	keys := NewKeyBus()
	it := ownItem("hello", &MockUpdater{}, nil)
	it.Mount(keys, nil)
	defer it.Unmount()

	it.RequestEdit()
	it.SetDraft("unsaved")

	keys.Dispatch(KeyEvent{Key: "a"})
	if it.State() != Editing {
		t.Fatalf("A non escape key left Editing")
	}

	keys.Dispatch(KeyEvent{Code: 27})
	if it.State() != Viewing {
		t.Errorf("Escape did not cancel editing")
	}
	if it.Draft() != "hello" {
		t.Errorf("Draft not discarded, GOT %q", it.Draft())
	}
}

func TestSubmitSuccess(t *testing.T) {
	updater := &MockUpdater{}
	it := ownItem("hello", updater, nil)

	it.RequestEdit()
	it.SetDraft("  hello world ")
	if err := it.Submit(context.Background()); err != nil {
		t.Fatalf("Expected no error, GOT %v", err)
	}

	if updater.calls != 1 || updater.content != "hello world" {
		t.Errorf("Updater GOT %d calls with %q", updater.calls, updater.content)
	}
	if updater.route != testRoute {
		t.Errorf("Route not forwarded: %+v", updater.route)
	}

	vm := it.View()
	if vm.State != Viewing || vm.Content != "hello world" || !vm.Edited {
		t.Errorf("Unexpected view after submit: %+v", vm)
	}
}

func TestSubmitEmptyStaysEditing(t *testing.T) {
	updater := &MockUpdater{}
	it := ownItem("hello", updater, nil)

	it.RequestEdit()
	it.SetDraft("   ")
	err := it.Submit(context.Background())
	if !errors.Is(err, form.ErrEmptyContent) {
		t.Errorf("Expected ErrEmptyContent, GOT %v", err)
	}
	if it.State() != Editing {
		t.Errorf("Validation failure must keep the editor open")
	}
	if updater.calls != 0 {
		t.Errorf("Invalid content reached the endpoint")
	}
	if it.View().Error == "" {
		t.Errorf("Validation error is not shown")
	}
}

func TestSubmitFailureIsSurfaced(t *testing.T) {
	updater := &MockUpdater{err: errors.New("503 service unavailable")}
	it := ownItem("hello", updater, nil)

	it.RequestEdit()
	it.SetDraft("new text")
	err := it.Submit(context.Background())

	if !errors.Is(err, ErrSubmitFailed) {
		t.Errorf("Expected ErrSubmitFailed, GOT %v", err)
	}
	if it.State() != Editing || it.Draft() != "new text" {
		t.Errorf("Failed submit must keep the draft in the editor")
	}
	vm := it.View()
	if !strings.Contains(vm.Error, "503") {
		t.Errorf("Error not visible: %q", vm.Error)
	}
	if vm.Content != "hello" || vm.Edited {
		t.Errorf("Displayed content changed without confirmation")
	}
}

func TestSubmitWhileBusy(t *testing.T) {
	updater := &MockUpdater{block: make(chan struct{})}
	it := ownItem("hello", updater, nil)
	it.RequestEdit()
	it.SetDraft("first")

	done := make(chan error)
	go func() { done <- it.Submit(context.Background()) }()

	deadline := time.Now().Add(2 * time.Second)
	for !it.Busy() {
		if time.Now().After(deadline) {
			t.Fatalf("Submit never became busy")
		}
		time.Sleep(time.Millisecond)
	}

	if err := it.Submit(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy, GOT %v", err)
	}
	if it.SetDraft("typing") {
		t.Errorf("Draft accepted input while busy")
	}

	close(updater.block)
	if err := <-done; err != nil {
		t.Errorf("Expected no error, GOT %v", err)
	}
	if it.Busy() {
		t.Errorf("Busy indicator stuck")
	}
}

func TestUnchangedSubmitIsIdempotent(t *testing.T) {
	updater := &MockUpdater{}
	it := ownItem("hello", updater, nil)

	for i := 0; i < 2; i++ {
		it.RequestEdit()
		if err := it.Submit(context.Background()); err != nil {
			t.Fatalf("Expected no error, GOT %v", err)
		}
	}

	vm := it.View()
	if vm.State != Viewing || vm.Content != "hello" || vm.Edited {
		t.Errorf("Unexpected state after identical submits: %+v", vm)
	}
	if updater.calls != 0 {
		t.Errorf("Unchanged content should not hit the endpoint")
	}
}

func TestSameContentTwice(t *testing.T) {
	updater := &MockUpdater{}
	it := ownItem("hello", updater, nil)

	var views []ViewModel
	for i := 0; i < 2; i++ {
		it.RequestEdit()
		it.SetDraft("changed")
		if err := it.Submit(context.Background()); err != nil {
			t.Fatalf("Expected no error, GOT %v", err)
		}
		views = append(views, it.View())
	}
	if views[0] != views[1] {
		t.Errorf("Displayed state differs:\n%+v\n%+v", views[0], views[1])
	}
}

func TestExternalUpdateResetsEditor(t *testing.T) {
	feed := NewFeed()
	it := ownItem("hello", &MockUpdater{}, nil)
	it.Mount(nil, feed)
	defer it.Unmount()

	it.RequestEdit()
	it.SetDraft("my local text")

	remote := textMessage("edited elsewhere")
	remote.Edited = true
	feed.Publish(remote)

	if it.State() != Viewing {
		t.Errorf("Remote edit must close the editor")
	}
	if it.Draft() != "edited elsewhere" {
		t.Errorf("Draft not reset: %q", it.Draft())
	}
	if !it.View().Edited {
		t.Errorf("Edited marker not applied")
	}
}

func TestFlagOnlyUpdateKeepsEditor(t *testing.T) {
	feed := NewFeed()
	it := ownItem("hello", &MockUpdater{}, nil)
	it.Mount(nil, feed)
	defer it.Unmount()

	it.RequestEdit()
	it.SetDraft("draft")

	same := textMessage("hello")
	same.Edited = true
	feed.Publish(same)

	if it.State() != Editing || it.Draft() != "draft" {
		t.Errorf("Unchanged content must not discard the draft")
	}
}

func TestDeletedMessageNeverEditsAgain(t *testing.T) {
	feed := NewFeed()
	it := ownItem("hello", &MockUpdater{}, nil)
	it.Mount(nil, feed)
	defer it.Unmount()

	it.RequestEdit()

	tomb := textMessage(entity.Tombstone)
	tomb.Deleted = true
	feed.Publish(tomb)

	if it.State() != Viewing {
		t.Errorf("Deletion must close the editor")
	}
	if err := it.RequestEdit(); !errors.Is(err, ErrNotEditable) {
		t.Errorf("Deleted message became editable: %v", err)
	}

	feed.Publish(textMessage("resurrected"))
	vm := it.View()
	if vm.Content != entity.Tombstone || !vm.Deleted || vm.Edited {
		t.Errorf("Tombstone revived: %+v", vm)
	}
}

func TestUnmountReleasesListeners(t *testing.T) {
	keys := NewKeyBus()
	feed := NewFeed()

	items := []*Item{ownItem("a", nil, nil), ownItem("b", nil, nil)}
	for _, it := range items {
		it.Mount(keys, feed)
		it.Mount(keys, feed)
	}
	if keys.Listeners() != 2 || feed.Subscribers() != 2 {
		t.Fatalf("GOT %d key listeners and %d feed subscribers", keys.Listeners(), feed.Subscribers())
	}

	for _, it := range items {
		it.Unmount()
		it.Unmount()
	}
	if keys.Listeners() != 0 || feed.Subscribers() != 0 {
		t.Errorf("Leaked %d key listeners and %d feed subscribers", keys.Listeners(), feed.Subscribers())
	}

	items[0].RequestEdit()
	keys.Dispatch(KeyEvent{Key: "Escape"})
	if items[0].State() != Editing {
		t.Errorf("Unmounted item still reacts to the keyboard")
	}
}

func TestRequestDelete(t *testing.T) {
	coord := &MockCoordinator{}
	msg := textMessage("bye")
	mod := entity.Member{ID: "mod", Role: entity.RoleModerator}
	it := New(msg, &mod, testRoute, nil, coord)

	if err := it.RequestDelete(); err != nil {
		t.Fatalf("Expected no error, GOT %v", err)
	}
	if len(coord.deletes) != 1 {
		t.Fatalf("Coordinator not asked to confirm")
	}
	req := coord.deletes[0]
	expected := "/api/socket/messages/msg-1?channelId=chn&serverId=srv"
	if req.URL != expected {
		t.Errorf("GOT[%s], EXPECTED[%s]", req.URL, expected)
	}
	if it.Message().Deleted {
		t.Errorf("Item must not delete by itself")
	}

	req.Resolve(errors.New("forbidden"))
	if !errors.Is(it.Err(), ErrDeleteFailed) {
		t.Errorf("Delete failure not surfaced: %v", it.Err())
	}
}

func TestGuestCannotRequestDelete(t *testing.T) {
	coord := &MockCoordinator{}
	guest := entity.Member{ID: "guest", Role: entity.RoleGuest}
	it := New(textMessage("x"), &guest, testRoute, nil, coord)

	if err := it.RequestDelete(); !errors.Is(err, ErrNotDeletable) {
		t.Errorf("Expected ErrNotDeletable, GOT %v", err)
	}
	if len(coord.deletes) != 0 {
		t.Errorf("Coordinator reached without permission")
	}
}

func TestClickAuthor(t *testing.T) {
	coord := &MockCoordinator{}
	own := ownItem("mine", nil, coord)
	if own.ClickAuthor() || len(coord.paths) != 0 {
		t.Errorf("Clicking yourself must be a no-op")
	}

	other := entity.Member{ID: "other", Role: entity.RoleGuest}
	it := New(textMessage("theirs"), &other, testRoute, nil, coord)
	if !it.ClickAuthor() {
		t.Fatalf("Expected navigation")
	}
	if coord.paths[0] != "/servers/srv/conversations/author" {
		t.Errorf("GOT[%s]", coord.paths[0])
	}
}

func TestViewModel(t *testing.T) {
	msg := textMessage("doc")
	url := "https://cdn/report.pdf"
	msg.FileURL = &url
	viewer := entity.Member{ID: "x", Role: entity.RoleGuest}

	vm := New(msg, &viewer, testRoute, nil, nil).View()
	if !vm.IsDocument() || vm.ShowContent || vm.ShowEditor {
		t.Errorf("Document message rendered wrong: %+v", vm)
	}
	if vm.Timestamp != "5 Mar 2024, 14:07" {
		t.Errorf("GOT[%s]", vm.Timestamp)
	}
	if vm.AuthorName != "Alice" {
		t.Errorf("GOT[%s]", vm.AuthorName)
	}
	if vm.IsViewer {
		t.Errorf("Another member's message marked as the viewer's")
	}

	it := ownItem("text", nil, nil)
	it.RequestEdit()
	vm = it.View()
	if !vm.ShowEditor || vm.Hint != EditHint || vm.Attachment != attachment.None {
		t.Errorf("Editor not shown: %+v", vm)
	}
	if !vm.IsViewer {
		t.Errorf("Own message not marked as the viewer's")
	}
}

func TestRender(t *testing.T) {
	viewer := entity.Member{ID: "author", Role: entity.RoleGuest}
	views := Render([]entity.Message{textMessage("a"), textMessage("b")}, &viewer, testRoute)
	if len(views) != 2 || !views[0].Permissions.CanEdit {
		t.Errorf("Unexpected render: %+v", views)
	}
}
