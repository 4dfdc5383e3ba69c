package service

import (
	"errors"
	"fmt"
	"testing"

	"guildhall/internal/data"
	"guildhall/internal/entity"
	"guildhall/internal/form"
	"guildhall/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type MockLogger struct{}

func (m *MockLogger) Logf(format string, v ...any) {}

type fixture struct {
	profiles ProfileService
	servers  ServerService
	messages MessageService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("Could not open database: %v", err)
	}
	storage, err := data.NewStorageManager(db)
	if err != nil {
		t.Fatalf("Could not build storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	logger := &MockLogger{}
	servers := NewServerService(storage.GetServerRepository(), storage.GetMemberRepository(), storage.GetChannelRepository(), logger)
	return &fixture{
		profiles: NewProfileService(storage.GetProfileRepository(), logger),
		servers:  servers,
		messages: NewMessageService(servers, storage.GetMessageRepository(), logger),
	}
}

func (f *fixture) profile(t *testing.T, name string) *entity.Profile {
	t.Helper()
	p, err := f.profiles.Identify(name, "")
	if err != nil {
		t.Fatalf("Identify(%s): %v", name, err)
	}
	return p
}

// guild creates a server owned by "owner" with "guest" joined, and returns the
// server and its general channel.
func (f *fixture) guild(t *testing.T) (*entity.Server, *entity.Channel, *entity.Profile, *entity.Profile) {
	t.Helper()
	owner := f.profile(t, "owner")
	guest := f.profile(t, "guest")

	server, err := f.servers.CreateServer(owner.ID, "Guild", "")
	if err != nil {
		t.Fatalf("CreateServer: %v", err)
	}
	if _, _, err := f.servers.JoinByInvite(guest.ID, server.InviteCode); err != nil {
		t.Fatalf("JoinByInvite: %v", err)
	}
	page, err := f.servers.ServerPage(server.ID, owner.ID)
	if err != nil {
		t.Fatalf("ServerPage: %v", err)
	}
	return server, &page.Channels[0], owner, guest
}

func TestIdentifyReusesProfile(t *testing.T) {
	f := newFixture(t)

	a := f.profile(t, "ada")
	b := f.profile(t, "  ada ")
	if a.ID != b.ID {
		t.Errorf("GOT[%s], EXPECTED[%s]", b.ID, a.ID)
	}
	if _, err := f.profiles.Identify("", ""); !errors.Is(err, form.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, GOT %v", err)
	}
}

func TestCreateServerSetsUpOwner(t *testing.T) {
	f := newFixture(t)
	server, general, owner, guest := f.guild(t)

	if general.Name != GeneralChannel || general.Type != entity.ChannelText {
		t.Errorf("Unexpected default channel: %+v", general)
	}

	viewer, err := f.servers.Viewer(server.ID, owner.ID)
	if err != nil || viewer == nil || viewer.Role != entity.RoleAdmin {
		t.Fatalf("Owner is not ADMIN: %+v %v", viewer, err)
	}

	page, err := f.servers.ServerPage(server.ID, guest.ID)
	if err != nil {
		t.Fatalf("Expected no error, GOT %v", err)
	}
	if page.Viewer == nil || page.Viewer.Role != entity.RoleGuest {
		t.Errorf("Guest membership missing: %+v", page.Viewer)
	}
	members := page.Directory.Groups[3].Data
	if len(members) != 1 || members[0].Name != "owner" {
		t.Errorf("Viewer must be excluded from the directory: %+v", members)
	}
}

func TestJoinTwiceKeepsMembership(t *testing.T) {
	f := newFixture(t)
	server, _, _, guest := f.guild(t)

	before, _ := f.servers.Viewer(server.ID, guest.ID)
	_, after, err := f.servers.JoinByInvite(guest.ID, server.InviteCode)
	if err != nil {
		t.Fatalf("Expected no error, GOT %v", err)
	}
	if before.ID != after.ID {
		t.Errorf("GOT[%s], EXPECTED[%s]", after.ID, before.ID)
	}
}

func TestUnknownServer(t *testing.T) {
	f := newFixture(t)

	if _, err := f.servers.ServerPage("missing", ""); !errors.Is(err, ErrServerNotFound) {
		t.Errorf("Expected ErrServerNotFound, GOT %v", err)
	}
	if _, _, err := f.servers.JoinByInvite("p", "bad-code"); !errors.Is(err, ErrServerNotFound) {
		t.Errorf("Expected ErrServerNotFound, GOT %v", err)
	}
}

func TestCreateChannelRules(t *testing.T) {
	f := newFixture(t)
	server, _, owner, guest := f.guild(t)

	if _, err := f.servers.CreateChannel(guest.ID, server.ID, "voice", entity.ChannelAudio); !errors.Is(err, ErrForbidden) {
		t.Errorf("Guest created a channel: %v", err)
	}
	if _, err := f.servers.CreateChannel(owner.ID, server.ID, "general", entity.ChannelText); !errors.Is(err, form.ErrInvalidInput) {
		t.Errorf("Reserved name accepted: %v", err)
	}
	if _, err := f.servers.CreateChannel(owner.ID, server.ID, "stage", "RADIO"); !errors.Is(err, form.ErrInvalidInput) {
		t.Errorf("Unknown type accepted: %v", err)
	}

	channel, err := f.servers.CreateChannel(owner.ID, server.ID, "voice", entity.ChannelAudio)
	if err != nil {
		t.Fatalf("Expected no error, GOT %v", err)
	}
	page, _ := f.servers.ServerPage(server.ID, owner.ID)
	audio := page.Directory.Groups[1].Data
	if len(audio) != 1 || audio[0].ID != channel.ID {
		t.Errorf("Audio channel missing from directory: %+v", audio)
	}
}

func TestMessagePermissions(t *testing.T) {
	f := newFixture(t)
	server, general, owner, guest := f.guild(t)

	msg, err := f.messages.Send(guest.ID, server.ID, general.ID, "hello", nil)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if _, err := f.messages.Edit(owner.ID, server.ID, general.ID, msg.ID, "hijack"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Admin edited someone else's message: %v", err)
	}

	edited, err := f.messages.Edit(guest.ID, server.ID, general.ID, msg.ID, "hello there")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if !edited.Edited || edited.Content != "hello there" {
		t.Errorf("Unexpected edit: %+v", edited)
	}

	if _, err := f.messages.Edit(guest.ID, server.ID, general.ID, msg.ID, "   "); !errors.Is(err, form.ErrEmptyContent) {
		t.Errorf("Expected ErrEmptyContent, GOT %v", err)
	}

	deleted, err := f.messages.Delete(owner.ID, server.ID, general.ID, msg.ID)
	if err != nil {
		t.Fatalf("Admin could not delete: %v", err)
	}
	if !deleted.Deleted || deleted.Content != entity.Tombstone {
		t.Errorf("Unexpected tombstone: %+v", deleted)
	}

	if _, err := f.messages.Edit(guest.ID, server.ID, general.ID, msg.ID, "again"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Deleted message was editable: %v", err)
	}
	if _, err := f.messages.Delete(guest.ID, server.ID, general.ID, msg.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Deleted message was deletable: %v", err)
	}
}

func TestAttachmentMessageCannotBeEdited(t *testing.T) {
	f := newFixture(t)
	server, general, _, guest := f.guild(t)

	url := "https://cdn.example.com/report.pdf"
	msg, err := f.messages.Send(guest.ID, server.ID, general.ID, "", &url)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := f.messages.Edit(guest.ID, server.ID, general.ID, msg.ID, "text"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Attachment message was editable: %v", err)
	}
}

func TestOutsiderIsForbidden(t *testing.T) {
	f := newFixture(t)
	server, general, _, _ := f.guild(t)
	outsider := f.profile(t, "outsider")

	if _, err := f.messages.Send(outsider.ID, server.ID, general.ID, "hi", nil); !errors.Is(err, ErrForbidden) {
		t.Errorf("Outsider posted: %v", err)
	}
	if _, err := f.messages.List(outsider.ID, server.ID, general.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("Outsider listed: %v", err)
	}
}

func TestListReturnsViewerAndAuthors(t *testing.T) {
	f := newFixture(t)
	server, general, owner, guest := f.guild(t)

	f.messages.Send(owner.ID, server.ID, general.ID, "first", nil)
	f.messages.Send(guest.ID, server.ID, general.ID, "second", nil)

	list, err := f.messages.List(guest.ID, server.ID, general.ID)
	if err != nil {
		t.Fatalf("Expected no error, GOT %v", err)
	}
	if list.Viewer == nil || list.Viewer.Profile.Name != "guest" {
		t.Errorf("Unexpected viewer: %+v", list.Viewer)
	}
	if len(list.Messages) != 2 {
		t.Fatalf("GOT %d messages, EXPECTED 2", len(list.Messages))
	}
	if list.Messages[0].Member.Profile.Name != "owner" {
		t.Errorf("Author not loaded: %+v", list.Messages[0].Member)
	}
}

func TestStorageErrorsBecomeSentinels(t *testing.T) {
	dup := errors.Join(repository.ErrDuplicate, errors.New("UNIQUE constraint failed: profiles.name"))
	if err := notFound(dup, ErrProfileNotFound); !errors.Is(err, ErrConflict) {
		t.Errorf("GOT[%v], EXPECTED[%v]", err, ErrConflict)
	}
	if err := notFound(repository.ErrNotFound, ErrServerNotFound); !errors.Is(err, ErrServerNotFound) {
		t.Errorf("GOT[%v], EXPECTED[%v]", err, ErrServerNotFound)
	}
	if err := notFound(nil, ErrServerNotFound); err != nil {
		t.Errorf("GOT[%v], EXPECTED[nil]", err)
	}
}
