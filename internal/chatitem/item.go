// Package chatitem holds the per-message interaction state: who may edit or
// delete it, the edit lifecycle and what a message looks like in each state.
//
// An Item starts in Viewing. The author of a text message may switch it to
// Editing, where a draft is kept until it is submitted, cancelled with Escape
// or overwritten by a newer canonical version of the message.
package chatitem

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"guildhall/internal/entity"
	"guildhall/internal/form"
	"guildhall/internal/policy"
)

type State int

const (
	Viewing State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

var (
	ErrNotEditable   = errors.New("message cannot be edited")
	ErrNotDeletable  = errors.New("message cannot be deleted")
	ErrNotEditing    = errors.New("message is not being edited")
	ErrBusy          = errors.New("an update is already in progress")
	ErrSubmitFailed  = errors.New("could not save the message")
	ErrDeleteFailed  = errors.New("could not delete the message")
	ErrNoCoordinator = errors.New("no coordinator attached")
)

// Updater sends an edited message body to the message endpoint and returns
// the canonical message.
type Updater interface {
	UpdateMessage(ctx context.Context, route Route, messageID, content string) (*entity.Message, error)
}

// Coordinator owns the actions an item cannot perform on its own.
type Coordinator interface {
	ConfirmDelete(req DeleteRequest)
	Navigate(path string)
}

// DeleteRequest asks the coordinator to confirm and perform a deletion.
type DeleteRequest struct {
	MessageID string
	URL       string
	Route     Route

	resolve func(error)
}

// Resolve reports the outcome back to the item. A nil error means the
// tombstone will arrive through the feed.
func (r DeleteRequest) Resolve(err error) {
	if r.resolve != nil {
		r.resolve(err)
	}
}

type Item struct {
	mu sync.Mutex

	msg     entity.Message
	viewer  *entity.Member
	route   Route
	updater Updater
	coord   Coordinator

	state State
	draft string
	busy  bool
	err   error

	cancels []func()
}

// New wraps msg, whose Member field must hold the author. viewer may be nil.
func New(msg entity.Message, viewer *entity.Member, route Route, updater Updater, coord Coordinator) *Item {
	return &Item{
		msg:     msg,
		viewer:  viewer,
		route:   route,
		updater: updater,
		coord:   coord,
		state:   Viewing,
		draft:   msg.Content,
	}
}

// Mount attaches the item to the keyboard and to canonical content updates.
// Calling it on a mounted item is a no-op.
func (it *Item) Mount(keys KeySource, feed ContentSource) {
	it.mu.Lock()
	defer it.mu.Unlock()

	if len(it.cancels) > 0 {
		return
	}
	if keys != nil {
		it.cancels = append(it.cancels, keys.SubscribeKeys(it.HandleKey))
	}
	if feed != nil {
		it.cancels = append(it.cancels, feed.SubscribeMessage(it.msg.ID, it.Sync))
	}
}

// Unmount releases every subscription taken by Mount.
func (it *Item) Unmount() {
	it.mu.Lock()
	cancels := it.cancels
	it.cancels = nil
	it.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

func (it *Item) ID() string {
	return it.msg.ID
}

func (it *Item) State() State {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.state
}

func (it *Item) Draft() string {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.draft
}

func (it *Item) Busy() bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.busy
}

// Err is the last failure the user has not dismissed yet.
func (it *Item) Err() error {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.err
}

func (it *Item) Message() entity.Message {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.msg
}

func (it *Item) Permissions() policy.Permissions {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.permissions()
}

func (it *Item) permissions() policy.Permissions {
	return policy.ComputePermissions(it.viewer, &it.msg, &it.msg.Member)
}

// RequestEdit enters Editing with the draft seeded from the current content.
func (it *Item) RequestEdit() error {
	it.mu.Lock()
	defer it.mu.Unlock()

	if !it.permissions().CanEdit {
		return ErrNotEditable
	}
	if it.state == Editing {
		return nil
	}
	it.state = Editing
	it.draft = it.msg.Content
	it.err = nil
	return nil
}

// SetDraft replaces the draft. Input is refused outside Editing and while a
// submit is in flight.
func (it *Item) SetDraft(text string) bool {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.state != Editing || it.busy {
		return false
	}
	it.draft = text
	return true
}

func (it *Item) HandleKey(ev KeyEvent) {
	if !ev.IsEscape() {
		return
	}
	it.Cancel()
}

// Cancel drops the draft and goes back to Viewing without touching the network.
func (it *Item) Cancel() {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.state != Editing {
		return
	}
	it.state = Viewing
	it.draft = it.msg.Content
	it.err = nil
}

// Submit validates the draft and sends it to the updater. The item stays in
// Editing on any failure and keeps the error for display.
func (it *Item) Submit(ctx context.Context) error {
	it.mu.Lock()
	if it.state != Editing {
		it.mu.Unlock()
		return ErrNotEditing
	}
	if it.busy {
		it.mu.Unlock()
		return ErrBusy
	}

	content := strings.TrimSpace(it.draft)
	if err := form.ValidateContent(content); err != nil {
		it.err = err
		it.mu.Unlock()
		return err
	}
	if content == it.msg.Content {
		it.state = Viewing
		it.draft = it.msg.Content
		it.err = nil
		it.mu.Unlock()
		return nil
	}
	if it.updater == nil {
		it.err = fmt.Errorf("%w: no message endpoint", ErrSubmitFailed)
		it.mu.Unlock()
		return it.err
	}

	it.busy = true
	it.err = nil
	route, id := it.route, it.msg.ID
	it.mu.Unlock()

	updated, err := it.updater.UpdateMessage(ctx, route, id, content)

	it.mu.Lock()
	defer it.mu.Unlock()

	it.busy = false
	if err != nil {
		it.err = fmt.Errorf("%w: %w", ErrSubmitFailed, err)
		return it.err
	}
	if updated != nil {
		it.apply(*updated)
	}
	it.state = Viewing
	it.draft = it.msg.Content
	return nil
}

// Sync receives the canonical message. New content or a deletion closes the
// editor and resets the draft, whatever was typed locally.
func (it *Item) Sync(msg entity.Message) {
	it.mu.Lock()
	defer it.mu.Unlock()

	if msg.ID != it.msg.ID {
		return
	}
	changed := msg.Content != it.msg.Content || msg.Deleted != it.msg.Deleted
	if !it.apply(msg) || !changed {
		return
	}
	it.state = Viewing
	it.draft = it.msg.Content
	it.err = nil
}

// apply copies the mutable fields of msg. A tombstone is never revived.
func (it *Item) apply(msg entity.Message) bool {
	if it.msg.Deleted && !msg.Deleted {
		return false
	}
	it.msg.Content = msg.Content
	it.msg.FileURL = msg.FileURL
	it.msg.Deleted = msg.Deleted
	it.msg.Edited = msg.Edited
	if !msg.UpdatedAt.IsZero() {
		it.msg.UpdatedAt = msg.UpdatedAt
	}
	if msg.Member.ID != "" {
		it.msg.Member = msg.Member
	}
	return true
}

// RequestDelete hands the deletion over to the coordinator.
func (it *Item) RequestDelete() error {
	it.mu.Lock()
	if !it.permissions().CanDelete {
		it.mu.Unlock()
		return ErrNotDeletable
	}
	if it.coord == nil {
		it.mu.Unlock()
		return ErrNoCoordinator
	}
	req := DeleteRequest{
		MessageID: it.msg.ID,
		URL:       it.route.MessageURL(it.msg.ID),
		Route:     it.route,
		resolve:   it.resolveDelete,
	}
	coord := it.coord
	it.mu.Unlock()

	coord.ConfirmDelete(req)
	return nil
}

func (it *Item) resolveDelete(err error) {
	if err == nil {
		return
	}
	it.mu.Lock()
	it.err = fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	it.mu.Unlock()
}

// ClickAuthor opens a direct conversation with the author. Clicking on
// yourself does nothing.
func (it *Item) ClickAuthor() bool {
	it.mu.Lock()
	if it.coord == nil || it.viewer == nil || policy.IsSameMember(it.viewer, &it.msg.Member) {
		it.mu.Unlock()
		return false
	}
	path := ConversationPath(it.route.ServerID, it.msg.Member.ID)
	coord := it.coord
	it.mu.Unlock()

	coord.Navigate(path)
	return true
}

// DismissError clears a displayed failure.
func (it *Item) DismissError() {
	it.mu.Lock()
	it.err = nil
	it.mu.Unlock()
}
