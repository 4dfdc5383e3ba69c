// Package tui is the terminal client: one channel, refreshed by polling, with
// every message driven by a mounted chatitem.Item.
package tui

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"guildhall/internal/attachment"
	"guildhall/internal/chatitem"
	"guildhall/internal/entity"
	"guildhall/internal/form"
	"guildhall/internal/view"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// API is what the model needs from the server.
type API interface {
	chatitem.Updater
	BaseURL() string
	Messages(ctx context.Context, route chatitem.Route) (*Snapshot, error)
	Send(ctx context.Context, route chatitem.Route, content string) (*entity.Message, error)
	DeleteMessage(ctx context.Context, req chatitem.DeleteRequest) (*entity.Message, error)
}

type snapshotMsg struct {
	snap *Snapshot
	err  error
}

type tickMsg time.Time

type submitDoneMsg struct {
	id  string
	err error
}

type deleteDoneMsg struct {
	req chatitem.DeleteRequest
	msg *entity.Message
	err error
}

type sendDoneMsg struct {
	err error
}

type Model struct {
	api      API
	route    chatitem.Route
	interval time.Duration
	timeout  time.Duration

	keys  *chatitem.KeyBus
	feed  *chatitem.Feed
	items []*chatitem.Item
	index map[string]*chatitem.Item

	viewer  *entity.Member
	channel *entity.Channel

	selected int
	editing  *chatitem.Item
	editor   textinput.Model
	composer textinput.Model
	pending  *chatitem.DeleteRequest

	status string
	err    error
	width  int
}

func NewModel(api API, route chatitem.Route, interval time.Duration) *Model {
	editor := textinput.New()
	editor.CharLimit = form.MaxContentLength
	editor.Placeholder = "Edit message"

	composer := textinput.New()
	composer.CharLimit = form.MaxContentLength
	composer.Placeholder = "Message"

	return &Model{
		api:      api,
		route:    route,
		interval: interval,
		timeout:  10 * time.Second,
		keys:     chatitem.NewKeyBus(),
		feed:     chatitem.NewFeed(),
		index:    make(map[string]*chatitem.Item),
		editor:   editor,
		composer: composer,
	}
}

// ConfirmDelete parks the request until the user answers y or n.
func (m *Model) ConfirmDelete(req chatitem.DeleteRequest) {
	m.pending = &req
}

// Navigate has no pages to open in a terminal; the link is shown instead.
func (m *Model) Navigate(path string) {
	m.status = "Conversation: " + m.api.BaseURL() + path
}

func (m *Model) Init() tea.Cmd {
	return m.fetch()
}

func (m *Model) fetch() tea.Cmd {
	api, route, timeout := m.api, m.route, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		snap, err := api.Messages(ctx, route)
		return snapshotMsg{snap, err}
	}
}

func (m *Model) schedule() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) submit(item *chatitem.Item) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return submitDoneMsg{item.ID(), item.Submit(ctx)}
	}
}

func (m *Model) remove(req chatitem.DeleteRequest) tea.Cmd {
	api, timeout := m.api, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		msg, err := api.DeleteMessage(ctx, req)
		return deleteDoneMsg{req, msg, err}
	}
}

func (m *Model) send(content string) tea.Cmd {
	api, route, timeout := m.api, m.route, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := api.Send(ctx, route, content)
		return sendDoneMsg{err}
	}
}

// apply mounts new messages, publishes the canonical version of known ones
// and unmounts the ones that disappeared.
func (m *Model) apply(snap *Snapshot) {
	m.viewer = snap.Viewer
	m.channel = snap.Channel

	seen := make(map[string]bool, len(snap.Messages))
	items := make([]*chatitem.Item, 0, len(snap.Messages))
	for _, msg := range snap.Messages {
		seen[msg.ID] = true
		item, ok := m.index[msg.ID]
		if !ok {
			item = chatitem.New(msg, m.viewer, m.route, m.api, m)
			item.Mount(m.keys, m.feed)
			m.index[msg.ID] = item
		} else {
			m.feed.Publish(msg)
		}
		items = append(items, item)
	}
	for id, item := range m.index {
		if !seen[id] {
			if item == m.editing {
				item.Cancel()
				m.editing = nil
				m.editor.Blur()
			}
			item.Unmount()
			delete(m.index, id)
		}
	}
	m.items = items

	if m.selected >= len(m.items) {
		m.selected = len(m.items) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.syncEditor()
}

// syncEditor closes the input when the edited item left Editing on its own.
func (m *Model) syncEditor() {
	if m.editing != nil && m.editing.State() != chatitem.Editing {
		m.editing = nil
		m.editor.Blur()
	}
}

func (m *Model) current() *chatitem.Item {
	if m.selected < 0 || m.selected >= len(m.items) {
		return nil
	}
	return m.items[m.selected]
}

// Close releases every item subscription.
func (m *Model) Close() {
	for _, item := range m.index {
		item.Unmount()
	}
	clear(m.index)
	m.items = nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.editor.Width = msg.Width - 6
		m.composer.Width = msg.Width - 4
		return m, nil

	case tickMsg:
		return m, m.fetch()

	case snapshotMsg:
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.apply(msg.snap)
		}
		return m, m.schedule()

	case submitDoneMsg:
		if msg.err == nil {
			m.status = "Saved"
		}
		m.syncEditor()
		return m, nil

	case deleteDoneMsg:
		msg.req.Resolve(msg.err)
		if msg.err == nil && msg.msg != nil {
			m.feed.Publish(*msg.msg)
			m.status = "Deleted"
		}
		m.syncEditor()
		return m, nil

	case sendDoneMsg:
		if msg.err != nil {
			m.status = "Send failed: " + msg.err.Error()
			return m, nil
		}
		return m, m.fetch()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.Close()
		return m, tea.Quit
	}

	if m.pending != nil {
		switch msg.String() {
		case "y", "Y":
			req := *m.pending
			m.pending = nil
			return m, m.remove(req)
		case "n", "N", "esc":
			m.pending = nil
			m.status = ""
		}
		return m, nil
	}

	if m.editing != nil {
		return m.handleEditorKey(msg)
	}
	if m.composer.Focused() {
		return m.handleComposerKey(msg)
	}

	switch msg.String() {
	case "q":
		m.Close()
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.items)-1 {
			m.selected++
		}
	case "e":
		item := m.current()
		if item == nil {
			return m, nil
		}
		if err := item.RequestEdit(); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.editing = item
		m.editor.SetValue(item.Draft())
		m.editor.CursorEnd()
		return m, m.editor.Focus()
	case "d":
		if item := m.current(); item != nil {
			if err := item.RequestDelete(); err != nil {
				m.status = err.Error()
			}
		}
	case "a":
		if item := m.current(); item != nil {
			item.ClickAuthor()
		}
	case "i":
		return m, m.composer.Focus()
	case "x":
		if item := m.current(); item != nil {
			item.DismissError()
		}
	}
	return m, nil
}

func (m *Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.keys.Dispatch(chatitem.KeyEvent{Key: "Escape", Code: 27})
		m.syncEditor()
		return m, nil
	case "enter":
		if m.editing.Busy() {
			return m, nil
		}
		m.editing.SetDraft(m.editor.Value())
		return m, m.submit(m.editing)
	}

	if m.editing.Busy() {
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	m.editing.SetDraft(m.editor.Value())
	return m, cmd
}

func (m *Model) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.composer.Blur()
		return m, nil
	case "enter":
		content := strings.TrimSpace(m.composer.Value())
		if content == "" {
			return m, nil
		}
		m.composer.SetValue("")
		m.composer.Blur()
		return m, m.send(content)
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(msg)
	return m, cmd
}

func (m *Model) View() string {
	var b strings.Builder

	title := "#…"
	if m.channel != nil {
		title = "#" + m.channel.Name
	}
	if m.viewer != nil {
		title += "  as " + m.viewer.DisplayName()
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(mutedStyle.Render("No messages yet."))
		b.WriteString("\n")
	}
	for i, item := range m.items {
		block := m.renderItem(item.View())
		if i == m.selected {
			b.WriteString(selectedStyle.Render(block))
		} else {
			b.WriteString(itemStyle.Render(block))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.composer.Focused() {
		b.WriteString(m.composer.View())
		b.WriteString("\n")
	}
	b.WriteString(m.footer())
	return b.String()
}

func (m *Model) renderItem(vm chatitem.ViewModel) string {
	var b strings.Builder

	header := authorStyle.Render(vm.AuthorName)
	if glyph := view.Glyph(vm.RoleBadge); glyph != "" {
		header += " " + glyph
	}
	header += " " + timestampStyle.Render(vm.Timestamp)
	b.WriteString(header)
	b.WriteString("\n")

	switch vm.Attachment {
	case attachment.Image:
		b.WriteString(linkStyle.Render("[image] " + vm.AttachmentURL))
	case attachment.Document:
		b.WriteString(linkStyle.Render("[PDF File] " + vm.AttachmentURL))
	}

	switch {
	case vm.ShowEditor && m.editing != nil && m.editing.ID() == vm.ID:
		b.WriteString(m.editor.View())
		b.WriteString("\n")
		hint := vm.Hint
		if vm.Busy {
			hint = "Saving..."
		}
		b.WriteString(mutedStyle.Render(hint))
	case vm.ShowContent && vm.Deleted:
		b.WriteString(deletedStyle.Render(vm.Content))
	case vm.ShowContent:
		b.WriteString(vm.Content)
		if vm.Edited {
			b.WriteString(" " + mutedStyle.Render(chatitem.EditedMarker))
		}
	}

	if vm.Error != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(vm.Error))
	}
	return b.String()
}

func (m *Model) footer() string {
	if m.pending != nil {
		return promptStyle.Render("Delete this message? It will be permanently deleted. (y/n)")
	}

	var lines []string
	if m.err != nil {
		text := m.err.Error()
		var apiErr *APIError
		if errors.As(m.err, &apiErr) && apiErr.Status == http.StatusForbidden {
			text = "You are not a member of this server"
		}
		lines = append(lines, errorStyle.Render(text))
	}
	if m.status != "" {
		lines = append(lines, mutedStyle.Render(m.status))
	}
	help := "↑/↓ select • e edit • d delete • a author • i write • x dismiss • q quit"
	if m.editing != nil {
		help = "enter save • esc cancel"
	}
	lines = append(lines, mutedStyle.Render(help))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
