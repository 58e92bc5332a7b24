package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"pastify/internal/models"
	"pastify/internal/session"
	"pastify/internal/shared"
	"pastify/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PasteView ViewState = iota
	HintView
	PickView
	NameView
	ConfirmView
	SubmitView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	view    ViewState
	session *session.Session
	width   int
	height  int

	paste  textarea.Model
	hint   textinput.Model
	name   textinput.Model
	picker list.Model

	lines            []string
	target           models.Playlist
	removeDuplicates bool

	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	result       *models.CommitResult
	err          error

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model around an active session.
//
// The session must already be in the ready state; login happens before the
// TUI launches.
func NewModel(ctx context.Context, sess *session.Session) *Model {
	paste := textarea.New()
	paste.Placeholder = "Paste track names, one per line..."
	paste.Focus()

	hint := textinput.New()
	hint.Placeholder = "Artist hint (optional)"

	name := textinput.New()
	name.Placeholder = "New playlist name"

	return &Model{
		ctx:              ctx,
		view:             PasteView,
		session:          sess,
		paste:            paste,
		hint:             hint,
		name:             name,
		removeDuplicates: true,
		help:             help.New(),
		keys:             newKeyMap(),
	}
}

// Init starts the cursor blink in the paste area.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.paste.SetWidth(msg.Width - 4)
		m.paste.SetHeight(msg.Height - 8)
		if m.picker.Width() != 0 {
			m.picker.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PasteView:
			return m.handlePasteKeys(msg)
		case HintView:
			return m.handleHintKeys(msg)
		case PickView:
			return m.handlePickKeys(msg)
		case NameView:
			return m.handleNameKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case submitCompleteMsg:
		m.result = msg.result
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		return m, nil
	}

	return m.updateInputs(msg)
}

// updateInputs forwards non-key messages (blinks, ticks) to the focused component.
func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PasteView:
		m.paste, cmd = m.paste.Update(msg)
	case HintView:
		m.hint, cmd = m.hint.Update(msg)
	case NameView:
		m.name, cmd = m.name.Update(msg)
	case PickView:
		m.picker, cmd = m.picker.Update(msg)
	}
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PasteView:
		return m.renderPaste()
	case HintView:
		return m.renderHint()
	case PickView:
		return m.renderPick()
	case NameView:
		return m.renderName()
	case ConfirmView:
		return m.renderConfirm()
	case SubmitView:
		return m.renderSubmit()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePasteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+d":
		lines := shared.SplitLines(m.paste.Value())
		if len(lines) == 0 {
			return m, nil
		}
		m.lines = lines
		m.hint.Focus()
		m.view = HintView
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	m.paste, cmd = m.paste.Update(msg)
	return m, cmd
}

func (m *Model) handleHintKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PasteView
		return m, nil
	case "enter":
		m.openPicker()
		return m, nil
	}

	var cmd tea.Cmd
	m.hint, cmd = m.hint.Update(msg)
	return m, cmd
}

func (m *Model) openPicker() {
	items := newPickerItems(m.session.Playlists())
	m.picker = list.New(items, list.NewDefaultDelegate(), m.width-4, m.height-8)
	m.picker.Title = "Add tracks to..."
	m.view = PickView
}

func (m *Model) handlePickKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = HintView
		return m, nil
	case "enter":
		selected := m.picker.SelectedItem()
		if selected == nil {
			return m, nil
		}
		item, ok := selected.(playlistItem)
		if !ok {
			return m, nil
		}
		if item.playlist.IsDraft() {
			m.name.Focus()
			m.view = NameView
			return m, textinput.Blink
		}
		m.target = item.playlist
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) handleNameKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PickView
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.name.Value())
		if name == "" {
			name = "New Playlist"
		}
		m.target = models.Draft(name)
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n", "esc":
		m.view = PickView
		return m, nil
	case "d":
		m.removeDuplicates = !m.removeDuplicates
		return m, nil
	case "y":
		m.view = SubmitView
		return m, m.startSubmit()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		if m.session.Status() == session.StatusLoggedOut {
			return m, tea.Quit
		}
		if m.session.Status() != session.StatusReady {
			if err := m.session.ClearMessage(); err != nil {
				m.err = err
				return m, tea.Quit
			}
		}
		m.view = PasteView
		m.paste.Reset()
		m.hint.Reset()
		m.name.Reset()
		m.lines = nil
		m.target = models.Playlist{}
		m.result = nil
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
		m.paste.Focus()
		return m, textarea.Blink
	}
	return m, nil
}

func (m *Model) startSubmit() tea.Cmd {
	req := tasks.CommitRequest{
		Lines:            m.lines,
		Target:           m.target,
		RemoveDuplicates: m.removeDuplicates,
	}
	if hint := strings.TrimSpace(m.hint.Value()); hint != "" {
		req.Hint = &models.Artist{Name: hint}
	}

	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func(ch chan tasks.ProgressUpdate) {
		result, err := m.session.Submit(m.ctx, req, ch)
		m.result = result
		m.err = err
		close(ch)
	}(m.progressChan)

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return submitCompleteMsg{result: m.result, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			return submitCompleteMsg{result: m.result, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPaste() string {
	title := styles.title.Render("Paste your tracks")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.done, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.paste.View(), helpView)
}

func (m *Model) renderHint() string {
	title := styles.title.Render("Narrow matches to one artist?")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.hint.View(), helpView)
}

func (m *Model) renderPick() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.picker.View(), helpView)
}

func (m *Model) renderName() string {
	title := styles.title.Render("Name the new playlist")
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.name.View(), helpView)
}

func (m *Model) renderConfirm() string {
	targetName := m.target.Name
	if m.target.IsDraft() {
		targetName = fmt.Sprintf("new playlist '%s'", m.target.Name)
	}

	title := styles.title.Render(fmt.Sprintf("Add %d lines to %s?", len(m.lines), targetName))

	dedupe := "on"
	if !m.removeDuplicates {
		dedupe = "off"
	}
	info := fmt.Sprintf("\nDuplicate filter: %s\n", dedupe)
	if hint := strings.TrimSpace(m.hint.Value()); hint != "" {
		info += fmt.Sprintf("Artist hint: %s\n", hint)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no, m.keys.dedupe, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderSubmit() string {
	title := styles.title.Render("Submitting")

	var phase string
	switch m.progress.Phase {
	case tasks.ResolveLines:
		phase = fmt.Sprintf("Matching tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.FilterDuplicates:
		phase = "Filtering duplicates..."
	case tasks.CreatePlaylist:
		phase = "Creating playlist..."
	case tasks.AddTracks:
		phase = "Adding tracks..."
	default:
		phase = "Working..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	switch m.session.Status() {
	case session.StatusSuccess:
		return fmt.Sprintf("%s\n%s\n\n%s", styles.ok.Render("✓ Done"), m.session.Message(), helpView)
	case session.StatusError:
		return fmt.Sprintf("%s\n%s\n\n%s", styles.err.Render("✗ Failed"), m.session.Message(), helpView)
	case session.StatusLoggedOut:
		return fmt.Sprintf("%s\n\nPress q to quit and log in again", styles.warn.Render("Session expired"))
	default:
		if m.err != nil {
			return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
		}
		return fmt.Sprintf("No result available\n\n%s", helpView)
	}
}
