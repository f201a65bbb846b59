// Package tui is the interactive Taluka Master screen.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/idilsaglam/taluka/internal/logging"
	"github.com/idilsaglam/taluka/internal/master"
	"github.com/idilsaglam/taluka/internal/model"
)

// --- Messages ---

type loadedMsg struct {
	records []model.Taluka
	err     error
}

type submittedMsg struct {
	req master.SubmitRequest
	err error
}

type deletedMsg struct {
	req master.DeleteRequest
	err error
}

type toggledMsg struct {
	req master.ToggleRequest
	err error
}

type noticeExpiredMsg struct{ seq int }

// --- Focus ---

type focusArea int

const (
	focusList focusArea = iota
	focusForm
	focusSearch
	focusConfirm
)

const (
	fieldState = iota
	fieldDistrict
	fieldName
	fieldSubmit // the submit button
	fieldCount
)

// Model is the bubbletea model of the screen.
type Model struct {
	screen  *master.Screen
	svc     master.Service
	log     logrus.FieldLogger
	timeout time.Duration
	ttl     time.Duration

	list   list.Model
	inputs [fieldSubmit]textinput.Model
	field  int
	search textinput.Model
	focus  focusArea

	confirmID     int64
	confirmReturn focusArea

	reloadPending bool
	notice        *master.Notice
	noticeSeq     int

	keys   keyMap
	help   help.Model
	width  int
	height int
}

// Option tunes a Model.
type Option func(*Model)

// WithTimeout bounds each backend call.
func WithTimeout(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.timeout = d
		}
	}
}

// WithLogger sets where notices and failures are logged.
func WithLogger(l logrus.FieldLogger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithNoticeTTL sets how long a notice stays on screen.
func WithNoticeTTL(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.ttl = d
		}
	}
}

// New builds the screen on top of svc. Nothing is fetched until Init.
func New(svc master.Service, opts ...Option) Model {
	l := list.New(nil, rowDelegate{}, 80, 10)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowFilter(false)
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(true)
	l.SetShowPagination(true)
	l.SetStatusBarItemName("taluka", "talukas")
	l.Styles.PaginationStyle = helpStyle
	l.Styles.NoItems = mutedStyle.PaddingLeft(2)
	// q and esc are handled by the screen itself
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	m := Model{
		screen:  master.NewScreen(),
		svc:     svc,
		log:     logging.Discard(),
		timeout: 10 * time.Second,
		ttl:     4 * time.Second,
		list:    l,
		keys:    defaultKeyMap(),
		help:    help.New(),
		width:   80,
		height:  24,
	}
	labels := [fieldSubmit]string{"State", "District", "Taluka Name"}
	for i := range m.inputs {
		m.inputs[i] = newInput(labels[i], 40)
	}
	m.search = newInput("Search Taluka", 60)
	m.search.Prompt = "/ "

	for _, o := range opts {
		o(&m)
	}
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = limit
	ti.Width = 20
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// Run starts the full-screen program and blocks until the user quits.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Screen exposes the underlying state, mostly for tests.
func (m Model) Screen() *master.Screen { return m.screen }

// Init fetches the list.
func (m Model) Init() tea.Cmd {
	return m.reload()
}

// ---------------------------------------------------
// Update
// ---------------------------------------------------

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case loadedMsg:
		out := m.screen.FinishLoad(msg.records, msg.err)
		m.syncList()
		cmd := m.apply(out)
		if m.reloadPending {
			m.reloadPending = false
			cmd = tea.Batch(cmd, m.reload())
		}
		return m, cmd

	case submittedMsg:
		out := m.screen.FinishSubmit(msg.req, msg.err)
		if msg.err == nil {
			m.syncInputs()
			if m.focus == focusForm {
				m.setField(fieldState)
			}
		}
		cmd := m.apply(out)
		return m, cmd

	case deletedMsg:
		out := m.screen.FinishDelete(msg.req, msg.err)
		if msg.err == nil {
			m.syncList()
			m.syncInputs()
		}
		cmd := m.apply(out)
		return m, cmd

	case toggledMsg:
		cmd := m.apply(m.screen.FinishToggle(msg.req, msg.err))
		return m, cmd

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = nil
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ForceQuit) {
			return m, tea.Quit
		}
		switch m.focus {
		case focusConfirm:
			return m.updateConfirm(msg)
		case focusForm:
			return m.updateForm(msg)
		case focusSearch:
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Switch):
		m.focusForm(m.field)
		return m, nil

	case key.Matches(msg, m.keys.Add):
		m.screen.ClearDraft()
		m.syncInputs()
		m.focusForm(fieldState)
		return m, nil

	case key.Matches(msg, m.keys.Search):
		m.screen.ToggleSearch()
		if m.screen.Search().Mode == master.SearchVisible {
			m.focus = focusSearch
			m.search.Focus()
		} else {
			m.search.Blur()
		}
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.Reset):
		m.screen.ResetSearch()
		m.search.SetValue("")
		m.search.Blur()
		m.syncList()
		m.resize()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		cmd := m.reload()
		return m, cmd

	case key.Matches(msg, m.keys.Edit):
		if r, ok := m.selected(); ok && m.screen.EnterEdit(r.ID) {
			m.syncInputs()
			m.focusForm(fieldState)
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		r, ok := m.selected()
		if !ok {
			return m, nil
		}
		req, err := m.screen.BeginToggle(r.ID, r.Status)
		if err != nil {
			cmd := m.reject(err)
			return m, cmd
		}
		return m, m.send(func(ctx context.Context) tea.Msg {
			return toggledMsg{req: req, err: req.Send(ctx, m.svc)}
		})

	case key.Matches(msg, m.keys.Delete):
		if r, ok := m.selected(); ok {
			m.confirmID = r.ID
			m.confirmReturn = focusList
			m.focus = focusConfirm
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		// esc drops an edit back to a blank add form
		if _, editing := m.screen.Draft().EditingID(); editing {
			m.screen.ClearDraft()
			m.syncInputs()
		}
		m.blurForm()
		m.focus = focusList
		return m, nil

	case msg.Type == tea.KeyTab && m.field == fieldSubmit:
		m.blurForm()
		m.focus = focusList
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.setField((m.field + 1) % fieldCount)
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		m.setField((m.field + fieldCount - 1) % fieldCount)
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		m.pushFields()
		req, err := m.screen.BeginSubmit()
		if err != nil {
			cmd := m.reject(err)
			return m, cmd
		}
		return m, m.send(func(ctx context.Context) tea.Msg {
			return submittedMsg{req: req, err: req.Send(ctx, m.svc)}
		})
	}

	if m.field == fieldSubmit {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.field], cmd = m.inputs[m.field].Update(msg)
	m.pushFields()
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit), key.Matches(msg, m.keys.Back), msg.Type == tea.KeyTab:
		m.search.Blur()
		m.focus = focusList
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.screen.SetSearchTerm(m.search.Value())
	m.syncList()
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.focus = m.confirmReturn
		req, err := m.screen.BeginDelete(m.confirmID)
		if err != nil {
			cmd := m.reject(err)
			return m, cmd
		}
		return m, m.send(func(ctx context.Context) tea.Msg {
			return deletedMsg{req: req, err: req.Send(ctx, m.svc)}
		})
	case key.Matches(msg, m.keys.Deny):
		m.focus = m.confirmReturn
	}
	return m, nil
}

// ---------------------------------------------------
// Commands
// ---------------------------------------------------

// reload fetches the list, or queues one more fetch if a load is in flight.
func (m *Model) reload() tea.Cmd {
	if err := m.screen.BeginLoad(); err != nil {
		m.reloadPending = true
		return nil
	}
	svc := m.svc
	return m.send(func(ctx context.Context) tea.Msg {
		rs, err := svc.List(ctx)
		return loadedMsg{records: rs, err: err}
	})
}

// send runs fn off the update loop with the configured timeout.
func (m Model) send(fn func(ctx context.Context) tea.Msg) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return fn(ctx)
	}
}

// apply shows the outcome's notice and reloads when asked.
func (m *Model) apply(out master.Outcome) tea.Cmd {
	var cmds []tea.Cmd
	if out.Notice != nil {
		cmds = append(cmds, m.show(*out.Notice))
	}
	if out.Reload {
		cmds = append(cmds, m.reload())
	}
	return tea.Batch(cmds...)
}

func (m *Model) reject(err error) tea.Cmd {
	return m.show(master.Rejected(err))
}

func (m *Model) show(n master.Notice) tea.Cmd {
	if n.IsError() {
		m.log.WithField("notice", n.Text).Warn("operation failed")
	} else {
		m.log.WithField("notice", n.Text).Info("operation succeeded")
	}
	m.notice = &n
	m.noticeSeq++
	seq := m.noticeSeq
	return tea.Tick(m.ttl, func(time.Time) tea.Msg { return noticeExpiredMsg{seq: seq} })
}

// ---------------------------------------------------
// State plumbing
// ---------------------------------------------------

func (m *Model) selected() (model.Taluka, bool) {
	it, ok := m.list.SelectedItem().(rowItem)
	if !ok {
		return model.Taluka{}, false
	}
	return it.Taluka, true
}

// syncList rebuilds the rows from the filtered view.
func (m *Model) syncList() {
	idx := m.list.Index()
	m.list.SetItems(toItems(m.screen.Visible()))
	if n := len(m.list.Items()); idx >= n && n > 0 {
		idx = n - 1
	}
	m.list.Select(idx)
}

// syncInputs copies the draft into the form inputs.
func (m *Model) syncInputs() {
	d := m.screen.Draft()
	vals := [fieldSubmit]string{d.StateName, d.District, d.TalukaName}
	for i := range m.inputs {
		m.inputs[i].SetValue(vals[i])
		m.inputs[i].CursorEnd()
	}
}

// pushFields copies the form inputs into the draft.
func (m *Model) pushFields() {
	m.screen.SetFields(
		m.inputs[fieldState].Value(),
		m.inputs[fieldDistrict].Value(),
		m.inputs[fieldName].Value(),
	)
}

func (m *Model) focusForm(field int) {
	m.focus = focusForm
	m.setField(field)
}

func (m *Model) setField(field int) {
	m.field = field
	for i := range m.inputs {
		if i == field {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *Model) blurForm() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

// resize gives the list whatever the header, form and footer leave over.
func (m *Model) resize() {
	w := max(m.width-4, 20)
	for i := range m.inputs {
		m.inputs[i].Width = max((w-12)/3-2, 8)
	}
	m.search.Width = max(w/3, 12)

	used := 11 // title, form panel, table header, notice, help
	if m.screen.Search().Mode == master.SearchVisible {
		used++
	}
	m.list.SetSize(w, max(m.height-used, 3))
}

func (m Model) formTitle() (title, button string) {
	if _, editing := m.screen.Draft().EditingID(); editing {
		return "Edit Taluka", "Update"
	}
	return "Add Taluka", "Submit"
}
