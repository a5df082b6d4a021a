// Package tui is the interactive task list. It renders the controller's
// state and feeds its commands through the Bubble Tea event loop, which is
// the only goroutine that touches the controller.
package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/taskflow/internal/controller"
	"github.com/idilsaglam/taskflow/internal/model"
)

// listItem adapts a Todo to bubbles/list.Item
type listItem struct {
	todo model.Todo
}

func (i listItem) Title() string       { return i.todo.Body }
func (i listItem) Description() string { return "" }
func (i listItem) FilterValue() string { return i.todo.Body }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)
	box := mutedStyle.Render(boxUnchecked)
	text := it.todo.Body
	if it.todo.Completed {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+box+" "+text)
}

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
)

// status is the last notification; shared by pointer so the controller's
// notifier can write it while Model is passed by value.
type status struct {
	kind          controller.NoticeKind
	title, detail string
}

// Options configures the interactive list.
type Options struct {
	Repo   controller.Repository
	Logger *log.Logger
}

// Model is the Bubble Tea model for the task list.
type Model struct {
	ctl    *controller.Controller
	status *status

	list list.Model
	ti   textinput.Model // shared by add and edit
	spin spinner.Model

	mode     mode
	inputErr string
	width    int
	height   int
}

var (
	addBind     = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind    = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	doneBind    = key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("x", "complete"))
	deleteBind  = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	refreshBind = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
)

// New builds the model. The list loads when the program calls Init.
func New(opts Options) Model {
	st := &status{}
	notifier := controller.NotifyFunc(func(kind controller.NoticeKind, title, detail string) {
		*st = status{kind: kind, title: title, detail: detail}
	})
	ctl := controller.New(opts.Repo, controller.Options{Notifier: notifier, Logger: opts.Logger})

	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = statsLine(ctl.Stats())
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("task", "tasks")
	bindings := func() []key.Binding {
		return []key.Binding{addBind, editBind, doneBind, deleteBind, refreshBind}
	}
	l.AdditionalShortHelpKeys = bindings
	l.AdditionalFullHelpKeys = bindings

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctl:    ctl,
		status: st,
		list:   l,
		ti:     ti,
		spin:   sp,
		width:  80,
		height: 24,
	}
	m.resize()
	return m
}

// Run starts the interactive list on the alternate screen.
func Run(opts Options) error {
	m := New(opts)
	defer m.ctl.Close()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.ctl.Refresh(), m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case controller.ListedMsg, controller.CompletedMsg, controller.DeletedMsg:
		cmd := m.ctl.Update(msg)
		m.sync()
		return m, cmd

	case controller.CreatedMsg:
		cmd := m.ctl.Update(msg)
		if msg.Err == nil && m.mode == modeAdd {
			m.closeInput()
		}
		m.sync()
		return m, cmd

	case controller.UpdatedMsg:
		cmd := m.ctl.Update(msg)
		if m.mode == modeEdit && m.ctl.State().Edit == nil {
			m.closeInput()
		}
		m.sync()
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateAdd(msg)
		case modeEdit:
			return m.updateEdit(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateAdd(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	submitting := m.ctl.State().Submitting
	switch msg.String() {
	case "enter":
		// submit is disabled while a create is in flight
		if submitting {
			return m, nil
		}
		if strings.TrimSpace(m.ti.Value()) == "" {
			m.inputErr = "Task cannot be empty"
			return m, nil
		}
		m.inputErr = ""
		return m, m.ctl.SubmitCreate(m.ti.Value())
	case "esc":
		m.ctl.SetInput("")
		m.closeInput()
		return m, nil
	}
	if submitting {
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	m.ctl.SetInput(m.ti.Value())
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if strings.TrimSpace(m.ti.Value()) == "" {
			m.inputErr = "Task cannot be empty"
			return m, nil
		}
		m.inputErr = ""
		return m, m.ctl.CommitEdit()
	case "esc":
		m.ctl.CancelEdit()
		m.closeInput()
		return m, nil
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	m.ctl.SetEditBuffer(m.ti.Value())
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.ctl.Close()
		return m, tea.Quit
	case "a":
		m.mode = modeAdd
		m.ti.SetValue(m.ctl.State().Input)
		m.ti.CursorEnd()
		m.ti.Placeholder = "What would you like to accomplish today?"
		m.resize()
		cmd := m.ti.Focus()
		return m, cmd
	case "e":
		todo, ok := m.selected()
		if !ok {
			return m, nil
		}
		if !m.ctl.BeginEdit(todo.ID) {
			*m.status = status{kind: controller.Failure, title: "Completed tasks can't be edited"}
			return m, nil
		}
		m.mode = modeEdit
		m.ti.SetValue(todo.Body)
		m.ti.CursorEnd()
		m.ti.Placeholder = "Edit task..."
		m.resize()
		cmd := m.ti.Focus()
		return m, cmd
	case " ", "x":
		if todo, ok := m.selected(); ok {
			return m, m.ctl.Complete(todo.ID)
		}
		return m, nil
	case "d":
		if todo, ok := m.selected(); ok {
			return m, m.ctl.Delete(todo.ID)
		}
		return m, nil
	case "r":
		return m, m.ctl.Refresh()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) selected() (model.Todo, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return model.Todo{}, false
	}
	return it.todo, true
}

func (m *Model) closeInput() {
	m.mode = modeBrowse
	m.inputErr = ""
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

// sync copies the controller's list into the list widget.
func (m *Model) sync() {
	todos := m.ctl.Todos()
	items := make([]list.Item, 0, len(todos))
	for _, t := range todos {
		items = append(items, listItem{todo: t})
	}
	m.list.SetItems(items)
	if idx := m.list.Index(); idx >= len(items) && len(items) > 0 {
		m.list.Select(len(items) - 1)
	}
	m.list.Title = statsLine(m.ctl.Stats())
}

func (m *Model) resize() {
	listHeight := m.height - 5
	if m.mode != modeBrowse {
		listHeight -= 4
	}
	if listHeight < 3 {
		listHeight = 3
	}
	m.list.SetSize(m.width-4, listHeight)
}

func (m Model) View() string {
	st := m.ctl.State()

	var content string
	switch {
	case st.Loading && len(st.Todos) == 0:
		content = m.spin.View() + " Loading tasks..."
	case m.ctl.Empty():
		content = strings.Join([]string{
			statsLine(m.ctl.Stats()),
			"",
			titleStyle.Render("No tasks yet"),
			mutedStyle.Render("Start building your workflow by adding your first task."),
			"",
			helpStyle.Render("a add • r refresh • q quit"),
		}, "\n")
	default:
		content = m.list.View()
	}

	if m.mode != modeBrowse {
		title := "Add new task"
		if m.mode == modeEdit {
			title = "Edit task"
		}
		if st.Submitting {
			title += " " + m.spin.View()
		}
		if m.inputErr != "" {
			title += " - " + errorStyle.Render(m.inputErr)
		}
		content += "\n" + frameStyle.Render(title+"\n"+m.ti.View())
	}

	if line := m.statusLine(st.Loading && len(st.Todos) > 0); line != "" {
		content += "\n" + line
	}
	return frameStyle.Render(content)
}

func (m Model) statusLine(refreshing bool) string {
	var parts []string
	if refreshing {
		parts = append(parts, m.spin.View()+" refreshing")
	}
	if m.status.title != "" {
		style := successStyle
		if m.status.kind == controller.Failure {
			style = errorStyle
		}
		msg := style.Render(m.status.title)
		if m.status.detail != "" {
			msg += " " + mutedStyle.Render(m.status.detail)
		}
		parts = append(parts, msg)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(parts, "  "))
}
