// Package controller owns the todo list shown to the user and every piece of
// transient UI state around it.
//
// The list is only ever replaced by a successful refresh. Mutations call the
// repository and, on success, end with exactly one refresh; they never patch
// the list themselves. Each operation adjusts state synchronously and returns
// a tea.Cmd performing the network call; its result comes back as a message
// for Update. Nothing orders overlapping commands: if two refreshes are in
// flight, whichever result Update sees last wins, even if it is older.
package controller

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/taskflow/internal/logging"
	"github.com/idilsaglam/taskflow/internal/model"
)

// Repository is the remote store. *api.Client implements it.
type Repository interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, body string) (model.Todo, error)
	Update(ctx context.Context, id, body string) error
	Complete(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// Edit is the open edit, if any.
type Edit struct {
	ID     string
	Buffer string
}

// State is the whole client-side record. Loading, Submitting and Edit are
// independent of each other.
type State struct {
	Todos      []model.Todo
	Loading    bool
	Submitting bool
	Input      string // create buffer
	Edit       *Edit
}

// Options configures a Controller.
type Options struct {
	Notifier Notifier
	Logger   *log.Logger
	// Context is handed to every repository call. Defaults to Background.
	Context context.Context
}

// Controller is not safe for concurrent use: call its methods and Update
// from one goroutine, typically the Bubble Tea event loop. The commands it
// returns may run anywhere.
type Controller struct {
	repo     Repository
	notify   Notifier
	logger   *log.Logger
	ctx      context.Context
	state    State
	disposed bool
}

// New returns a controller with an empty list. Call Refresh to load it.
func New(repo Repository, opts Options) *Controller {
	c := &Controller{
		repo:   repo,
		notify: opts.Notifier,
		logger: opts.Logger,
		ctx:    opts.Context,
		state:  State{Todos: []model.Todo{}},
	}
	if c.notify == nil {
		c.notify = Discard
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	if c.ctx == nil {
		c.ctx = context.Background()
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	s := c.state
	s.Todos = append([]model.Todo(nil), c.state.Todos...)
	if c.state.Edit != nil {
		e := *c.state.Edit
		s.Edit = &e
	}
	return s
}

// Todos returns the canonical list. Callers must not modify it.
func (c *Controller) Todos() []model.Todo { return c.state.Todos }

// Stats recomputes the statistics from the current list.
func (c *Controller) Stats() model.Stats { return model.Summarize(c.state.Todos) }

// Empty reports whether the empty-state view applies.
func (c *Controller) Empty() bool { return !c.state.Loading && len(c.state.Todos) == 0 }

// Close disposes the controller. Results of commands still in flight are
// dropped when they arrive.
func (c *Controller) Close() { c.disposed = true }

// Refresh starts a full reload of the list.
func (c *Controller) Refresh() tea.Cmd {
	c.state.Loading = true
	repo, ctx := c.repo, c.ctx
	return func() tea.Msg {
		todos, err := repo.List(ctx)
		return ListedMsg{Todos: todos, Err: err}
	}
}

// SetInput replaces the create buffer.
func (c *Controller) SetInput(text string) { c.state.Input = text }

// SubmitCreate creates a todo from text. Blank text is ignored without
// contacting the server. Calls are not de-duplicated: submitting twice before
// the first result arrives creates two todos.
func (c *Controller) SubmitCreate(text string) tea.Cmd {
	body := strings.TrimSpace(text)
	if body == "" {
		return nil
	}
	c.state.Input = text
	c.state.Submitting = true
	repo, ctx := c.repo, c.ctx
	return func() tea.Msg {
		_, err := repo.Create(ctx, body)
		return CreatedMsg{Body: body, Err: err}
	}
}

// BeginEdit opens an edit on id with its current body. It refuses, returning
// false, when another edit is open, the todo is completed or unknown.
func (c *Controller) BeginEdit(id string) bool {
	if c.state.Edit != nil {
		return false
	}
	todo, ok := model.Find(c.state.Todos, id)
	if !ok || todo.Completed {
		return false
	}
	c.state.Edit = &Edit{ID: id, Buffer: todo.Body}
	return true
}

// SetEditBuffer replaces the text of the open edit.
func (c *Controller) SetEditBuffer(text string) {
	if c.state.Edit != nil {
		c.state.Edit.Buffer = text
	}
}

// CommitEdit sends the edit buffer. Nothing happens when no edit is open or
// the buffer is blank.
func (c *Controller) CommitEdit() tea.Cmd {
	if c.state.Edit == nil {
		return nil
	}
	body := strings.TrimSpace(c.state.Edit.Buffer)
	if body == "" {
		return nil
	}
	id := c.state.Edit.ID
	repo, ctx := c.repo, c.ctx
	return func() tea.Msg {
		return UpdatedMsg{ID: id, Body: body, Err: repo.Update(ctx, id, body)}
	}
}

// CancelEdit drops the open edit locally.
func (c *Controller) CancelEdit() { c.state.Edit = nil }

// Complete marks id completed. Already completed todos are skipped.
func (c *Controller) Complete(id string) tea.Cmd {
	if todo, ok := model.Find(c.state.Todos, id); ok && todo.Completed {
		return nil
	}
	repo, ctx := c.repo, c.ctx
	return func() tea.Msg {
		return CompletedMsg{ID: id, Err: repo.Complete(ctx, id)}
	}
}

// Delete removes id.
func (c *Controller) Delete(id string) tea.Cmd {
	repo, ctx := c.repo, c.ctx
	return func() tea.Msg {
		return DeletedMsg{ID: id, Err: repo.Delete(ctx, id)}
	}
}

// Update applies a command result and returns the follow-up command, which
// is a refresh after every successful mutation. Other messages are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	if c.disposed {
		return nil
	}
	switch msg := msg.(type) {
	case ListedMsg:
		c.state.Loading = false
		if msg.Err != nil {
			c.fail("refresh", msg.Err, "Failed to fetch todos", "Please check your connection and try again")
			return nil
		}
		c.state.Todos = msg.Todos
		if c.state.Todos == nil {
			c.state.Todos = []model.Todo{}
		}
		return nil

	case CreatedMsg:
		c.state.Submitting = false
		if msg.Err != nil {
			c.fail("create", msg.Err, "Failed to create task", "Please check your connection and try again")
			return nil
		}
		c.state.Input = ""
		c.notify.Notify(Success, "Task created successfully", `"`+msg.Body+`" added to your workflow`)
		return c.Refresh()

	case UpdatedMsg:
		if msg.Err != nil {
			c.fail("update", msg.Err, "Failed to update task", "Please try again")
			return nil
		}
		if c.state.Edit != nil && c.state.Edit.ID == msg.ID {
			c.state.Edit = nil
		}
		c.notify.Notify(Success, "Task updated successfully", "Changes saved to your workflow")
		return c.Refresh()

	case CompletedMsg:
		if msg.Err != nil {
			c.fail("complete", msg.Err, "Failed to complete task", "Please try again")
			return nil
		}
		c.notify.Notify(Success, "Task completed!", "Great work on finishing this task")
		return c.Refresh()

	case DeletedMsg:
		if msg.Err != nil {
			c.fail("delete", msg.Err, "Failed to delete task", "Please try again")
			return nil
		}
		c.notify.Notify(Success, "Task removed", "Task deleted from your workflow")
		return c.Refresh()
	}
	return nil
}

// Await runs cmd and every follow-up command on the calling goroutine until
// the chain ends. The CLI uses it in place of an event loop.
func (c *Controller) Await(cmd tea.Cmd) {
	for cmd != nil {
		cmd = c.Update(cmd())
	}
}

func (c *Controller) fail(op string, err error, title, detail string) {
	c.logger.Warn(title, "op", op, "err", err)
	c.notify.Notify(Failure, title, detail)
}
