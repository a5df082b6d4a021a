package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/taskflow/internal/auth"
	"github.com/idilsaglam/taskflow/internal/controller"
	"github.com/idilsaglam/taskflow/internal/model"
	"github.com/idilsaglam/taskflow/internal/ui"
)

// Options carry root flags and the collaborators every subcommand needs.
type Options struct {
	Group  bool // list grouped by pending/done
	Repo   controller.Repository
	Logger *log.Logger
	Auth   auth.Store

	// ReadToken prompts for a token on `auth login` with no argument.
	ReadToken func() (string, error)
	// Interactive starts the TUI for the `tui` subcommand.
	Interactive func() error
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0

	case "ls":
		return doList(opt)

	case "stats":
		return doStats(opt)

	case "add":
		if len(a) == 0 {
			ui.Fail("usage: taskflow add <body...>")
			return 2
		}
		return doAdd(opt, strings.Join(a, " "))

	case "edit":
		if len(a) < 2 {
			ui.Fail("usage: taskflow edit <index> <body...>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail("edit: not a number: " + a[0])
			return 2
		}
		return doEdit(opt, n, strings.Join(a[1:], " "))

	case "done":
		if len(a) != 1 {
			ui.Fail("usage: taskflow done <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail("done: not a number: " + a[0])
			return 2
		}
		return doComplete(opt, n)

	case "rm":
		if len(a) != 1 {
			ui.Fail("usage: taskflow rm <index>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.Fail("rm: not a number: " + a[0])
			return 2
		}
		return doRemove(opt, n)

	case "tui":
		if opt.Interactive == nil {
			ui.Fail("tui: not available")
			return 1
		}
		if err := opt.Interactive(); err != nil {
			ui.Fail("tui: " + err.Error())
			return 1
		}
		return 0

	case "auth":
		if len(a) == 0 {
			ui.Fail("usage: taskflow auth <login|logout|status|whoami>")
			return 2
		}
		switch a[0] {
		case "login":
			return doAuthLogin(opt, a[1:])
		case "logout":
			return doAuthLogout(opt)
		case "status":
			return doAuthStatus(opt)
		case "whoami":
			return doAuthWhoAmI(opt)
		default:
			ui.Fail("usage: taskflow auth <login|logout|status|whoami>")
			return 2
		}
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(ui.Out())
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Fprint(ui.Out(), `taskflow - a task list synced with your todo server

Usage:
  taskflow [flags] <subcommand> [args]

Subcommands:
  ls                       List tasks with progress
  stats                    Show totals and completion rate
  add <body...>            Add a new task (body can be multiple words)
  edit <index> <body...>   Replace the text of the task at 1-based index
  done <index>             Complete the task at 1-based index
  rm <index>               Remove the task at 1-based index
  tui                      Interactive task list
  auth <login|logout|status|whoami> [token]   Token authentication

Flags:
  -api <url>        Server base URL (default http://localhost:8000/api)
  -config <file>    Config file (default ./taskflow.toml)
  -group            Group ls output by pending/done
  -log-level <lvl>  debug, info, warn or error
  -theme <name>     classic, neon or mono

Examples:
  taskflow add "Buy milk"
  taskflow ls
  taskflow done 2
  taskflow edit 1 "Buy milk and eggs"
  taskflow rm 3
`)
}

// -------------- subcommand impls ----------------

func newController(opt Options) (*controller.Controller, *ui.Notifier) {
	n := &ui.Notifier{}
	c := controller.New(opt.Repo, controller.Options{Notifier: n, Logger: opt.Logger})
	return c, n
}

// loaded returns a controller holding a fresh list, or an exit code.
func loaded(opt Options) (*controller.Controller, *ui.Notifier, int) {
	c, n := newController(opt)
	c.Await(c.Refresh())
	if n.Failures > 0 {
		return nil, nil, 1
	}
	return c, n, 0
}

func exitCode(n *ui.Notifier) int {
	if n.Failures > 0 {
		return 1
	}
	return 0
}

func pick(c *controller.Controller, userIndex int) (model.Todo, bool) {
	todos := c.Todos()
	if userIndex < 1 || userIndex > len(todos) {
		ui.Fail(fmt.Sprintf("index out of range: have %d, got %d", len(todos), userIndex))
		ui.Hint("Hint: run `taskflow ls` to see valid indexes")
		return model.Todo{}, false
	}
	return todos[userIndex-1], true
}

func doList(opt Options) int {
	c, _, code := loaded(opt)
	if code != 0 {
		return code
	}
	todos := c.Todos()
	st := c.Stats()
	t := ui.Current()

	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		ui.C(t.Title, "Tasks"),
		ui.C(t.Success, t.SymDone), st.Completed,
		ui.C(t.Pending, t.SymPending), st.Pending,
		ui.C(t.Accent, "Total"), st.Total,
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, ui.C(t.Muted, ui.ProgressBar(st.CompletionRate, 28)))
	lines = append(lines, "")

	switch {
	case c.Empty():
		lines = append(lines, "No tasks yet")
		lines = append(lines, ui.C(t.Muted, "Add your first task with `taskflow add \"Buy milk\"`"))
	case opt.Group:
		lines = append(lines, groupLines(todos)...)
	default:
		lines = append(lines, flatLines(todos)...)
	}
	ui.Panel(lines)
	return 0
}

func doStats(opt Options) int {
	c, _, code := loaded(opt)
	if code != 0 {
		return code
	}
	st := c.Stats()
	w := ui.Out()
	fmt.Fprintf(w, "Total:       %d\n", st.Total)
	fmt.Fprintf(w, "Completed:   %d\n", st.Completed)
	fmt.Fprintf(w, "In progress: %d\n", st.Pending)
	fmt.Fprintf(w, "Progress:    %d%%\n", st.CompletionRate)
	return 0
}

func doAdd(opt Options, body string) int {
	if strings.TrimSpace(body) == "" {
		ui.Fail("add: empty body")
		return 2
	}
	c, n := newController(opt)
	c.Await(c.SubmitCreate(body))
	return exitCode(n)
}

func doEdit(opt Options, userIndex int, body string) int {
	if strings.TrimSpace(body) == "" {
		ui.Fail("edit: empty body")
		return 2
	}
	c, n, code := loaded(opt)
	if code != 0 {
		return code
	}
	todo, ok := pick(c, userIndex)
	if !ok {
		return 2
	}
	if !c.BeginEdit(todo.ID) {
		ui.Fail(fmt.Sprintf("edit: task %d is completed and can't be edited", userIndex))
		return 1
	}
	c.SetEditBuffer(body)
	c.Await(c.CommitEdit())
	return exitCode(n)
}

func doComplete(opt Options, userIndex int) int {
	c, n, code := loaded(opt)
	if code != 0 {
		return code
	}
	todo, ok := pick(c, userIndex)
	if !ok {
		return 2
	}
	if todo.Completed {
		ui.OK("already completed")
		return 0
	}
	c.Await(c.Complete(todo.ID))
	return exitCode(n)
}

func doRemove(opt Options, userIndex int) int {
	c, n, code := loaded(opt)
	if code != 0 {
		return code
	}
	todo, ok := pick(c, userIndex)
	if !ok {
		return 2
	}
	c.Await(c.Delete(todo.ID))
	return exitCode(n)
}

// -------------- rendering helpers --------------

func flatLines(todos []model.Todo) []string {
	if len(todos) == 0 {
		return []string{ui.C(ui.Current().Muted, "no tasks")}
	}
	t := ui.Current()
	out := make([]string, 0, len(todos))
	for i, todo := range todos {
		idx := fmt.Sprintf("%2d.", i+1)
		box, color := t.BoxUnchecked, t.Muted
		if todo.Completed {
			box, color = t.BoxChecked, t.Success
		}
		body := todo.Body
		if len([]rune(body)) > 80 {
			body = string([]rune(body)[:77]) + "..."
		}
		out = append(out, fmt.Sprintf("%s %s %s", ui.C(t.Muted, idx), ui.C(color, box), body))
	}
	return out
}

// groupLines keeps server order inside each group; indexes stay those of the
// full list so they can be passed to done/edit/rm.
func groupLines(todos []model.Todo) []string {
	t := ui.Current()
	all := flatLines(todos)
	var pend, done []string
	for i, todo := range todos {
		if todo.Completed {
			done = append(done, all[i])
		} else {
			pend = append(pend, all[i])
		}
	}
	var lines []string
	lines = append(lines, ui.C(t.Accent, "Pending"))
	if len(pend) == 0 {
		lines = append(lines, ui.C(t.Muted, "(none)"))
	} else {
		lines = append(lines, pend...)
	}
	lines = append(lines, "")
	lines = append(lines, ui.C(t.Accent, "Done"))
	if len(done) == 0 {
		lines = append(lines, ui.C(t.Muted, "(none)"))
	} else {
		lines = append(lines, done...)
	}
	return lines
}
