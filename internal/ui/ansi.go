package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/idilsaglam/taskflow/internal/controller"
)

var (
	reset = "\033[0m"
	bold  = "\033[1m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgRed    = "\033[31m"

	symCheck = "✔"
	symCross = "✖"
)

var (
	forceColor   bool
	disableColor bool

	out    io.Writer = os.Stdout
	errOut io.Writer = os.Stderr
)

func SetColorForcing(force, disable bool) {
	forceColor = force
	disableColor = disable
}

// SetOutput redirects normal and error output. Color is only emitted to
// os.Stdout when it is a terminal, unless forced.
func SetOutput(stdout, stderr io.Writer) {
	out, errOut = stdout, stderr
}

// Out is where normal output goes.
func Out() io.Writer { return out }

func isTTY() bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func C(color, s string) string {
	if disableColor || color == "" {
		return s
	}
	if forceColor || isTTY() {
		return color + s + reset
	}
	return s
}

func OK(msg string)   { fmt.Fprintln(out, C(current.Success, symCheck+" "+msg)) }
func Fail(msg string) { fmt.Fprintln(errOut, C(current.Error, symCross+" "+msg)) }

// Hint prints a muted follow-up line on the error stream.
func Hint(msg string) { fmt.Fprintln(errOut, C(current.Muted, msg)) }

// Notifier prints controller notices as OK/Fail lines and counts failures.
type Notifier struct {
	Failures int
}

func (n *Notifier) Notify(kind controller.NoticeKind, title, detail string) {
	msg := title
	if detail != "" {
		msg += ": " + detail
	}
	if kind == controller.Failure {
		n.Failures++
		Fail(msg)
		return
	}
	OK(msg)
}
