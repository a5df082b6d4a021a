package controller

// NoticeKind tells a Notifier how to present a message.
type NoticeKind int

const (
	Success NoticeKind = iota
	Failure
)

func (k NoticeKind) String() string {
	if k == Failure {
		return "failure"
	}
	return "success"
}

// Notifier presents outcomes to the user.
type Notifier interface {
	Notify(kind NoticeKind, title, detail string)
}

// NotifyFunc adapts a function to Notifier.
type NotifyFunc func(kind NoticeKind, title, detail string)

func (f NotifyFunc) Notify(kind NoticeKind, title, detail string) { f(kind, title, detail) }

// Discard ignores every notice.
var Discard Notifier = NotifyFunc(func(NoticeKind, string, string) {})
