package controller

import "github.com/idilsaglam/taskflow/internal/model"

// ListedMsg carries the result of a list fetch.
type ListedMsg struct {
	Todos []model.Todo
	Err   error
}

// CreatedMsg carries the result of a create.
type CreatedMsg struct {
	Body string
	Err  error
}

// UpdatedMsg carries the result of an edit commit.
type UpdatedMsg struct {
	ID   string
	Body string
	Err  error
}

// CompletedMsg carries the result of a complete.
type CompletedMsg struct {
	ID  string
	Err error
}

// DeletedMsg carries the result of a delete.
type DeletedMsg struct {
	ID  string
	Err error
}
