package model

// Todo is a task as the backend stores it. ID is assigned by the server.
type Todo struct {
	ID        string `json:"_id"`
	Body      string `json:"body"`
	Completed bool   `json:"completed"`
}

// Stats are derived from a list on every read; nothing caches them.
type Stats struct {
	Total          int
	Completed      int
	Pending        int
	CompletionRate int // percent, 0..100
}

// Summarize counts a list. CompletionRate is rounded half-up and is 0 for an
// empty list.
func Summarize(todos []Todo) Stats {
	s := Stats{Total: len(todos)}
	for _, t := range todos {
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	s.CompletionRate = Rate(s.Completed, s.Total)
	return s
}

// Rate returns round(100*done/total) with halves rounded up.
func Rate(done, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*done + total) / (2 * total)
}

// Find returns the todo with the given id.
func Find(todos []Todo, id string) (Todo, bool) {
	for _, t := range todos {
		if t.ID == id {
			return t, true
		}
	}
	return Todo{}, false
}
