package model

import "testing"

func TestRate(t *testing.T) {
	tests := []struct {
		done, total, want int
	}{
		{0, 0, 0},
		{0, 1, 0},
		{1, 1, 100},
		{1, 2, 50},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},  // 12.5 rounds up
		{3, 8, 38},  // 37.5 rounds up
		{1, 200, 1}, // 0.5 rounds up
		{5, 7, 71},
	}
	for _, tt := range tests {
		if got := Rate(tt.done, tt.total); got != tt.want {
			t.Errorf("Rate(%d, %d) = %d, want %d", tt.done, tt.total, got, tt.want)
		}
	}
}

func TestRateMatchesFloatRounding(t *testing.T) {
	for total := 1; total <= 60; total++ {
		for done := 0; done <= total; done++ {
			x := 100 * float64(done) / float64(total)
			want := int(x + 0.5)
			// avoid float noise at exact halves by recomputing in integers
			if (200*done)%(2*total) == total {
				want = (100*done)/total + 1
			}
			if got := Rate(done, total); got != want {
				t.Fatalf("Rate(%d, %d) = %d, want %d", done, total, got, want)
			}
		}
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		todos []Todo
		want  Stats
	}{
		{"empty", nil, Stats{}},
		{"one pending", []Todo{{ID: "a"}}, Stats{Total: 1, Pending: 1}},
		{"one done", []Todo{{ID: "a", Completed: true}}, Stats{Total: 1, Completed: 1, CompletionRate: 100}},
		{
			"mixed",
			[]Todo{{ID: "a", Completed: true}, {ID: "b"}, {ID: "c"}},
			Stats{Total: 3, Completed: 1, Pending: 2, CompletionRate: 33},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.todos)
			if got != tt.want {
				t.Errorf("Summarize() = %+v, want %+v", got, tt.want)
			}
			if got.Pending+got.Completed != got.Total {
				t.Errorf("pending %d + completed %d != total %d", got.Pending, got.Completed, got.Total)
			}
		})
	}
}

func TestFind(t *testing.T) {
	todos := []Todo{{ID: "a", Body: "one"}, {ID: "b", Body: "two"}}
	if got, ok := Find(todos, "b"); !ok || got.Body != "two" {
		t.Errorf("Find(b) = %+v, %v", got, ok)
	}
	if _, ok := Find(todos, "zz"); ok {
		t.Error("Find(zz) found a todo")
	}
}
