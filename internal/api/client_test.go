package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/idilsaglam/taskflow/internal/api"
	"github.com/idilsaglam/taskflow/internal/api/apitest"
	"github.com/idilsaglam/taskflow/internal/logging"
	"github.com/idilsaglam/taskflow/internal/model"
)

func TestListReturnsServerOrder(t *testing.T) {
	seed := []model.Todo{
		{ID: "b", Body: "second"},
		{ID: "a", Body: "first", Completed: true},
	}
	srv := apitest.NewServer(seed...)
	defer srv.Close()

	got, err := api.New(srv.BaseURL()).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff(seed, got); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestListEmptyIsNonNil(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()

	got, err := api.New(srv.BaseURL()).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("List() = %#v, want empty non-nil slice", got)
	}
}

func TestListEnvelopeRejections(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"success false", http.StatusOK, `{"success":false,"message":"nope","data":[]}`},
		{"data null", http.StatusOK, `{"success":true,"message":"ok","data":null}`},
		{"data missing", http.StatusOK, `{"success":true,"message":"ok"}`},
		{"data object", http.StatusOK, `{"success":true,"message":"ok","data":{"_id":"x","body":"y"}}`},
		{"bare array", http.StatusOK, `[{"_id":"x","body":"y"}]`},
		{"not json", http.StatusOK, `<html>oops</html>`},
		{"empty body", http.StatusOK, ``},
		{"server error", http.StatusInternalServerError, `{"success":false,"message":"Error retrieving todos"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := apitest.NewServer()
			defer srv.Close()
			srv.Fail(apitest.RouteList, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			todos, err := api.New(srv.BaseURL()).List(context.Background())
			if err == nil {
				t.Fatalf("List() = %v, want error", todos)
			}
			if !api.IsKind(err, api.KindEnvelope) {
				t.Errorf("List() error = %v, want envelope kind", err)
			}
		})
	}
}

func TestListNetworkFailure(t *testing.T) {
	srv := apitest.NewServer()
	base := srv.BaseURL()
	srv.Close()

	_, err := api.New(base).List(context.Background())
	if !api.IsKind(err, api.KindNetwork) {
		t.Fatalf("List() error = %v, want network kind", err)
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Op != "list" || apiErr.Status != 0 {
		t.Errorf("List() error = %#v", err)
	}
}

func TestCreateSendsBodyAndTrustsEnvelope(t *testing.T) {
	var gotBody map[string]string
	var gotType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/todos" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		// status is deliberately odd: only the envelope counts for create
		w.WriteHeader(http.StatusAccepted)
		_, _ = io.WriteString(w, `{"success":true,"message":"Todo created","data":{"_id":"abc","body":"Buy milk","completed":false}}`)
	}))
	defer ts.Close()

	todo, err := api.New(ts.URL + "/api").Create(context.Background(), "Buy milk")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if gotType != "application/json" {
		t.Errorf("Content-Type = %q", gotType)
	}
	if gotBody["body"] != "Buy milk" {
		t.Errorf("request body = %v", gotBody)
	}
	if todo.ID != "abc" || todo.Body != "Buy milk" {
		t.Errorf("Create() = %+v", todo)
	}
}

func TestCreateEnvelopeFailure(t *testing.T) {
	// a 2xx with success:false is still a failure for create
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"message":"Body is required"}`)
	}))
	defer ts.Close()

	_, err := api.New(ts.URL).Create(context.Background(), "x")
	if !api.IsKind(err, api.KindEnvelope) {
		t.Fatalf("Create() error = %v, want envelope kind", err)
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "Body is required" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}

func TestStatusOnlyOperationsIgnoreEnvelope(t *testing.T) {
	// update, complete and delete succeed on 2xx even when the body claims failure
	var requests []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.Method+" "+r.URL.EscapedPath())
		_, _ = io.WriteString(w, `{"success":false,"message":"ignored"}`)
	}))
	defer ts.Close()

	c := api.New(ts.URL)
	ctx := context.Background()
	if err := c.Update(ctx, "id 1", "new"); err != nil {
		t.Errorf("Update() error = %v", err)
	}
	if err := c.Complete(ctx, "id1"); err != nil {
		t.Errorf("Complete() error = %v", err)
	}
	if err := c.Delete(ctx, "id1"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	want := []string{"PUT /todos/id%201", "PATCH /todos/id1", "DELETE /todos/id1"}
	if diff := cmp.Diff(want, requests); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusOnlyOperationsFailOnNon2xx(t *testing.T) {
	srv := apitest.NewServer(model.Todo{ID: "a", Body: "x"})
	defer srv.Close()
	c := api.New(srv.BaseURL())
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"update", func() error { return c.Update(ctx, "missing", "y") }},
		{"complete", func() error { return c.Complete(ctx, "missing") }},
		{"delete", func() error { return c.Delete(ctx, "missing") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var apiErr *api.Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *api.Error", err)
			}
			if apiErr.Kind != api.KindTransport || apiErr.Status != http.StatusNotFound {
				t.Errorf("error = %+v", apiErr)
			}
			if apiErr.Op != tt.name {
				t.Errorf("Op = %q, want %q", apiErr.Op, tt.name)
			}
			if apiErr.Message != "Todo not found" {
				t.Errorf("Message = %q", apiErr.Message)
			}
		})
	}
}

func TestCompleteAndDeleteSendNoBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if len(b) != 0 {
			t.Errorf("%s carried a body: %q", r.Method, b)
		}
		if ct := r.Header.Get("Content-Type"); ct != "" {
			t.Errorf("%s Content-Type = %q, want none", r.Method, ct)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := api.New(ts.URL)
	if err := c.Complete(context.Background(), "a"); err != nil {
		t.Errorf("Complete() error = %v", err)
	}
	if err := c.Delete(context.Background(), "a"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	srv := apitest.NewServer()
	defer srv.Close()
	srv.RequireToken("s3cret")

	if _, err := api.New(srv.BaseURL()).List(context.Background()); err == nil {
		t.Fatal("List() without token succeeded")
	}
	if _, err := api.New(srv.BaseURL(), api.WithToken("s3cret")).List(context.Background()); err != nil {
		t.Fatalf("List() with token error = %v", err)
	}
}

func TestErrorString(t *testing.T) {
	err := &api.Error{Op: "delete", Kind: api.KindTransport, Status: 404, Message: "Todo not found"}
	want := "delete: transport failure (404 Not Found): Todo not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestCreateLogsUndecodableData(t *testing.T) {
	// success with a data payload that is not a todo still counts as created
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"message":"Todo created","data":[1,2]}`)
	}))
	defer ts.Close()

	var buf bytes.Buffer
	logger, _, err := logging.New(&buf, logging.Options{Level: "debug"})
	if err != nil {
		t.Fatal(err)
	}
	todo, err := api.New(ts.URL, api.WithLogger(logger)).Create(context.Background(), "x")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if todo != (model.Todo{}) {
		t.Errorf("Create() = %+v, want zero todo", todo)
	}
	if out := buf.String(); !strings.Contains(out, "created todo not decoded") || !strings.Contains(out, "op=create") {
		t.Errorf("debug log = %q", out)
	}
}

type countingTransport struct {
	requests []string
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.requests = append(c.requests, r.Method+" "+r.URL.Path)
	return http.DefaultTransport.RoundTrip(r)
}

func TestWithHTTPClient(t *testing.T) {
	srv := apitest.NewServer(model.Todo{ID: "a", Body: "x"})
	defer srv.Close()

	tr := &countingTransport{}
	c := api.New(srv.BaseURL(), api.WithHTTPClient(&http.Client{Transport: tr}))
	if _, err := c.List(context.Background()); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if err := c.Complete(context.Background(), "a"); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	want := []string{"GET /api/todos", "PATCH /api/todos/a"}
	if diff := cmp.Diff(want, tr.requests); diff != "" {
		t.Errorf("requests mismatch (-want +got):\n%s", diff)
	}
}
