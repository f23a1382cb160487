package publer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// stubProvider is an in-process Publer stand-in. Each handler can be
// swapped per test; call counters let tests assert how the client
// talked to the API.
type stubProvider struct {
	t *testing.T

	mu             sync.Mutex
	workspaceCalls int
	accountCalls   int
	uploadCalls    int
	jobCalls       int
	scheduleCalls  int

	workspaces []Workspace
	accounts   []Account

	jobID string
	// job returns the status payload for the nth poll (1-based)
	job func(poll int) jobStatus

	lastEnvelope map[string]json.RawMessage

	srv *httptest.Server
}

func newStubProvider(t *testing.T) *stubProvider {
	t.Helper()

	s := &stubProvider{
		t:          t,
		workspaces: []Workspace{{ID: "ws-1", Name: "Main"}},
		jobID:      "job-1",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /workspaces", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.workspaceCalls++
		s.mu.Unlock()
		s.checkAuth(r, false)
		writeJSON(w, s.workspaces)
	})
	mux.HandleFunc("GET /accounts", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.accountCalls++
		s.mu.Unlock()
		s.checkAuth(r, true)
		writeJSON(w, s.accounts)
	})
	mux.HandleFunc("POST /media/from-url", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.uploadCalls++
		s.mu.Unlock()
		s.checkAuth(r, true)
		writeJSON(w, map[string]string{"job_id": s.jobID})
	})
	mux.HandleFunc("GET /jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.jobCalls++
		poll := s.jobCalls
		s.mu.Unlock()
		s.checkAuth(r, true)
		if s.job == nil {
			writeJSON(w, jobStatus{Status: "working"})
			return
		}
		writeJSON(w, s.job(poll))
	})
	mux.HandleFunc("POST /posts/schedule", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.scheduleCalls++
		s.mu.Unlock()
		s.checkAuth(r, true)
		var envelope map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
			s.t.Errorf("decoding schedule envelope: %v", err)
		}
		s.mu.Lock()
		s.lastEnvelope = envelope
		s.mu.Unlock()
		writeJSON(w, map[string]string{"job_id": "schedule-job-1"})
	})

	s.srv = httptest.NewServer(mux)
	t.Cleanup(s.srv.Close)

	return s
}

func (s *stubProvider) checkAuth(r *http.Request, wantWorkspace bool) {
	s.t.Helper()

	if got := r.Header.Get("Authorization"); got != "Bearer-API test-key" {
		s.t.Errorf("unexpected Authorization header %q on %s", got, r.URL.Path)
	}
	if got := r.Header.Get("Content-Type"); got != "application/json" {
		s.t.Errorf("unexpected Content-Type %q on %s", got, r.URL.Path)
	}

	ws := r.Header.Get("Publer-Workspace-Id")
	if wantWorkspace && ws != "ws-1" {
		s.t.Errorf("missing workspace header on %s, got %q", r.URL.Path, ws)
	}
	if !wantWorkspace && ws != "" {
		s.t.Errorf("workspace header must not be set on %s, got %q", r.URL.Path, ws)
	}
}

func (s *stubProvider) counts() (workspaces, accounts, uploads, jobs, schedules int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workspaceCalls, s.accountCalls, s.uploadCalls, s.jobCalls, s.scheduleCalls
}

// scheduledPosts decodes the posts array of the last submitted envelope
func (s *stubProvider) scheduledPosts() []postSubmission {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastEnvelope == nil {
		return nil
	}
	var posts []postSubmission
	if err := json.Unmarshal(s.lastEnvelope["posts"], &posts); err != nil {
		s.t.Fatalf("decoding posts: %v", err)
	}
	return posts
}

func (s *stubProvider) client(opts ...ClientOption) *Client {
	base := []ClientOption{
		WithBaseURL(s.srv.URL),
		WithPollInterval(time.Millisecond),
	}
	return New("test-key", append(base, opts...)...)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
