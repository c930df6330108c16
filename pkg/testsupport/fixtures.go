// Package testsupport holds helpers shared by package tests: a fake
// recommender service and small assertion utilities.
package testsupport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
)

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// IDParams maps each recommender path to its identifier query parameter.
var IDParams = map[string]string{
	"/recommend":      "user_id",
	"/recommend_item": "item_id",
	"/recommend_cbf":  "product_id",
}

// Call is one request observed by a RecommenderStub. ID holds the value
// of the path's identifier parameter.
type Call struct {
	Path   string
	ID     string
	Method string
	// RawQuery is the query string exactly as sent.
	RawQuery string
}

// Reply scripts the stub's answer for a path and identifier.
type Reply struct {
	Status          int
	Recommendations []string
	Error           string
	// Body, when set, is written verbatim instead of the JSON envelope.
	Body string
}

// RecommenderStub mimics the recommender service: GET /recommend?user_id=
// with an optional &method=, /recommend_item?item_id= and
// /recommend_cbf?product_id=.
type RecommenderStub struct {
	Server *httptest.Server

	mu       sync.Mutex
	calls    []Call
	replies  map[string]Reply
	fallback Reply
}

// NewRecommenderStub starts a stub closed automatically with the test.
// Unscripted requests get an empty recommendation list.
func NewRecommenderStub(t *testing.T) *RecommenderStub {
	t.Helper()

	stub := &RecommenderStub{
		replies:  make(map[string]Reply),
		fallback: Reply{Status: http.StatusOK, Recommendations: []string{}},
	}
	stub.Server = httptest.NewServer(http.HandlerFunc(stub.serve))
	t.Cleanup(stub.Server.Close)
	return stub
}

// URL returns the stub's base URL.
func (s *RecommenderStub) URL() string {
	return s.Server.URL
}

// On scripts the reply for a path and identifier.
func (s *RecommenderStub) On(path, id string, reply Reply) *RecommenderStub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies[path+"?"+id] = reply
	return s
}

// Default scripts the reply for every unscripted request.
func (s *RecommenderStub) Default(reply Reply) *RecommenderStub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fallback = reply
	return s
}

// Calls returns the requests observed so far.
func (s *RecommenderStub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *RecommenderStub) serve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	call := Call{
		Path:     r.URL.Path,
		ID:       query.Get(IDParams[r.URL.Path]),
		Method:   query.Get("method"),
		RawQuery: r.URL.RawQuery,
	}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	reply, ok := s.replies[call.Path+"?"+call.ID]
	if !ok {
		reply = s.fallback
	}
	s.mu.Unlock()

	status := reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if reply.Body != "" {
		_, _ = w.Write([]byte(reply.Body))
		return
	}
	var payload any
	if status >= 200 && status < 300 {
		recs := reply.Recommendations
		if recs == nil {
			recs = []string{}
		}
		payload = map[string]any{"recommendations": recs}
	} else {
		payload = map[string]any{"error": reply.Error}
	}
	_ = json.NewEncoder(w).Encode(payload)
}
