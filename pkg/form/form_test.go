package form_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-recoform/pkg/client"
	"github.com/goliatone/go-recoform/pkg/form"
	"github.com/goliatone/go-recoform/pkg/model"
)

type call struct {
	method     model.Method
	identifier string
}

type stubRecommender struct {
	mu    sync.Mutex
	calls []call
	fn    func(ctx context.Context, method model.Method, identifier string) ([]string, error)
}

func (s *stubRecommender) Recommend(ctx context.Context, method model.Method, identifier string) ([]string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, call{method: method, identifier: identifier})
	s.mu.Unlock()
	return s.fn(ctx, method, identifier)
}

func (s *stubRecommender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newForm(t *testing.T, recommender form.Recommender, opts ...form.Option) *form.Form {
	t.Helper()
	opts = append([]form.Option{form.WithLogger(zerolog.New(io.Discard))}, opts...)
	f, err := form.New(model.DefaultFormModel(), recommender, opts...)
	if err != nil {
		t.Fatalf("form.New: %v", err)
	}
	t.Cleanup(f.Close)
	return f
}

func returning(recs []string, err error) *stubRecommender {
	return &stubRecommender{fn: func(context.Context, model.Method, string) ([]string, error) {
		return recs, err
	}}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	f := newForm(t, returning(nil, nil))
	got := f.Snapshot()
	want := form.State{Method: model.MethodUserBased, Phase: form.PhaseIdle}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("initial state mismatch (-want +got):\n%s", diff)
	}
	if f.Field().Name != model.FieldUserID {
		t.Fatalf("initial field = %q", f.Field().Name)
	}

	if _, err := form.New(model.DefaultFormModel(), nil); err == nil {
		t.Fatal("expected error without recommender")
	}
	if _, err := form.New(model.DefaultFormModel(), returning(nil, nil), form.WithMethod("knn")); !errors.Is(err, model.ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestSubmitSuccess(t *testing.T) {
	t.Parallel()

	rec := returning([]string{"A", "B"}, nil)
	f := newForm(t, rec)
	f.SetIdentifier("42")

	got := f.Submit(context.Background())
	if diff := cmp.Diff([]string{"A", "B"}, got.Recommendations); diff != "" {
		t.Fatalf("recommendations mismatch (-want +got):\n%s", diff)
	}
	if got.Error != "" || got.ErrorKind != form.ErrorKindNone || got.Phase != form.PhaseIdle {
		t.Fatalf("unexpected state %+v", got)
	}
	if diff := cmp.Diff([]call{{method: model.MethodUserBased, identifier: "42"}}, rec.calls, cmp.AllowUnexported(call{})); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method model.Method
		want   string
	}{
		{model.MethodUserBased, "User ID is required"},
		{model.MethodSVD, "User ID is required"},
		{model.MethodItemBased, "Item ID is required"},
		{model.MethodCBF, "Product ID is required"},
	}
	for _, tt := range tests {
		rec := returning(nil, nil)
		f := newForm(t, rec, form.WithMethod(tt.method))
		got := f.Submit(context.Background())
		if got.Error != tt.want || got.ErrorKind != form.ErrorKindValidation {
			t.Fatalf("%s: error = %q (%s)", tt.method, got.Error, got.ErrorKind)
		}
		if rec.count() != 0 {
			t.Fatalf("%s: recommender called on validation failure", tt.method)
		}
	}
}

func TestValidationKeepsPreviousRecommendations(t *testing.T) {
	t.Parallel()

	f := newForm(t, returning([]string{"A"}, nil))
	f.SetIdentifier("1")
	f.Submit(context.Background())

	if err := f.SelectMethod(model.MethodCBF); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}
	got := f.Submit(context.Background())
	if got.Error != "Product ID is required" {
		t.Fatalf("error = %q", got.Error)
	}
	if diff := cmp.Diff([]string{"A"}, got.Recommendations); diff != "" {
		t.Fatalf("recommendations should survive validation failure (-want +got):\n%s", diff)
	}
}

func TestSubmitFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		want     string
		wantKind form.ErrorKind
	}{
		{name: "server message", err: &client.StatusError{StatusCode: 404, Message: "item not found"}, want: "item not found", wantKind: form.ErrorKindServer},
		{name: "server without message", err: &client.StatusError{StatusCode: 500}, want: form.MessageGeneric, wantKind: form.ErrorKindServer},
		{name: "transport", err: client.ErrTransport, want: form.MessageNetwork, wantKind: form.ErrorKindTransport},
		{name: "invalid response", err: client.ErrInvalidResponse, want: form.MessageGeneric, wantKind: form.ErrorKindTransport},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var fail bool
			rec := &stubRecommender{fn: func(context.Context, model.Method, string) ([]string, error) {
				if fail {
					return nil, tt.err
				}
				return []string{"old"}, nil
			}}
			f := newForm(t, rec, form.WithMethod(model.MethodItemBased))
			f.SetIdentifier("sku-9")
			f.Submit(context.Background())

			fail = true
			got := f.Submit(context.Background())
			if got.Error != tt.want || got.ErrorKind != tt.wantKind {
				t.Fatalf("error = %q (%s), want %q (%s)", got.Error, got.ErrorKind, tt.want, tt.wantKind)
			}
			if len(got.Recommendations) != 0 {
				t.Fatalf("recommendations not cleared: %v", got.Recommendations)
			}
		})
	}
}

func TestSuccessClearsError(t *testing.T) {
	t.Parallel()

	f := newForm(t, returning([]string{"A"}, nil))
	f.Submit(context.Background())
	if f.Snapshot().Error == "" {
		t.Fatal("expected validation error")
	}
	f.SetIdentifier("1")
	got := f.Submit(context.Background())
	if got.Error != "" || got.ErrorKind != form.ErrorKindNone {
		t.Fatalf("error not cleared: %+v", got)
	}
}

func TestSwitchMethodPreservesIdentifiers(t *testing.T) {
	t.Parallel()

	f := newForm(t, returning([]string{"A"}, nil))
	f.SetIdentifier("7")
	f.Submit(context.Background())

	if err := f.SelectMethodString("item_based"); err != nil {
		t.Fatalf("SelectMethodString: %v", err)
	}
	if f.Field().Name != model.FieldItemID || f.Identifier() != "" {
		t.Fatalf("bound field = %q value %q", f.Field().Name, f.Identifier())
	}
	got := f.Snapshot()
	if got.UserID != "7" {
		t.Fatalf("user id = %q", got.UserID)
	}
	if diff := cmp.Diff([]string{"A"}, got.Recommendations); diff != "" {
		t.Fatalf("recommendations mismatch (-want +got):\n%s", diff)
	}

	if err := f.SelectMethod(model.MethodSVD); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}
	if f.Identifier() != "7" {
		t.Fatalf("svd should share the user id, got %q", f.Identifier())
	}
}

func TestSelectUnknownMethodLeavesState(t *testing.T) {
	t.Parallel()

	f := newForm(t, returning(nil, nil), form.WithMethod(model.MethodCBF))
	if err := f.SelectMethodString("KNN"); !errors.Is(err, model.ErrUnknownMethod) {
		t.Fatalf("expected ErrUnknownMethod, got %v", err)
	}
	if f.Snapshot().Method != model.MethodCBF {
		t.Fatalf("method changed to %q", f.Snapshot().Method)
	}
}

func TestIdentifierSentVerbatim(t *testing.T) {
	t.Parallel()

	var rawQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, `{"recommendations":["X"]}`)
	}))
	t.Cleanup(srv.Close)

	cfg := client.DefaultConfig()
	cfg.BaseURL = srv.URL
	c, err := client.New(cfg, client.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	f := newForm(t, c)
	f.SetIdentifier("u 1")
	if got := f.Submit(context.Background()); got.Error != "" {
		t.Fatalf("unexpected error %q", got.Error)
	}
	if rawQuery != "user_id=u%201&method=user_based" {
		t.Fatalf("query = %q", rawQuery)
	}
}

func TestServiceDownShowsNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close()

	cfg := client.DefaultConfig()
	cfg.BaseURL = baseURL
	c, err := client.New(cfg, client.WithLogger(zerolog.New(io.Discard)))
	if err != nil {
		t.Fatalf("client.New: %v", err)
	}
	f := newForm(t, c, form.WithMethod(model.MethodCBF))
	f.SetIdentifier("p1")
	got := f.Submit(context.Background())
	if got.Error != form.MessageNetwork || len(got.Recommendations) != 0 {
		t.Fatalf("unexpected state %+v", got)
	}
}

func TestLatestSubmitWins(t *testing.T) {
	t.Parallel()

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	rec := &stubRecommender{fn: func(ctx context.Context, _ model.Method, identifier string) ([]string, error) {
		if identifier == "slow" {
			close(firstStarted)
			<-releaseFirst
			return []string{"stale"}, nil
		}
		return []string{"fresh"}, nil
	}}
	f := newForm(t, rec)

	f.SetIdentifier("slow")
	firstDone := make(chan form.State, 1)
	go func() {
		firstDone <- f.Submit(context.Background())
	}()
	<-firstStarted

	if phase := f.Snapshot().Phase; phase != form.PhaseRequesting {
		t.Fatalf("phase during request = %q", phase)
	}

	f.SetIdentifier("fast")
	second := f.Submit(context.Background())
	if diff := cmp.Diff([]string{"fresh"}, second.Recommendations); diff != "" {
		t.Fatalf("second submit mismatch (-want +got):\n%s", diff)
	}

	close(releaseFirst)
	select {
	case <-firstDone:
	case <-time.After(2 * time.Second):
		t.Fatal("first submit did not return")
	}

	got := f.Snapshot()
	if diff := cmp.Diff([]string{"fresh"}, got.Recommendations); diff != "" {
		t.Fatalf("stale response applied (-want +got):\n%s", diff)
	}
	if got.Generation != 2 || got.Phase != form.PhaseIdle {
		t.Fatalf("unexpected state %+v", got)
	}
}

func TestNewSubmitCancelsInFlightRequest(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	cancelled := make(chan struct{})
	rec := &stubRecommender{fn: func(ctx context.Context, _ model.Method, identifier string) ([]string, error) {
		if identifier == "slow" {
			close(started)
			<-ctx.Done()
			close(cancelled)
			return nil, ctx.Err()
		}
		return nil, nil
	}}
	f := newForm(t, rec)
	f.SetIdentifier("slow")
	go f.Submit(context.Background())
	<-started

	// an invalid submit still supersedes the in-flight one
	if err := f.SelectMethod(model.MethodCBF); err != nil {
		t.Fatalf("SelectMethod: %v", err)
	}
	got := f.Submit(context.Background())
	if got.Error != "Product ID is required" {
		t.Fatalf("error = %q", got.Error)
	}

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight request was not cancelled")
	}
	if f.Snapshot().Error != "Product ID is required" {
		t.Fatalf("cancelled response overwrote state: %+v", f.Snapshot())
	}
}
