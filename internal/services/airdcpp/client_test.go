package airdcpp_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"comicgrabr/internal/logging"
	"comicgrabr/internal/services"
	"comicgrabr/internal/services/airdcpp"
	"comicgrabr/internal/testsupport"
)

type fakeHub struct {
	authCalls     atomic.Int64
	enqueueCalls  atomic.Int64
	hubSearches   []string
	results       []map[string]any
	enqueueStatus int
	enqueueBody   string
}

func (f *fakeHub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/sessions/authorize", func(w http.ResponseWriter, r *http.Request) {
		f.authCalls.Add(1)
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode authorize: %v", err)
		}
		if req["username"] != "user" || req["password"] != "pass" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"auth_token": "token-1"})
	})
	mux.HandleFunc("POST /api/v1/search", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 42})
	})
	mux.HandleFunc("POST /api/v1/search/42/hub_search", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query struct {
				Pattern        string   `json:"pattern"`
				FileExtensions []string `json:"file_extensions"`
			} `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode hub search: %v", err)
		}
		f.hubSearches = append(f.hubSearches, strings.Join(req.Query.FileExtensions, ","))
		_ = json.NewEncoder(w).Encode(map[string]any{"search_id": 7})
	})
	mux.HandleFunc("GET /api/v1/search/42/results/0/100", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(f.results)
	})
	mux.HandleFunc("POST /api/v1/queue/bundles/file", func(w http.ResponseWriter, r *http.Request) {
		f.enqueueCalls.Add(1)
		if f.enqueueStatus != 0 {
			w.WriteHeader(f.enqueueStatus)
			_, _ = w.Write([]byte(f.enqueueBody))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 1})
	})
	return mux
}

func newTestClient(t *testing.T, hub *fakeHub) *airdcpp.Client {
	t.Helper()
	server := httptest.NewServer(hub.handler(t))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithAirDCPP(server.URL+"/api/v1/", "user", "pass"))
	cfg.Search.PollInitialDelay = 0
	cfg.Search.PollDelayIncrement = 0

	client, err := airdcpp.NewClient(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestNewClientRequiresCredentials(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := airdcpp.NewClient(cfg, logging.NewNop())
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSearchRanksCbzFirstAndMapsDupes(t *testing.T) {
	hub := &fakeHub{
		results: []map[string]any{
			{"id": 1, "name": "saga.cbr", "path": "/comics/saga.cbr", "size": 100, "tth": "T1"},
			{"id": 2, "name": "saga.cbz", "path": "/comics/saga.cbz", "size": 200, "tth": "T2",
				"dupe": map[string]any{"id": "queue_full"}},
			{"id": 3, "name": "saga.pdf", "path": "/comics/saga.pdf", "size": 300, "tth": "T3"},
		},
	}
	client := newTestClient(t, hub)

	results, err := client.Search(context.Background(), "Saga 72")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected pdf filtered out, got %v", results)
	}
	if results[0].Name != "saga.cbz" {
		t.Fatalf("expected cbz ranked first, got %q", results[0].Name)
	}
	if !results[0].InQueue || results[0].OnDisk {
		t.Fatalf("expected queue dupe mapping, got %+v", results[0])
	}
	if results[1].Name != "saga.cbr" {
		t.Fatalf("expected cbr second, got %q", results[1].Name)
	}
	if hub.authCalls.Load() != 1 {
		t.Fatalf("expected a single authorization, got %d", hub.authCalls.Load())
	}
	if len(hub.hubSearches) == 0 || hub.hubSearches[0] != "cbz" {
		t.Fatalf("expected cbz filter on the first hub search, got %v", hub.hubSearches)
	}
}

func TestSearchReturnsEmptyWhenHubsStaySilent(t *testing.T) {
	hub := &fakeHub{results: []map[string]any{}}
	client := newTestClient(t, hub)

	results, err := client.Search(context.Background(), "Unknown Book 1")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %v", results)
	}
}

func TestEnqueueMapsDuplicateRejection(t *testing.T) {
	hub := &fakeHub{
		enqueueStatus: http.StatusConflict,
		enqueueBody:   `{"message": "File exists on the disk already"}`,
	}
	client := newTestClient(t, hub)

	err := client.Enqueue(context.Background(), airdcpp.Result{Name: "saga.cbz", Size: 200, TTH: "T2"})
	if !errors.Is(err, services.ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestEnqueueMapsOtherRejectionsToTransient(t *testing.T) {
	hub := &fakeHub{
		enqueueStatus: http.StatusInternalServerError,
		enqueueBody:   "hub exploded",
	}
	client := newTestClient(t, hub)

	err := client.Enqueue(context.Background(), airdcpp.Result{Name: "saga.cbz", Size: 200, TTH: "T2"})
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestEnqueueRejectsIncompleteResults(t *testing.T) {
	hub := &fakeHub{}
	client := newTestClient(t, hub)

	err := client.Enqueue(context.Background(), airdcpp.Result{Name: "saga.cbz"})
	if err == nil {
		t.Fatal("expected error for result without TTH")
	}
	if hub.enqueueCalls.Load() != 0 {
		t.Fatal("expected no enqueue request for incomplete result")
	}
}
