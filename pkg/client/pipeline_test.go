package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarasboiko2005/AirportAPI/internal/session"
)

// fakeAPI accepts exactly one access token on /api/orders/ and mints
// nextAccess from the refresh endpoint.
type fakeAPI struct {
	mu           sync.Mutex
	valid        string
	nextAccess   string
	refreshOK    bool
	refreshDelay time.Duration

	refreshCalls atomic.Int32
	orderCalls   atomic.Int32
	requestIDs   []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requestIDs = append(f.requestIDs, r.Header.Get("X-Request-ID"))
	f.mu.Unlock()

	switch r.URL.Path {
	case refreshPath:
		f.refreshCalls.Add(1)
		if r.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		time.Sleep(f.refreshDelay)
		if !f.refreshOK {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Token is invalid or expired"}) //nolint:errcheck
			return
		}
		f.mu.Lock()
		f.valid = f.nextAccess
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"access": f.nextAccess}) //nolint:errcheck
	case "/api/orders/":
		f.orderCalls.Add(1)
		f.mu.Lock()
		ok := r.Header.Get("Authorization") == "Bearer "+f.valid
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Given token not valid for any token type"}) //nolint:errcheck
			return
		}
		w.Write([]byte(`[{"id": 1, "status": "booked", "time_remaining": 60}]`)) //nolint:errcheck
	case "/api/flights/":
		w.WriteHeader(http.StatusInternalServerError)
	default:
		http.NotFound(w, r)
	}
}

func TestPipeline_RefreshesAndRetries(t *testing.T) {
	api := &fakeAPI{valid: "T2", nextAccess: "T2", refreshOK: true}
	srv := httptest.NewServer(api)
	defer srv.Close()

	store := signedIn(t, "T1", "R")
	c := New(srv.URL, store)

	page, err := c.ListOrders(context.Background(), ListOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Results, 1)

	access, _ := store.Access()
	refresh, _ := store.Refresh()
	assert.Equal(t, "T2", access)
	assert.Equal(t, "R", refresh, "the refresh token is not rotated")
	assert.EqualValues(t, 1, api.refreshCalls.Load())
	assert.EqualValues(t, 2, api.orderCalls.Load())
}

// A stored access token without a refresh token cannot be set up: the store
// only accepts complete pairs, so the no-refresh branch is reached anonymously.
func TestPipeline_AnonymousUnauthorizedEndsSession(t *testing.T) {
	api := &fakeAPI{valid: "T1"}
	srv := httptest.NewServer(api)
	defer srv.Close()

	var ended atomic.Int32
	c := New(srv.URL, session.NewMemory(), OnSessionEnded(func() { ended.Add(1) }))

	_, err := c.ListOrders(context.Background(), ListOptions{})
	require.Error(t, err)
	assert.True(t, IsSessionEnded(err))
	assert.True(t, IsUnauthorized(err), "the original 401 stays reachable")
	assert.EqualValues(t, 1, ended.Load())
}

func TestPipeline_RefreshRejectedEndsSession(t *testing.T) {
	api := &fakeAPI{valid: "T2", refreshOK: false}
	srv := httptest.NewServer(api)
	defer srv.Close()

	store := signedIn(t, "T1", "R")
	var ended atomic.Int32
	c := New(srv.URL, store, OnSessionEnded(func() { ended.Add(1) }))

	_, err := c.ListOrders(context.Background(), ListOptions{})
	require.Error(t, err)
	assert.True(t, IsSessionEnded(err))

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnauthorized, httpErr.StatusCode)

	assert.False(t, store.HasAccess())
	_, ok := store.Refresh()
	assert.False(t, ok)
	assert.EqualValues(t, 1, ended.Load())
	assert.EqualValues(t, 1, api.orderCalls.Load(), "no retry after a failed refresh")
}

func TestPipeline_RetriedRequestIsNotRefreshedTwice(t *testing.T) {
	// The refresh succeeds but the server still rejects the new token.
	api := &fakeAPI{valid: "never", nextAccess: "T2", refreshOK: true}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == refreshPath {
			api.refreshCalls.Add(1)
			json.NewEncoder(w).Encode(map[string]string{"access": "T2"}) //nolint:errcheck
			return
		}
		api.orderCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := signedIn(t, "T1", "R")
	var ended atomic.Int32
	c := New(srv.URL, store, OnSessionEnded(func() { ended.Add(1) }))

	_, err := c.ListOrders(context.Background(), ListOptions{})
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.False(t, IsSessionEnded(err), "a rejected retry surfaces as a plain 401")
	assert.EqualValues(t, 1, api.refreshCalls.Load())
	assert.EqualValues(t, 2, api.orderCalls.Load())
	assert.Zero(t, ended.Load())

	access, _ := store.Access()
	assert.Equal(t, "T2", access)
}

func TestPipeline_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	api := &fakeAPI{valid: "T2", nextAccess: "T2", refreshOK: true, refreshDelay: 50 * time.Millisecond}
	srv := httptest.NewServer(api)
	defer srv.Close()

	store := signedIn(t, "T1", "R")
	c := New(srv.URL, store)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.ListOrders(context.Background(), ListOptions{})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "request %d", i)
	}
	assert.EqualValues(t, 1, api.refreshCalls.Load())
}

func TestPipeline_CallerCancelDoesNotAbortSharedRefresh(t *testing.T) {
	api := &fakeAPI{valid: "T2", nextAccess: "T2", refreshOK: true, refreshDelay: 100 * time.Millisecond}
	srv := httptest.NewServer(api)
	defer srv.Close()

	store := signedIn(t, "T1", "R")
	c := New(srv.URL, store)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.ListOrders(ctx, ListOptions{})
		done <- err
	}()

	require.Eventually(t, func() bool { return api.refreshCalls.Load() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	// The refresh finishes on its own and its result is kept.
	require.Eventually(t, func() bool {
		access, _ := store.Access()
		return access == "T2"
	}, time.Second, 5*time.Millisecond)
}

func TestPipeline_NonUnauthorizedPassesThrough(t *testing.T) {
	api := &fakeAPI{valid: "T1"}
	srv := httptest.NewServer(api)
	defer srv.Close()

	store := signedIn(t, "T1", "R")
	c := New(srv.URL, store)

	_, err := c.ListFlights(context.Background(), ListOptions{})
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusInternalServerError))
	assert.False(t, IsValidation(err))
	assert.EqualValues(t, 0, api.refreshCalls.Load())
	assert.True(t, store.HasAccess())
}

func TestPipeline_NetworkErrorPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	store := signedIn(t, "T1", "R")
	c := New(srv.URL, store, WithTimeout(time.Second))

	_, err := c.ListOrders(context.Background(), ListOptions{})
	require.Error(t, err)
	assert.False(t, IsSessionEnded(err))
	assert.True(t, store.HasAccess())
}

func TestPipeline_SetsRequestID(t *testing.T) {
	api := &fakeAPI{valid: "T2", nextAccess: "T2", refreshOK: true}
	srv := httptest.NewServer(api)
	defer srv.Close()

	c := New(srv.URL, signedIn(t, "T1", "R"))
	_, err := c.ListOrders(context.Background(), ListOptions{})
	require.NoError(t, err)

	require.Len(t, api.requestIDs, 3)
	seen := map[string]bool{}
	for _, id := range api.requestIDs {
		_, err := uuid.Parse(id)
		assert.NoError(t, err, "X-Request-ID %q", id)
		seen[id] = true
	}
	assert.Len(t, seen, 3, "every dispatch carries its own id")
}

// brokenDisk stops persisting once broken is set.
type brokenDisk struct {
	session.MemoryBackend
	broken atomic.Bool
}

func (b *brokenDisk) Store(st session.State) error {
	if b.broken.Load() {
		return errors.New("disk full")
	}
	return b.MemoryBackend.Store(st)
}

func TestPipeline_UnpersistedRefreshEndsSession(t *testing.T) {
	api := &fakeAPI{valid: "T2", nextAccess: "T2", refreshOK: true}
	srv := httptest.NewServer(api)
	defer srv.Close()

	disk := &brokenDisk{}
	store, err := session.Open(disk)
	require.NoError(t, err)
	require.NoError(t, store.Save("T1", "R"))
	disk.broken.Store(true)

	var ended atomic.Int32
	c := New(srv.URL, store, OnSessionEnded(func() { ended.Add(1) }))

	_, err = c.ListOrders(context.Background(), ListOptions{})
	require.Error(t, err)
	assert.True(t, IsSessionEnded(err))
	assert.False(t, store.Authenticated(), "a reported session end must leave the store signed out")
	assert.EqualValues(t, 1, ended.Load())
}
