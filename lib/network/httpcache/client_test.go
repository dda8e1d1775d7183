package httpcache

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientCachesGet(t *testing.T) {
	var hits int
	handler := func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprintf(w, "hit %d", hits)
	}

	client, err := NewClient(
		WithAdapter(NewMemCacheAdapter(10)),
		WithExpire(time.Minute),
	)
	require.NoError(t, err)

	wrapped := client.WrapHandlerFunc(handler)

	for i := 0; i < 3; i++ {
		recorder := httptest.NewRecorder()
		wrapped(recorder, httptest.NewRequest("GET", "/rounds/1/results", nil))
		require.Equal(t, "hit 1", recorder.Body.String())
	}
	require.Equal(t, 1, hits)
}

func TestClientSkipsNonGet(t *testing.T) {
	var hits int
	handler := func(w http.ResponseWriter, r *http.Request) { hits++ }

	client, err := NewClient(WithAdapter(NewMemCacheAdapter(10)))
	require.NoError(t, err)
	wrapped := client.WrapHandlerFunc(handler)

	for i := 0; i < 2; i++ {
		wrapped(httptest.NewRecorder(), httptest.NewRequest("POST", "/rounds/1/ballot", nil))
	}
	require.Equal(t, 2, hits)
}

func TestClientSkipsErrors(t *testing.T) {
	var hits int
	handler := func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadRequest)
	}

	client, err := NewClient(WithAdapter(NewMemCacheAdapter(10)))
	require.NoError(t, err)
	wrapped := client.WrapHandlerFunc(handler)

	for i := 0; i < 2; i++ {
		wrapped(httptest.NewRecorder(), httptest.NewRequest("GET", "/rounds/1/results", nil))
	}
	require.Equal(t, 2, hits)
}

func TestClientSkipsNoStore(t *testing.T) {
	var hits int
	handler := func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Cache-Control", "no-store")
		fmt.Fprintf(w, "hit %d", hits)
	}

	client, err := NewClient(
		WithAdapter(NewMemCacheAdapter(10)),
		WithExpire(time.Minute),
	)
	require.NoError(t, err)
	wrapped := client.WrapHandlerFunc(handler)

	for i := 0; i < 2; i++ {
		recorder := httptest.NewRecorder()
		wrapped(recorder, httptest.NewRequest("GET", "/rounds/1/results", nil))
		require.Equal(t, fmt.Sprintf("hit %d", i+1), recorder.Body.String())
	}
	require.Equal(t, 2, hits)
}

func TestClientInvalidatePrefix(t *testing.T) {
	var hits int
	handler := func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprintf(w, "hit %d", hits)
	}

	client, err := NewClient(
		WithAdapter(NewMemCacheAdapter(10)),
		WithExpire(time.Minute),
	)
	require.NoError(t, err)
	wrapped := client.WrapHandlerFunc(handler)

	wrapped(httptest.NewRecorder(), httptest.NewRequest("GET", "/rounds/1/results", nil))
	wrapped(httptest.NewRecorder(), httptest.NewRequest("GET", "/rounds/2/results", nil))
	require.Equal(t, 2, hits)

	client.InvalidatePrefix("/rounds/1/")

	// round 1 recomputes, round 2 stays cached
	wrapped(httptest.NewRecorder(), httptest.NewRequest("GET", "/rounds/1/results", nil))
	require.Equal(t, 3, hits)
	wrapped(httptest.NewRecorder(), httptest.NewRequest("GET", "/rounds/2/results", nil))
	require.Equal(t, 3, hits)
}
