package api

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/tokenvote/tokenvote/lib/ballot"
	"github.com/tokenvote/tokenvote/lib/common"
	"github.com/tokenvote/tokenvote/lib/network/httpcache"
	"github.com/tokenvote/tokenvote/lib/storage"
)

// prepareAPIServer wires a handler set against a fresh in-memory
// backend and serves it from a httptest server.
func prepareAPIServer(t *testing.T, clock common.Clock) (*httptest.Server, *storage.LevelDBBackend, *NetworkHandlerAPI) {
	st := storage.NewTestStorage()
	t.Cleanup(func() { st.Close() })

	if clock == nil {
		clock = common.LocalClock{}
	}
	store := ballot.NewStore(st, clock, ballot.ApproveAll{})
	apiHandler := NewNetworkHandlerAPI(st, store, common.NewConfig(), clock)

	router := mux.NewRouter()
	router.HandleFunc(GetBallotHandlerPattern, apiHandler.GetBallotHandler).Methods("GET")
	router.HandleFunc(PostBallotHandlerPattern, apiHandler.PostBallotHandler).Methods("POST")
	router.HandleFunc(PublishBallotHandlerPattern, apiHandler.PublishBallotHandler).Methods("POST")
	router.HandleFunc(GetResultsHandlerPattern, apiHandler.GetResultsHandler).Methods("GET")
	router.HandleFunc(GetProjectsHandlerPattern, apiHandler.GetProjectsHandler).Methods("GET")
	router.HandleFunc(GetProjectHandlerPattern, apiHandler.GetProjectHandler).Methods("GET")
	router.HandleFunc(GetPayoutsHandlerPattern, apiHandler.GetPayoutsHandler).Methods("GET")
	router.HandleFunc(GetExportHandlerPattern, apiHandler.GetExportHandler).Methods("GET")
	router.HandleFunc(RoundConfigHandlerPattern, apiHandler.GetRoundConfigHandler).Methods("GET")
	router.HandleFunc(RoundConfigHandlerPattern, apiHandler.PutRoundConfigHandler).Methods("PUT")
	router.HandleFunc(StreamHandlerPattern, apiHandler.StreamHandler).Methods("GET")

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, st, apiHandler
}

// prepareCachedAPIServer wraps the results endpoints with a response
// cache, the way the production server wires them.
func prepareCachedAPIServer(t *testing.T, clock common.Clock) (*httptest.Server, *storage.LevelDBBackend, *NetworkHandlerAPI) {
	st := storage.NewTestStorage()
	t.Cleanup(func() { st.Close() })

	if clock == nil {
		clock = common.LocalClock{}
	}
	store := ballot.NewStore(st, clock, ballot.ApproveAll{})
	apiHandler := NewNetworkHandlerAPI(st, store, common.NewConfig(), clock)

	cache, err := httpcache.NewClient(
		httpcache.WithAdapter(httpcache.NewMemCacheAdapter(100)),
		httpcache.WithExpire(time.Minute),
	)
	if err != nil {
		t.Fatal(err)
	}
	apiHandler.SetCache(cache)

	router := mux.NewRouter()
	router.HandleFunc(GetResultsHandlerPattern, cache.WrapHandlerFunc(apiHandler.GetResultsHandler)).Methods("GET")
	router.HandleFunc(GetProjectsHandlerPattern, cache.WrapHandlerFunc(apiHandler.GetProjectsHandler)).Methods("GET")
	router.HandleFunc(GetProjectHandlerPattern, cache.WrapHandlerFunc(apiHandler.GetProjectHandler)).Methods("GET")
	router.HandleFunc(GetPayoutsHandlerPattern, cache.WrapHandlerFunc(apiHandler.GetPayoutsHandler)).Methods("GET")

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server, st, apiHandler
}
