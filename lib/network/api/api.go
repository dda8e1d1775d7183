package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	observable "github.com/GianlucaGuarini/go-observable"
	logging "github.com/inconshreveable/log15"

	"github.com/tokenvote/tokenvote/lib/ballot"
	"github.com/tokenvote/tokenvote/lib/common"
	"github.com/tokenvote/tokenvote/lib/network/httpcache"
	"github.com/tokenvote/tokenvote/lib/network/httputils"
	"github.com/tokenvote/tokenvote/lib/storage"
)

var log logging.Logger = logging.New("module", "api")

func init() {
	SetLogging(common.DefaultLogLevel, common.DefaultLogHandler)
}

func SetLogging(level logging.Lvl, handler logging.Handler) {
	log.SetHandler(logging.LvlFilterHandler(level, handler))
}

// API Endpoint patterns
const (
	GetBallotHandlerPattern     = "/rounds/{round}/ballot"
	PostBallotHandlerPattern    = "/rounds/{round}/ballot"
	PublishBallotHandlerPattern = "/rounds/{round}/ballot/publish"
	GetResultsHandlerPattern    = "/rounds/{round}/results"
	GetProjectsHandlerPattern   = "/rounds/{round}/results/projects"
	GetProjectHandlerPattern    = "/rounds/{round}/results/projects/{id}"
	GetPayoutsHandlerPattern    = "/rounds/{round}/payouts"
	GetExportHandlerPattern     = "/rounds/{round}/export"
	RoundConfigHandlerPattern   = "/rounds/{round}/config"
	StreamHandlerPattern        = "/rounds/{round}/stream"
)

// VoterHeader carries the caller's address. The gateway in front of
// the server authenticates the wallet session and sets this header.
const VoterHeader = "X-Voter-Address"

// MetadataResolver joins project ids with their display names from
// the attestation service.
type MetadataResolver interface {
	ProjectNames(ids []string) (map[string]string, error)
}

type NetworkHandlerAPI struct {
	storage  *storage.LevelDBBackend
	store    *ballot.Store
	config   common.Config
	clock    common.Clock
	metadata MetadataResolver
	cache    *httpcache.Client
}

func NewNetworkHandlerAPI(
	st *storage.LevelDBBackend,
	store *ballot.Store,
	config common.Config,
	clock common.Clock,
) *NetworkHandlerAPI {
	if clock == nil {
		clock = common.LocalClock{}
	}
	return &NetworkHandlerAPI{
		storage: st,
		store:   store,
		config:  config,
		clock:   clock,
	}
}

func (api *NetworkHandlerAPI) SetMetadataResolver(metadata MetadataResolver) {
	api.metadata = metadata
}

func (api *NetworkHandlerAPI) SetCache(cache *httpcache.Client) {
	api.cache = cache
}

func renderEventStream(args ...interface{}) ([]byte, error) {
	if len(args) <= 1 {
		return nil, fmt.Errorf("render: value is empty")
	}
	i := args[1]

	switch v := i.(type) {
	case *ballot.Ballot:
		return json.Marshal(v)
	case httputils.HALResource:
		return json.Marshal(v.Resource())
	}

	return json.Marshal(i)
}

// Implement `Server Sent Event`
// Listen event `event` thru `o`
// When the `event` triggered, `callBackFunc` fired
// This function does not end until the connection is closed
func streaming(o *observable.Observable, r *http.Request, w http.ResponseWriter, event string, callBackFunc func(args ...interface{}) ([]byte, error)) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	// consumerChan notifies observerFunc that the messageChan receiver is gone
	consumerChan := make(chan struct{})
	messageChan := make(chan []byte)

	observerFunc := func(args ...interface{}) {
		s, err := callBackFunc(args...)
		if err != nil {
			log.Error("stream render failed", "event", event, "error", err)
			return
		}
		if s == nil {
			return
		}

		select {
		case messageChan <- s:
		case <-consumerChan:
		}
	}

	o.On(event, observerFunc)
	defer o.Off(event, observerFunc)

	w.Header().Set("Content-Type", "text/event-stream")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			close(consumerChan)
			return
		case message := <-messageChan:
			fmt.Fprintf(w, "data: %s\n\n", message)
			flusher.Flush()
		}
	}
}
