package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tokenvote/tokenvote/lib/ballot"
	"github.com/tokenvote/tokenvote/lib/common/observer"
	"github.com/tokenvote/tokenvote/lib/errors"
	"github.com/tokenvote/tokenvote/lib/metrics"
	"github.com/tokenvote/tokenvote/lib/network/api/resource"
	"github.com/tokenvote/tokenvote/lib/network/httputils"
	"github.com/tokenvote/tokenvote/lib/round"
)

// GetBallotHandler returns the caller's own ballot, draft or
// published.
func (api *NetworkHandlerAPI) GetBallotHandler(w http.ResponseWriter, r *http.Request) {
	config, err := api.roundConfig(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}
	voter, err := requestVoter(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	b, err := api.store.Get(config, voter)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}
	httputils.WriteJSON(w, http.StatusOK, resource.NewBallot(config.Round, b))
}

type saveDraftRequest struct {
	Votes []ballot.Vote `json:"votes"`
}

// PostBallotHandler saves the caller's draft for the round.
func (api *NetworkHandlerAPI) PostBallotHandler(w http.ResponseWriter, r *http.Request) {
	config, err := api.roundConfig(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}
	voter, err := requestVoter(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	var body saveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputils.WriteJSONError(w, errors.ErrorInvalidMessage.Clone().SetData("reason", err.Error()))
		return
	}

	b, err := api.store.SaveDraft(config, voter, body.Votes)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}
	metrics.Ballot.DraftSaved()
	httputils.WriteJSON(w, http.StatusOK, resource.NewBallot(config.Round, b))
}

// PublishBallotHandler finalizes the caller's draft with the signed
// publication material.
func (api *NetworkHandlerAPI) PublishBallotHandler(w http.ResponseWriter, r *http.Request) {
	config, err := api.roundConfig(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}
	voter, err := requestVoter(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	var req ballot.PublishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteJSONError(w, errors.ErrorInvalidMessage.Clone().SetData("reason", err.Error()))
		return
	}

	b, err := api.store.Publish(config, voter, req)
	if err != nil {
		metrics.Ballot.PublishFailed()
		httputils.WriteJSONError(w, err)
		return
	}
	metrics.Ballot.Published()

	if api.cache != nil {
		api.cache.InvalidatePrefix(fmt.Sprintf("%s%s/rounds/%d/", resource.APIPrefix, resource.APIVersionV1, config.Round))
	}
	httputils.WriteJSON(w, http.StatusOK, resource.NewBallot(config.Round, b))
}

// StreamHandler emits a server sent event for every ballot published
// in the round.
func (api *NetworkHandlerAPI) StreamHandler(w http.ResponseWriter, r *http.Request) {
	if !httputils.IsEventStream(r) {
		httputils.WriteJSONError(w, errors.ErrorInvalidMessage.Clone().SetData("accept", r.Header.Get("Accept")))
		return
	}
	config, err := api.roundConfig(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	render := func(args ...interface{}) ([]byte, error) {
		if len(args) > 1 {
			if b, ok := args[1].(*ballot.Ballot); ok {
				key, err := round.DecodeKey(b.VoterKey)
				if err != nil || key.Round != config.Round {
					return nil, nil // some other round's ballot
				}
				return json.Marshal(resource.NewBallot(config.Round, *b).Resource())
			}
		}
		return renderEventStream(args...)
	}

	streaming(observer.BallotObserver, r, w, "published", render)
}
