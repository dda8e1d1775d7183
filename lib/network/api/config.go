package api

import (
	"encoding/json"
	"net/http"

	"github.com/tokenvote/tokenvote/lib/errors"
	"github.com/tokenvote/tokenvote/lib/network/httputils"
	"github.com/tokenvote/tokenvote/lib/round"
)

// GetRoundConfigHandler returns the round settings. Public, so
// clients can render deadlines and caps.
func (api *NetworkHandlerAPI) GetRoundConfigHandler(w http.ResponseWriter, r *http.Request) {
	config, err := api.roundConfig(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}
	httputils.WriteJSON(w, http.StatusOK, config)
}

// PutRoundConfigHandler updates an existing round's settings. Only
// the round's admins may call it, and the round number and admin list
// itself never change through this endpoint.
func (api *NetworkHandlerAPI) PutRoundConfigHandler(w http.ResponseWriter, r *http.Request) {
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
	if !config.IsAdmin(voter) {
		httputils.WriteJSONError(w, errors.ErrorNotAuthorized.Clone().SetData("voter", voter))
		return
	}

	var updated round.Config
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		httputils.WriteJSONError(w, errors.ErrorInvalidMessage.Clone().SetData("reason", err.Error()))
		return
	}
	updated.Round = config.Round
	updated.Admins = config.Admins

	if _, err := updated.Pool(); err != nil {
		httputils.WriteJSONError(w, errors.ErrorInvalidMessage.Clone().SetData("pool_amount", updated.PoolAmount))
		return
	}
	if err := updated.Save(api.storage); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	log.Info("round config updated", "round", config.Round, "admin", voter)
	httputils.WriteJSON(w, http.StatusOK, updated)
}
