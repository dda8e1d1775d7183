package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tokenvote/tokenvote/lib/errors"
	"github.com/tokenvote/tokenvote/lib/round"
)

func (api *NetworkHandlerAPI) roundConfig(r *http.Request) (round.Config, error) {
	vars := mux.Vars(r)
	number, err := strconv.ParseUint(vars["round"], 10, 64)
	if err != nil || number < 1 {
		return round.Config{}, errors.ErrorInvalidQueryString.Clone().SetData("round", vars["round"])
	}
	return round.GetConfig(api.storage, number)
}

func requestVoter(r *http.Request) (string, error) {
	voter := r.Header.Get(VoterHeader)
	if len(voter) < 1 {
		return "", errors.ErrorNotAuthorized.Clone().SetData("reason", "missing voter address")
	}
	return voter, nil
}
