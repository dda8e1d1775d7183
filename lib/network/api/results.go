package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tokenvote/tokenvote/lib/ballot"
	"github.com/tokenvote/tokenvote/lib/errors"
	"github.com/tokenvote/tokenvote/lib/metrics"
	"github.com/tokenvote/tokenvote/lib/network/api/resource"
	"github.com/tokenvote/tokenvote/lib/network/httputils"
	"github.com/tokenvote/tokenvote/lib/round"
	"github.com/tokenvote/tokenvote/lib/tally"
)

// resultsGate hides tallies until the round's result time. Admins see
// them early, but those responses are marked no-store: the response
// cache keys on the URL alone, and an early tally cached for an admin
// must not be served to anonymous callers.
func (api *NetworkHandlerAPI) resultsGate(w http.ResponseWriter, r *http.Request, config round.Config) error {
	if config.ResultsAvailable(api.clock) {
		return nil
	}
	if voter := r.Header.Get(VoterHeader); len(voter) > 0 && config.IsAdmin(voter) {
		w.Header().Set("Cache-Control", "no-store")
		return nil
	}
	return errors.ErrorResultsNotAvailable
}

func (api *NetworkHandlerAPI) computeResult(config round.Config) (tally.Result, error) {
	started := time.Now()
	result, err := tally.Compute(api.storage, config)
	if err != nil {
		return result, err
	}
	metrics.Tally.SetPublishedBallots(result.TotalVoters)
	metrics.Tally.ObserveComputeDuration(time.Since(started).Seconds())
	return result, nil
}

// GetResultsHandler returns the round summary: strategy, voter count
// and the aggregate vote total.
func (api *NetworkHandlerAPI) GetResultsHandler(w http.ResponseWriter, r *http.Request) {
	config, err := api.roundConfig(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}
	if err := api.resultsGate(w, r, config); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	result, err := api.computeResult(config)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}
	httputils.WriteJSON(w, http.StatusOK, resource.NewResult(result))
}

// GetProjectsHandler returns the ranked project scores, paginated.
func (api *NetworkHandlerAPI) GetProjectsHandler(w http.ResponseWriter, r *http.Request) {
	config, err := api.roundConfig(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}
	if err := api.resultsGate(w, r, config); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}
	paginator, err := httputils.NewPaginator(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	result, err := api.computeResult(config)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	ranked := tally.Page(tally.Rank(result), paginator.Offset(), paginator.Limit())

	ids := make([]string, 0, len(ranked))
	for _, score := range ranked {
		ids = append(ids, score.ProjectID)
	}
	names := api.projectNames(ids)
	var resources []resource.APIResource
	for _, score := range ranked {
		p := resource.NewProjectScore(config.Round, score)
		if name, ok := names[score.ProjectID]; ok {
			p.SetName(name)
		}
		resources = append(resources, p)
	}

	list := resource.NewResourceList(resources, paginator.SelfLink(), paginator.NextLink(), paginator.PrevLink())
	httputils.WriteJSON(w, http.StatusOK, list)
}

// GetProjectHandler returns a single project's score.
func (api *NetworkHandlerAPI) GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	config, err := api.roundConfig(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}
	if err := api.resultsGate(w, r, config); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	result, err := api.computeResult(config)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	projectID := mux.Vars(r)["id"]
	score, ok := result.Projects[projectID]
	if !ok {
		httputils.WriteJSONError(w, errors.ErrorProjectNotFound.Clone().SetData("projectId", projectID))
		return
	}
	httputils.WriteJSON(w, http.StatusOK, resource.NewProjectScore(config.Round, score))
}

// GetPayoutsHandler returns the round's pool split per project.
func (api *NetworkHandlerAPI) GetPayoutsHandler(w http.ResponseWriter, r *http.Request) {
	config, err := api.roundConfig(r)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}
	if err := api.resultsGate(w, r, config); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	pool, err := config.Pool()
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	result, err := api.computeResult(config)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	var resources []resource.APIResource
	for _, line := range tally.Distribute(result, pool) {
		resources = append(resources, resource.NewPayout(config.Round, line))
	}
	list := resource.NewResourceList(resources, r.URL.String(), "", "")
	httputils.WriteJSON(w, http.StatusOK, list)
}

// GetExportHandler returns every published ballot with its signature,
// so the round's operators can recompute the tally and verify the
// signatures offline. Admins only.
func (api *NetworkHandlerAPI) GetExportHandler(w http.ResponseWriter, r *http.Request) {
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
		httputils.WriteJSONError(w, errors.ErrorNotAuthorized)
		return
	}

	records, err := api.store.ExportPublished(config.Round)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}
	if records == nil {
		records = []ballot.AuditRecord{}
	}
	api.annotateExport(records)
	httputils.WriteJSON(w, http.StatusOK, records)
}

// annotateExport joins each audit record's votes with the project
// display names, one resolver round trip for the whole export.
func (api *NetworkHandlerAPI) annotateExport(records []ballot.AuditRecord) {
	seen := map[string]bool{}
	var ids []string
	for _, record := range records {
		for _, vote := range record.Votes {
			if !seen[vote.ProjectID] {
				seen[vote.ProjectID] = true
				ids = append(ids, vote.ProjectID)
			}
		}
	}
	names := api.projectNames(ids)
	if len(names) == 0 {
		return
	}

	for i := range records {
		recordNames := map[string]string{}
		for _, vote := range records[i].Votes {
			if name, ok := names[vote.ProjectID]; ok {
				recordNames[vote.ProjectID] = name
			}
		}
		if len(recordNames) > 0 {
			records[i].ProjectNames = recordNames
		}
	}
}

func (api *NetworkHandlerAPI) projectNames(ids []string) map[string]string {
	if api.metadata == nil || len(ids) == 0 {
		return nil
	}
	names, err := api.metadata.ProjectNames(ids)
	if err != nil {
		log.Warn("project metadata lookup failed", "error", err)
		return nil
	}
	return names
}
