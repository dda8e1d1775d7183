package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokenvote/tokenvote/lib/ballot"
	"github.com/tokenvote/tokenvote/lib/common"
	"github.com/tokenvote/tokenvote/lib/round"
	"github.com/tokenvote/tokenvote/lib/storage"
)

func publishThroughAPI(t *testing.T, serverURL string, config round.Config, votes []ballot.Vote) ballot.TestVoter {
	voter := ballot.NewTestVoter()
	response := doJSON(t, "POST", serverURL+"/rounds/1/ballot", voter.Address, saveDraftRequest{Votes: votes})
	require.Equal(t, http.StatusOK, response.StatusCode)
	response.Body.Close()

	response = doJSON(t, "POST", serverURL+"/rounds/1/ballot/publish", voter.Address, voter.SignedPublishRequest(votes, config.ChainID))
	require.Equal(t, http.StatusOK, response.StatusCode)
	response.Body.Close()
	return voter
}

func setupResultsRound(t *testing.T) (string, *storage.LevelDBBackend, round.Config) {
	server, st, _ := prepareAPIServer(t, nil)
	config := round.NewConfig(1)
	config.Strategy = round.StrategyAverage
	config.QuorumThreshold = 2
	require.NoError(t, config.Save(st))

	publishThroughAPI(t, server.URL, config, []ballot.Vote{{ProjectID: "p1", Amount: common.Amount(100)}})
	publishThroughAPI(t, server.URL, config, []ballot.Vote{{ProjectID: "p1", Amount: common.Amount(50)}})
	publishThroughAPI(t, server.URL, config, []ballot.Vote{{ProjectID: "p2", Amount: common.Amount(10)}})

	return server.URL, st, config
}

func TestAPIResults(t *testing.T) {
	serverURL, _, _ := setupResultsRound(t)

	response := doJSON(t, "GET", serverURL+"/rounds/1/results", "", nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	body := readBody(t, response)

	require.Equal(t, float64(3), body["total_voters"])
	require.Equal(t, "75", body["total_votes"])
	require.Equal(t, "average", body["strategy"])
}

func TestAPIResultProjects(t *testing.T) {
	serverURL, _, _ := setupResultsRound(t)

	response := doJSON(t, "GET", serverURL+"/rounds/1/results/projects", "", nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	body := readBody(t, response)

	embedded := body["_embedded"].(map[string]interface{})
	records := embedded["records"].([]interface{})
	require.Len(t, records, 2)

	first := records[0].(map[string]interface{})
	require.Equal(t, "p1", first["id"])
	require.Equal(t, "75", first["votes"])

	second := records[1].(map[string]interface{})
	require.Equal(t, "p2", second["id"])
	require.Equal(t, "0", second["votes"])
}

func TestAPIResultProjectsPagination(t *testing.T) {
	serverURL, _, _ := setupResultsRound(t)

	response := doJSON(t, "GET", serverURL+"/rounds/1/results/projects?offset=1&limit=1", "", nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	body := readBody(t, response)

	embedded := body["_embedded"].(map[string]interface{})
	records := embedded["records"].([]interface{})
	require.Len(t, records, 1)
	require.Equal(t, "p2", records[0].(map[string]interface{})["id"])
}

func TestAPIResultProject(t *testing.T) {
	serverURL, _, _ := setupResultsRound(t)

	response := doJSON(t, "GET", serverURL+"/rounds/1/results/projects/p1", "", nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	body := readBody(t, response)
	require.Equal(t, "75", body["votes"])

	response = doJSON(t, "GET", serverURL+"/rounds/1/results/projects/nope", "", nil)
	require.Equal(t, http.StatusNotFound, response.StatusCode)
	response.Body.Close()
}

func TestAPIPayouts(t *testing.T) {
	serverURL, st, config := setupResultsRound(t)
	config.PoolAmount = "1000"
	require.NoError(t, config.Save(st))

	response := doJSON(t, "GET", serverURL+"/rounds/1/payouts", "", nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	body := readBody(t, response)

	embedded := body["_embedded"].(map[string]interface{})
	records := embedded["records"].([]interface{})
	require.Len(t, records, 2)

	first := records[0].(map[string]interface{})
	require.Equal(t, "p1", first["id"])
	require.Equal(t, "1000", first["payout"])

	second := records[1].(map[string]interface{})
	require.Equal(t, "0", second["payout"])
}

func TestAPIResultsGate(t *testing.T) {
	clock := common.FixedClock{T: common.MustParseISO8601("2026-08-30T00:00:00.000000000Z")}
	server, st, _ := prepareAPIServer(t, clock)

	admin := ballot.NewTestVoter()
	config := round.NewConfig(1)
	config.ResultsAt = "2026-09-01T00:00:00.000000000Z"
	config.Admins = []string{admin.Address}
	require.NoError(t, config.Save(st))

	{ // hidden before the reveal time
		response := doJSON(t, "GET", server.URL+"/rounds/1/results", "", nil)
		require.Equal(t, http.StatusBadRequest, response.StatusCode)
		response.Body.Close()
	}
	{ // admins see them early
		response := doJSON(t, "GET", server.URL+"/rounds/1/results", admin.Address, nil)
		require.Equal(t, http.StatusOK, response.StatusCode)
		response.Body.Close()
	}
}

type staticMetadata map[string]string

func (m staticMetadata) ProjectNames(ids []string) (map[string]string, error) {
	names := map[string]string{}
	for _, id := range ids {
		if name, ok := m[id]; ok {
			names[id] = name
		}
	}
	return names, nil
}

func TestAPIExportProjectNames(t *testing.T) {
	server, st, apiHandler := prepareAPIServer(t, nil)
	apiHandler.SetMetadataResolver(staticMetadata{"p1": "Project One"})

	config := round.NewConfig(1)
	config.Admins = []string{"0xadmin"}
	require.NoError(t, config.Save(st))

	publishThroughAPI(t, server.URL, config, []ballot.Vote{
		{ProjectID: "p1", Amount: common.Amount(100)},
		{ProjectID: "p2", Amount: common.Amount(10)},
	})

	response := doJSON(t, "GET", server.URL+"/rounds/1/export", "0xadmin", nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	defer response.Body.Close()

	var records []ballot.AuditRecord
	decodeJSONList(t, response, &records)
	require.Len(t, records, 1)

	// only resolvable ids are joined, unknown ones stay bare
	require.Equal(t, map[string]string{"p1": "Project One"}, records[0].ProjectNames)
}

func TestAPIResultsAdminPreviewNotCached(t *testing.T) {
	clock := common.FixedClock{T: common.MustParseISO8601("2026-08-30T00:00:00.000000000Z")}
	server, st, _ := prepareCachedAPIServer(t, clock)

	admin := ballot.NewTestVoter()
	config := round.NewConfig(1)
	config.ResultsAt = "2026-09-01T00:00:00.000000000Z"
	config.Admins = []string{admin.Address}
	require.NoError(t, config.Save(st))

	// an admin preview before the reveal must not populate the shared
	// response cache
	response := doJSON(t, "GET", server.URL+"/rounds/1/results", admin.Address, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	response.Body.Close()

	response = doJSON(t, "GET", server.URL+"/rounds/1/results", "", nil)
	require.Equal(t, http.StatusBadRequest, response.StatusCode)
	response.Body.Close()

	// and previews stay available afterwards
	response = doJSON(t, "GET", server.URL+"/rounds/1/results", admin.Address, nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	response.Body.Close()
}

func TestAPIExport(t *testing.T) {
	serverURL, st, config := setupResultsRound(t)
	config.Admins = []string{"0xadmin"}
	require.NoError(t, config.Save(st))

	response := doJSON(t, "GET", serverURL+"/rounds/1/export", "0xoutsider", nil)
	require.Equal(t, http.StatusForbidden, response.StatusCode)
	response.Body.Close()

	response = doJSON(t, "GET", serverURL+"/rounds/1/export", "0xadmin", nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	defer response.Body.Close()

	var records []ballot.AuditRecord
	decodeJSONList(t, response, &records)
	require.Len(t, records, 3)
	for _, record := range records {
		require.NotEmpty(t, record.VoterID)
		require.NotEmpty(t, record.Signature)
		require.NotEmpty(t, record.PublishedAt)
		require.NotEmpty(t, record.Votes)
	}
}
