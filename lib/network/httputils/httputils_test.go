package httputils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tokenvote/tokenvote/lib/errors"
)

func TestStatusCode(t *testing.T) {
	require.Equal(t, http.StatusForbidden, StatusCode(errors.ErrorVotingClosed))
	require.Equal(t, http.StatusNotFound, StatusCode(errors.ErrorBallotNotFound))
	require.Equal(t, http.StatusConflict, StatusCode(errors.ErrorAlreadyPublished))
	require.Equal(t, http.StatusUnauthorized, StatusCode(errors.ErrorInvalidSignature))
	require.Equal(t, http.StatusInternalServerError, StatusCode(errors.ErrorStorageCoreError))
}

func TestWriteJSONErrorProblem(t *testing.T) {
	recorder := httptest.NewRecorder()
	WriteJSONError(recorder, errors.ErrorAlreadyPublished)

	require.Equal(t, http.StatusConflict, recorder.Code)
	require.Equal(t, "application/problem+json", recorder.Header().Get("Content-Type"))

	var problem Problem
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &problem))
	require.Equal(t, errors.ErrorAlreadyPublished.Message, problem.Title)
	require.Equal(t, http.StatusConflict, problem.Status)
}

func TestPaginator(t *testing.T) {
	r := httptest.NewRequest("GET", "/rounds/1/results/projects?offset=20&limit=10", nil)
	p, err := NewPaginator(r)
	require.NoError(t, err)
	require.Equal(t, uint64(20), p.Offset())
	require.Equal(t, uint64(10), p.Limit())
	require.Equal(t, "/rounds/1/results/projects?limit=10&offset=30", p.NextLink())
	require.Equal(t, "/rounds/1/results/projects?limit=10&offset=10", p.PrevLink())
}

func TestPaginatorDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/rounds/1/results/projects", nil)
	p, err := NewPaginator(r)
	require.NoError(t, err)
	require.Equal(t, uint64(0), p.Offset())
	require.Equal(t, DefaultMaxLimit, p.Limit())
}

func TestPaginatorInvalid(t *testing.T) {
	for _, query := range []string{"offset=abc", "limit=-1", "reverse=maybe"} {
		r := httptest.NewRequest("GET", "/rounds/1/results/projects?"+query, nil)
		_, err := NewPaginator(r)
		require.Error(t, err, query)
	}
}
