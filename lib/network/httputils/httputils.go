package httputils

import (
	"net/http"

	"github.com/tokenvote/tokenvote/lib/errors"
)

// IsEventStream checks request header accept is text/event-stream
func IsEventStream(r *http.Request) bool {
	if r.Header.Get("Accept") == "text/event-stream" {
		return true
	}
	return false
}

var (
	ErrorsToStatus = map[uint]int{
		errors.ErrorVotingClosed.Code:        http.StatusForbidden,
		errors.ErrorBallotNotFound.Code:      http.StatusNotFound,
		errors.ErrorAlreadyPublished.Code:    http.StatusConflict,
		errors.ErrorQuotaExceeded.Code:       http.StatusBadRequest,
		errors.ErrorHashMismatch.Code:        http.StatusBadRequest,
		errors.ErrorInvalidSignature.Code:    http.StatusUnauthorized,
		errors.ErrorVoterNotApproved.Code:    http.StatusUnauthorized,
		errors.ErrorResultsNotAvailable.Code: http.StatusBadRequest,
		errors.ErrorInvalidRoundKey.Code:     http.StatusBadRequest,
		errors.ErrorInvalidVote.Code:         http.StatusBadRequest,
		errors.ErrorNotAuthorized.Code:       http.StatusForbidden,
		errors.ErrorApprovalCheckFailed.Code: http.StatusServiceUnavailable,
		errors.ErrorInvalidQueryString.Code:  http.StatusBadRequest,
		errors.ErrorInvalidMessage.Code:      http.StatusBadRequest,
		errors.ErrorRoundConfigNotFound.Code: http.StatusNotFound,
		errors.ErrorProjectNotFound.Code:     http.StatusNotFound,
	}
)

func StatusCode(err error) int {
	if e, ok := err.(*errors.Error); ok {
		if status, ok := ErrorsToStatus[e.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}
