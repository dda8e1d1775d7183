package errors

var (
	ErrorVotingClosed              = NewError(100, "voting has ended for this round")
	ErrorBallotNotFound            = NewError(101, "ballot does not exist")
	ErrorAlreadyPublished          = NewError(102, "ballot is already published")
	ErrorQuotaExceeded             = NewError(103, "vote amounts exceed the round caps")
	ErrorHashMismatch              = NewError(104, "votes hash mismatch")
	ErrorInvalidSignature          = NewError(105, "signature could not be verified")
	ErrorVoterNotApproved          = NewError(106, "voter is not approved")
	ErrorInvalidStrategy           = NewError(107, "unknown calculation strategy")
	ErrorResultsNotAvailable       = NewError(108, "results are not available yet")
	ErrorInvalidRoundKey           = NewError(109, "invalid round-scoped voter key")
	ErrorInvalidVote               = NewError(110, "invalid vote entry")
	ErrorNotAuthorized             = NewError(111, "not authorized")
	ErrorApprovalCheckFailed       = NewError(112, "approval check did not complete")
	ErrorInvalidQueryString        = NewError(113, "invalid query string")
	ErrorInvalidMessage            = NewError(114, "invalid request message")
	ErrorRoundConfigNotFound       = NewError(115, "round configuration does not exist")
	ErrorMaximumBalanceReached     = NewError(116, "amount exceeds the maximum supply")
	ErrorAmountUnderZero           = NewError(117, "amount would go below zero")
	ErrorProjectNotFound           = NewError(118, "project does not exist in this round")
	ErrorStorageRecordDoesNotExist = NewError(150, "record does not exist in storage")
	ErrorStorageRecordAlreadyExists = NewError(151, "record already exists in storage")
	ErrorStorageCoreError          = NewError(152, "storage error")
)
