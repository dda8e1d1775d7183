package resource

const (
	APIVersionV1 = "/v1"
	APIPrefix    = "/api"

	URLRounds         = APIPrefix + APIVersionV1 + "/rounds/{round}"
	URLBallot         = APIPrefix + APIVersionV1 + "/rounds/{round}/ballot"
	URLBallotPublish  = APIPrefix + APIVersionV1 + "/rounds/{round}/ballot/publish"
	URLResults        = APIPrefix + APIVersionV1 + "/rounds/{round}/results"
	URLResultProjects = APIPrefix + APIVersionV1 + "/rounds/{round}/results/projects"
	URLResultProject  = APIPrefix + APIVersionV1 + "/rounds/{round}/results/projects/{id}"
	URLPayouts        = APIPrefix + APIVersionV1 + "/rounds/{round}/payouts"
	URLExport         = APIPrefix + APIVersionV1 + "/rounds/{round}/export"
	URLRoundConfig    = APIPrefix + APIVersionV1 + "/rounds/{round}/config"
	URLStream         = APIPrefix + APIVersionV1 + "/rounds/{round}/stream"
)
