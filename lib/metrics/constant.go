package metrics

const (
	Namespace       = "tokenvote"
	APISubsystem    = "api"
	BallotSubsystem = "ballot"
	TallySubsystem  = "tally"
)
