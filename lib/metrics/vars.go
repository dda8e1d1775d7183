package metrics

var (
	API    = NopAPIMetrics()
	Ballot = NopBallotMetrics()
	Tally  = NopTallyMetrics()
)
