package metrics

func InitPrometheusMetrics() {
	Version = PromVersion()
	API = PromAPIMetrics()
	Ballot = PromBallotMetrics()
	Tally = PromTallyMetrics()
}
