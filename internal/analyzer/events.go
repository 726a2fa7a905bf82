package analyzer

// Event topics consumed by the analyzer module.
const (
	TopicSamplesReceived = "ingest.samples.received"
)

// Event topics published by the analyzer module.
const (
	TopicAnomalyDetected    = "analyzer.anomaly.detected"
	TopicRegressionDetected = "analyzer.regression.detected"
)
