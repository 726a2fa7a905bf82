package notify

// Event topics consumed by the notify module.
const (
	TopicAnomalyDetected    = "analyzer.anomaly.detected"
	TopicRegressionDetected = "analyzer.regression.detected"
)

// Event types passed to notifiers.
const (
	EventTypeAnomaly    = "anomaly"
	EventTypeRegression = "regression"
)
