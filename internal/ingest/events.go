package ingest

// Event topics published by the ingest module.
const (
	TopicSamplesReceived = "ingest.samples.received"
)
