package ws

import (
	"time"

	"github.com/vitalscope/vitalscope/pkg/vitals"
)

// MessageType discriminates WebSocket messages.
type MessageType string

const (
	MessageAnomaly    MessageType = "alert.anomaly"
	MessageRegression MessageType = "alert.regression"
)

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type      MessageType `json:"type"`
	Metric    string      `json:"metric"`
	Timestamp time.Time   `json:"timestamp"`
	Data      any         `json:"data"`
}

// AnomalyData is the payload for alert.anomaly messages.
type AnomalyData struct {
	Result *vitals.AnomalyResult `json:"result"`
}

// RegressionData is the payload for alert.regression messages.
type RegressionData struct {
	Alert *vitals.RegressionAlert `json:"alert"`
}
