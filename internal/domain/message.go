package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Reply statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// RawMessage is an unprocessed request message from the source topic.
type RawMessage struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputMessage is the serialized reply destined for the sink topic.
type OutputMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// PredictionReply answers one request. A failed request carries an error
// message and never a prediction.
type PredictionReply struct {
	RequestID   string            `json:"request_id"`
	Status      string            `json:"status"`
	Prediction  *PredictionResult `json:"prediction,omitempty"`
	Display     string            `json:"display,omitempty"`
	Error       string            `json:"error,omitempty"`
	ErrorKind   string            `json:"error_kind,omitempty"`
	ProcessedAt time.Time         `json:"processed_at"`
}

// NewReply builds the reply for a finished prediction.
func NewReply(requestID string, result PredictionResult, err error) PredictionReply {
	reply := PredictionReply{
		RequestID:   requestID,
		ProcessedAt: clock.Now().UTC(),
	}
	if err != nil {
		reply.Status = StatusError
		reply.Error = UserMessage(err)
		reply.ErrorKind = ErrorKind(err)
		return reply
	}
	reply.Status = StatusOK
	reply.Prediction = &result
	reply.Display = result.String()
	return reply
}

// ParseRawMessage decodes the request payload of a raw message. The message
// key is used as the request ID when the payload has none.
func ParseRawMessage(raw RawMessage) (IncidentPayload, error) {
	var p IncidentPayload
	if err := json.Unmarshal(raw.Value, &p); err != nil {
		return IncidentPayload{}, fmt.Errorf("parse request message: %w", err)
	}
	if p.RequestID == "" {
		p.RequestID = string(raw.Key)
	}
	return p, nil
}

// SerializeReply encodes a reply for the sink topic, keyed by request ID.
func SerializeReply(reply PredictionReply) (OutputMessage, error) {
	data, err := json.Marshal(reply)
	if err != nil {
		return OutputMessage{}, fmt.Errorf("serialize prediction reply: %w", err)
	}
	return OutputMessage{
		Key:   []byte(reply.RequestID),
		Value: data,
		Headers: map[string]string{
			"status":       reply.Status,
			"processed_at": reply.ProcessedAt.Format(time.RFC3339),
		},
	}, nil
}
