package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/couchcryptid/lfb-response-predictor/internal/domain"
)

// ReplyTransformer implements Transformer: it decodes a request message, runs
// the prediction and serializes the reply.
type ReplyTransformer struct {
	service *Service
	logger  *slog.Logger
}

// NewTransformer creates a ReplyTransformer.
func NewTransformer(service *Service, logger *slog.Logger) *ReplyTransformer {
	return &ReplyTransformer{service: service, logger: logger}
}

// Transform returns an error only for messages that cannot be decoded. A
// request that fails validation or prediction still produces a reply, with
// status "error" and no prediction.
func (t *ReplyTransformer) Transform(_ context.Context, raw domain.RawMessage) (domain.OutputMessage, error) {
	payload, err := domain.ParseRawMessage(raw)
	if err != nil {
		return domain.OutputMessage{}, err
	}
	if payload.RequestID == "" {
		payload.RequestID = uuid.NewString()
	}

	result, err := t.service.PredictPayload(payload)
	reply := domain.NewReply(payload.RequestID, result, err)
	if err != nil {
		t.logger.Debug("replying with error",
			"request_id", payload.RequestID,
			"error_kind", reply.ErrorKind,
			"offset", raw.Offset,
		)
	}
	return domain.SerializeReply(reply)
}
