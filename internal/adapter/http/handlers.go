package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/google/uuid"

	"github.com/couchcryptid/lfb-response-predictor/internal/domain"
)

// RequestIDHeader carries a caller-supplied request ID and echoes it back.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 1 << 20

type predictionResponse struct {
	RequestID  string                  `json:"request_id"`
	Prediction domain.PredictionResult `json:"prediction"`
	Display    string                  `json:"display"`
}

type errorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Field     string `json:"field,omitempty"`
}

type importanceResponse struct {
	Features        []domain.FeatureImportance `json:"features"`
	Consistent      bool                       `json:"consistent"`
	ColumnCount     int                        `json:"column_count"`
	ImportanceCount int                        `json:"importance_count"`
}

func (s *Server) handleFormOptions(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.predictor.FormOptions())
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var payload domain.IncidentPayload
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&payload); err != nil {
		id := requestID(r, "")
		w.Header().Set(RequestIDHeader, id)
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorResponse{
			RequestID: id,
			Error:     "request body is not a valid incident JSON object",
			Kind:      "invalid_request",
		})
		return
	}

	id := requestID(r, payload.RequestID)
	w.Header().Set(RequestIDHeader, id)

	result, err := s.predictor.PredictPayload(payload)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Error("prediction request failed", "request_id", id, "error", err)
		}
		sharedobs.WriteJSON(w, status, errorResponse{
			RequestID: id,
			Error:     domain.UserMessage(err),
			Kind:      domain.ErrorKind(err),
			Field:     errorField(err),
		})
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, predictionResponse{
		RequestID:  id,
		Prediction: result,
		Display:    result.String(),
	})
}

func (s *Server) handleFeatureImportance(w http.ResponseWriter, _ *http.Request) {
	report, err := s.predictor.FeatureImportance()
	if errors.Is(err, domain.ErrImportanceUnavailable) {
		sharedobs.WriteJSON(w, http.StatusNotFound, errorResponse{
			Error: "the loaded model does not expose feature importances",
			Kind:  "importance_unavailable",
		})
		return
	}
	if err != nil {
		s.logger.Error("feature importance failed", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, errorResponse{
			Error: err.Error(),
			Kind:  domain.ErrorKind(err),
		})
		return
	}

	features := report.Features
	if features == nil {
		features = []domain.FeatureImportance{}
	}
	sharedobs.WriteJSON(w, http.StatusOK, importanceResponse{
		Features:        features,
		Consistent:      report.Consistent(),
		ColumnCount:     report.ColumnCount,
		ImportanceCount: report.ImportanceCount,
	})
}

// requestID prefers the header, then the body, and otherwise generates one.
func requestID(r *http.Request, fromBody string) string {
	if id := strings.TrimSpace(r.Header.Get(RequestIDHeader)); id != "" {
		return id
	}
	if fromBody != "" {
		return fromBody
	}
	return uuid.NewString()
}

func statusFor(err error) int {
	var (
		locErr *domain.InvalidLocationError
		catErr *domain.UnknownCategoryError
	)
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.As(err, &locErr), errors.As(err, &catErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// wireFields maps training columns back to the request field a client sent.
var wireFields = map[string]string{
	domain.FieldIncidentGroup:    "incident_group",
	domain.FieldPropertyCategory: "property_category",
	domain.FieldStation:          "station",
	domain.FieldDeployedFrom:     "deployed_from",
	domain.FieldStopCode:         "stop_code",
	domain.FieldWardCode:         "ward",
	domain.FieldBoroughCode:      "borough",
	domain.FieldTimeOfDay:        "call_time",
}

func errorField(err error) string {
	var (
		locErr *domain.InvalidLocationError
		catErr *domain.UnknownCategoryError
		field  string
	)
	switch {
	case errors.As(err, &locErr):
		field = locErr.Field
	case errors.As(err, &catErr):
		field = catErr.Field
	default:
		return ""
	}
	if wire, ok := wireFields[field]; ok {
		return wire
	}
	return field
}
