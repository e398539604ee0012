package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnseenLabel is returned by a LabelEncoder for a value outside its
	// fitted vocabulary.
	ErrUnseenLabel = errors.New("unseen label")

	// ErrInvalidRequest marks malformed operator input (bad date, time or a
	// missing required field).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrImportanceUnavailable is returned when the model exposes no
	// per-feature importances.
	ErrImportanceUnavailable = errors.New("feature importances unavailable")
)

// ArtifactLoadError reports a missing or corrupt artifact file. It is fatal:
// the service cannot start without its artifacts.
type ArtifactLoadError struct {
	Artifact string // "model", "scaler", "encoders" or "metadata"
	Path     string
	Err      error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("load %s artifact %q: %v", e.Artifact, e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error { return e.Err }

// InvalidLocationError reports a borough or ward name with no known code.
type InvalidLocationError struct {
	Field string // "borough" or "ward"
	Value string
}

func (e *InvalidLocationError) Error() string {
	return fmt.Sprintf("unknown %s name %q", e.Field, e.Value)
}

// UnknownCategoryError reports a categorical value that was never seen at
// training time.
type UnknownCategoryError struct {
	Field string
	Value string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown %s value %q", e.Field, e.Value)
}

// SchemaMismatchError reports an artifact bundle that does not agree with
// itself or with this code, e.g. an empty model column list.
type SchemaMismatchError struct {
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	return "schema mismatch: " + e.Reason
}

// PredictionError wraps a failure inside the scaler or the model.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Err)
}

func (e *PredictionError) Unwrap() error { return e.Err }

// IsFatal reports whether err means the service cannot function at all.
func IsFatal(err error) bool {
	var loadErr *ArtifactLoadError
	var schemaErr *SchemaMismatchError
	return errors.As(err, &loadErr) || errors.As(err, &schemaErr)
}

// ErrorKind returns a stable short label for err, used in metrics and API
// responses.
func ErrorKind(err error) string {
	var (
		locErr    *InvalidLocationError
		catErr    *UnknownCategoryError
		schemaErr *SchemaMismatchError
		loadErr   *ArtifactLoadError
	)
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.As(err, &locErr):
		return "invalid_location"
	case errors.As(err, &catErr):
		return "unknown_category"
	case errors.As(err, &schemaErr):
		return "schema_mismatch"
	case errors.As(err, &loadErr):
		return "artifact_load"
	default:
		return "prediction_error"
	}
}

// UserMessage converts err into a message suitable for the operator.
func UserMessage(err error) string {
	var (
		locErr *InvalidLocationError
		catErr *UnknownCategoryError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidRequest):
		return err.Error()
	case errors.As(err, &locErr):
		return fmt.Sprintf("The %s %q is not recognised, please select another one.", locErr.Field, locErr.Value)
	case errors.As(err, &catErr):
		return fmt.Sprintf("The value %q for %s was not seen when the model was trained.", catErr.Value, catErr.Field)
	default:
		return "The prediction could not be computed: " + err.Error()
	}
}
