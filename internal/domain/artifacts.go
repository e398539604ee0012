package domain

import (
	"fmt"
	"sort"
)

// Training-time column names.
const (
	FieldYear             = "Year"
	FieldMonth            = "Month"
	FieldDayOfWeek        = "DayOfWeek"
	FieldHour             = "Hour"
	FieldIsWeekend        = "IsWeekend"
	FieldTimeOfDay        = "TimeOfDay"
	FieldIncidentGroup    = "IncidentGroup"
	FieldPropertyCategory = "PropertyCategory"
	FieldWardCode         = "IncGeo_WardCode"
	FieldBoroughCode      = "IncGeo_BoroughCode"
	FieldStation          = "IncidentStationGround"
	FieldDeployedFrom     = "DeployedFromLocation"
	FieldStopCode         = "StopCodeDescription"
	FieldPumpOrder        = "PumpOrder"
	FieldDelayCodeID      = "DelayCodeId"
)

// Scaler applies a fitted feature transform to a matrix of rows.
type Scaler interface {
	Transform(rows [][]float64) ([][]float64, error)
}

// Regressor is a fitted model returning one prediction per row.
type Regressor interface {
	Predict(rows [][]float64) ([]float64, error)
}

// ImportanceReporter is implemented by models that expose per-feature
// importances, aligned with the model columns.
type ImportanceReporter interface {
	FeatureImportances() []float64
}

// LabelEncoder maps category strings to their fitted integer codes. Values
// outside the fitted vocabulary return an error wrapping ErrUnseenLabel.
type LabelEncoder interface {
	Transform(values []string) ([]int, error)
}

// Metadata is the training-time description of the input space. It is built
// once at startup and never mutated.
type Metadata struct {
	WardNameToCode    map[string]string
	BoroughNameToCode map[string]string

	IncidentGroups     []string
	PropertyCategories []string
	StationCodes       []string
	DeployedLocations  []string
	StopCodes          []string
	TimeOfDayLabels    []string

	// ModelColumns is the exact, ordered input schema of the model.
	ModelColumns []string
}

// DefaultStopCode is the stop code used when a request has none.
func (m Metadata) DefaultStopCode() string {
	if len(m.StopCodes) == 0 {
		return ""
	}
	return m.StopCodes[0]
}

// KnownValues returns the valid values of a categorical training column, or
// nil when the metadata does not constrain it.
func (m Metadata) KnownValues(field string) []string {
	switch field {
	case FieldIncidentGroup:
		return m.IncidentGroups
	case FieldPropertyCategory:
		return m.PropertyCategories
	case FieldStation:
		return m.StationCodes
	case FieldDeployedFrom:
		return m.DeployedLocations
	case FieldStopCode:
		return m.StopCodes
	case FieldTimeOfDay:
		if len(m.TimeOfDayLabels) == 0 {
			return TimeOfDayCategories()
		}
		return m.TimeOfDayLabels
	default:
		return nil
	}
}

// FormOptions lists the choices an input form offers for each field.
type FormOptions struct {
	Boroughs           []string `json:"boroughs"`
	Wards              []string `json:"wards"`
	Stations           []string `json:"stations"`
	IncidentGroups     []string `json:"incident_groups"`
	PropertyCategories []string `json:"property_categories"`
	DeployedLocations  []string `json:"deployed_locations"`
	StopCodes          []string `json:"stop_codes"`
	DefaultStopCode    string   `json:"default_stop_code"`
	TimeOfDay          []string `json:"time_of_day"`
}

// FormOptions returns the selectable values, with area names sorted.
func (m Metadata) FormOptions() FormOptions {
	return FormOptions{
		Boroughs:           sortedKeys(m.BoroughNameToCode),
		Wards:              sortedKeys(m.WardNameToCode),
		Stations:           cloneStrings(m.StationCodes),
		IncidentGroups:     cloneStrings(m.IncidentGroups),
		PropertyCategories: cloneStrings(m.PropertyCategories),
		DeployedLocations:  cloneStrings(m.DeployedLocations),
		StopCodes:          cloneStrings(m.StopCodes),
		DefaultStopCode:    m.DefaultStopCode(),
		TimeOfDay:          cloneStrings(m.KnownValues(FieldTimeOfDay)),
	}
}

// Artifacts is the immutable bundle produced at training time: model,
// scaler, label encoders and metadata.
type Artifacts struct {
	Model    Regressor
	Scaler   Scaler
	Encoders map[string]LabelEncoder
	Metadata Metadata
}

// Validate checks the invariants the encoder and predictor rely on.
func (a Artifacts) Validate() error {
	if a.Model == nil {
		return &SchemaMismatchError{Reason: "artifact bundle has no model"}
	}
	if a.Scaler == nil {
		return &SchemaMismatchError{Reason: "artifact bundle has no scaler"}
	}
	if len(a.Metadata.ModelColumns) == 0 {
		return &SchemaMismatchError{Reason: "model_columns is empty or missing"}
	}
	seen := make(map[string]struct{}, len(a.Metadata.ModelColumns))
	for _, col := range a.Metadata.ModelColumns {
		if _, dup := seen[col]; dup {
			return &SchemaMismatchError{Reason: fmt.Sprintf("duplicate model column %q", col)}
		}
		seen[col] = struct{}{}
	}
	if len(a.Metadata.StopCodes) == 0 {
		return &SchemaMismatchError{Reason: "no known stop codes to default to"}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string(nil), s...)
}
