package domain

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// EncodingPolicy decides what happens to categorical values the model never
// saw during training.
type EncodingPolicy string

const (
	// PolicyStrict rejects unseen values with an UnknownCategoryError.
	PolicyStrict EncodingPolicy = "strict"
	// PolicyLenient one-hot expands a field whose label encoder rejects the
	// value; unknown indicator columns are then zero-filled by alignment.
	PolicyLenient EncodingPolicy = "lenient"
)

// ParseEncodingPolicy parses "strict" or "lenient". Empty means strict.
func ParseEncodingPolicy(s string) (EncodingPolicy, error) {
	switch EncodingPolicy(s) {
	case "", PolicyStrict:
		return PolicyStrict, nil
	case PolicyLenient:
		return PolicyLenient, nil
	default:
		return "", fmt.Errorf("unknown encoding policy %q", s)
	}
}

// Placeholder values for schema fields the form does not expose.
const (
	defaultPumpOrder   = 1
	defaultDelayCodeID = 1
)

// FeatureVector is one model input row, aligned 1:1 with the model columns.
type FeatureVector struct {
	Columns []string
	Values  []float64
}

// Len returns the number of columns.
func (v FeatureVector) Len() int { return len(v.Values) }

// Value returns the value of the named column.
func (v FeatureVector) Value(column string) (float64, bool) {
	i := slices.Index(v.Columns, column)
	if i < 0 {
		return 0, false
	}
	return v.Values[i], true
}

// Row returns a copy of the values.
func (v FeatureVector) Row() []float64 {
	return slices.Clone(v.Values)
}

// Column is a named numeric value in an expanded record.
type Column struct {
	Name  string
	Value float64
}

// field is one entry of the assembled record, either numeric or categorical.
type field struct {
	name        string
	value       float64
	category    string
	categorical bool
}

func numeric(name string, v float64) field { return field{name: name, value: v} }

func categorical(name, v string) field { return field{name: name, category: v, categorical: true} }

// text is the string form passed to label encoders, matching astype(str) on
// the training frame: integral numbers render without a decimal point.
func (f field) text() string {
	if f.categorical {
		return f.category
	}
	return strconv.FormatFloat(f.value, 'f', -1, 64)
}

// Engine encodes requests and runs inference over an immutable artifact
// bundle. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	artifacts Artifacts
	policy    EncodingPolicy
}

// NewEngine validates the bundle and returns an Engine. A bundle that fails
// validation yields a SchemaMismatchError.
func NewEngine(artifacts Artifacts, policy EncodingPolicy) (*Engine, error) {
	if err := artifacts.Validate(); err != nil {
		return nil, err
	}
	if policy == "" {
		policy = PolicyStrict
	}
	return &Engine{artifacts: artifacts, policy: policy}, nil
}

// Metadata returns the bundle metadata.
func (e *Engine) Metadata() Metadata { return e.artifacts.Metadata }

// Policy returns the encoding policy in use.
func (e *Engine) Policy() EncodingPolicy { return e.policy }

// Encode turns req into a FeatureVector whose columns are exactly the model
// columns, in order.
func (e *Engine) Encode(req IncidentRequest) (FeatureVector, error) {
	md := e.artifacts.Metadata
	if len(md.ModelColumns) == 0 {
		return FeatureVector{}, &SchemaMismatchError{Reason: "model_columns is empty or missing"}
	}
	if !req.CallTime.Valid() {
		return FeatureVector{}, fmt.Errorf("%w: call time %d:%02d is out of range", ErrInvalidRequest, req.CallTime.Hour, req.CallTime.Minute)
	}

	record, err := e.assemble(req)
	if err != nil {
		return FeatureVector{}, err
	}
	if e.policy == PolicyStrict {
		if err := checkKnownCategories(record, md); err != nil {
			return FeatureVector{}, err
		}
	}
	record, err = e.labelEncode(record)
	if err != nil {
		return FeatureVector{}, err
	}
	return Align(e.expand(record), md.ModelColumns), nil
}

// assemble resolves area names and builds the flat record in training order.
func (e *Engine) assemble(req IncidentRequest) ([]field, error) {
	md := e.artifacts.Metadata

	boroughCode, ok := md.BoroughNameToCode[req.BoroughName]
	if !ok {
		return nil, &InvalidLocationError{Field: "borough", Value: req.BoroughName}
	}
	wardCode, ok := md.WardNameToCode[req.WardName]
	if !ok {
		return nil, &InvalidLocationError{Field: "ward", Value: req.WardName}
	}

	stopCode := md.DefaultStopCode()
	if req.StopCode != nil {
		stopCode = *req.StopCode
	}

	t := deriveTemporal(req.CallDate, req.CallTime)
	return []field{
		numeric(FieldYear, float64(t.Year)),
		numeric(FieldMonth, float64(t.Month)),
		numeric(FieldDayOfWeek, float64(t.DayOfWeek)),
		numeric(FieldHour, float64(t.Hour)),
		numeric(FieldIsWeekend, float64(t.IsWeekend)),
		categorical(FieldTimeOfDay, t.TimeOfDay),
		categorical(FieldIncidentGroup, req.IncidentGroup),
		categorical(FieldPropertyCategory, req.PropertyCategory),
		categorical(FieldWardCode, wardCode),
		categorical(FieldBoroughCode, boroughCode),
		categorical(FieldStation, req.StationCode),
		categorical(FieldDeployedFrom, req.DeployedFrom),
		categorical(FieldStopCode, stopCode),
		numeric(FieldPumpOrder, defaultPumpOrder),
		numeric(FieldDelayCodeID, defaultDelayCodeID),
	}, nil
}

// checkKnownCategories rejects categorical values outside their non-empty
// known list.
func checkKnownCategories(record []field, md Metadata) error {
	for _, f := range record {
		if !f.categorical {
			continue
		}
		known := md.KnownValues(f.name)
		if len(known) > 0 && !slices.Contains(known, f.category) {
			return &UnknownCategoryError{Field: f.name, Value: f.category}
		}
	}
	return nil
}

// labelEncode replaces every field that has a fitted encoder by its code.
func (e *Engine) labelEncode(record []field) ([]field, error) {
	out := slices.Clone(record)
	for i, f := range out {
		enc, ok := e.artifacts.Encoders[f.name]
		if !ok {
			continue
		}
		codes, err := enc.Transform([]string{f.text()})
		if err != nil {
			if !errors.Is(err, ErrUnseenLabel) {
				return nil, &PredictionError{Err: fmt.Errorf("label encode %s: %w", f.name, err)}
			}
			if e.policy == PolicyStrict {
				return nil, &UnknownCategoryError{Field: f.name, Value: f.text()}
			}
			out[i] = categorical(f.name, f.text())
			continue
		}
		if len(codes) != 1 {
			return nil, &PredictionError{Err: fmt.Errorf("label encode %s: got %d codes for 1 value", f.name, len(codes))}
		}
		out[i] = numeric(f.name, float64(codes[0]))
	}
	return out, nil
}

// expand flattens the record, one-hot expanding the remaining categoricals.
func (e *Engine) expand(record []field) []Column {
	md := e.artifacts.Metadata
	cols := make([]Column, 0, len(record)+len(md.ModelColumns))
	for _, f := range record {
		if !f.categorical {
			cols = append(cols, Column{Name: f.name, Value: f.value})
			continue
		}
		cols = append(cols, OneHotExpand(f.name, f.category, md.KnownValues(f.name))...)
	}
	return cols
}

// OneHotExpand returns indicator columns named "{field}_{value}": one per
// known value, set to 1 for value and 0 otherwise. A value outside known
// still gets its own column so that alignment decides whether it survives.
func OneHotExpand(field, value string, known []string) []Column {
	cols := make([]Column, 0, len(known)+1)
	found := false
	for _, k := range known {
		v := 0.0
		if k == value {
			v = 1
			found = true
		}
		cols = append(cols, Column{Name: dummyName(field, k), Value: v})
	}
	if !found {
		cols = append(cols, Column{Name: dummyName(field, value), Value: 1})
	}
	return cols
}

func dummyName(field, value string) string {
	return field + "_" + value
}

// Align reindexes record onto columns: absent columns are 0, extra record
// columns are dropped and the output order is the order of columns.
func Align(record []Column, columns []string) FeatureVector {
	byName := make(map[string]float64, len(record))
	for _, c := range record {
		byName[c.Name] = c.Value
	}
	values := make([]float64, len(columns))
	for i, name := range columns {
		values[i] = byName[name]
	}
	return FeatureVector{
		Columns: slices.Clone(columns),
		Values:  values,
	}
}
