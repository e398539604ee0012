package domain

import (
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testBorough = "Camden"
	testWard    = "Kentish Town"
	testStation = "A22"
)

var testColumns = []string{
	"Year", "Month", "DayOfWeek", "Hour", "IsWeekend",
	"IncGeo_WardCode", "IncGeo_BoroughCode", "IncidentStationGround",
	"PumpOrder", "DelayCodeId",
	"TimeOfDay_Afternoon", "TimeOfDay_Evening", "TimeOfDay_Morning", "TimeOfDay_Night",
	"IncidentGroup_Fire", "IncidentGroup_Special Service",
	"PropertyCategory_Dwelling", "PropertyCategory_Outdoor",
	"DeployedFromLocation_Other Station",
	"StopCodeDescription_AFA", "StopCodeDescription_Primary Fire",
}

// classEncoder mimics a fitted LabelEncoder: the code is the class index.
type classEncoder struct {
	classes []string
	err     error
}

func (c classEncoder) Transform(values []string) ([]int, error) {
	if c.err != nil {
		return nil, c.err
	}
	codes := make([]int, len(values))
	for i, v := range values {
		idx := slices.Index(c.classes, v)
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnseenLabel, v)
		}
		codes[i] = idx
	}
	return codes, nil
}

// identityScaler returns its input, or err.
type identityScaler struct {
	err  error
	rows int // rows to return instead of the input, when > 0
}

func (s identityScaler) Transform(rows [][]float64) ([][]float64, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.rows > 0 {
		return make([][]float64, s.rows), nil
	}
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = slices.Clone(r)
	}
	return out, nil
}

// linearStub predicts bias + sum(weights[col] * x[col]).
type linearStub struct {
	columns []string
	weights map[string]float64
	bias    float64
	err     error
	fixed   []float64 // returned as-is when set
}

func (m linearStub) Predict(rows [][]float64) ([]float64, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.fixed != nil {
		return m.fixed, nil
	}
	out := make([]float64, len(rows))
	for i, row := range rows {
		sum := m.bias
		for j, col := range m.columns {
			sum += m.weights[col] * row[j]
		}
		out[i] = sum
	}
	return out, nil
}

// rankedStub is a linearStub that also exposes importances.
type rankedStub struct {
	linearStub
	importances []float64
}

func (m rankedStub) FeatureImportances() []float64 { return m.importances }

func testMetadata() Metadata {
	return Metadata{
		BoroughNameToCode: map[string]string{
			"Camden":    "E09000007",
			"Islington": "E09000019",
		},
		WardNameToCode: map[string]string{
			"Holborn and Covent Garden": "E05000138",
			"Kentish Town":              "E05000139",
			"Barnsbury":                 "E05000367",
		},
		IncidentGroups:     []string{"False Alarm", "Fire", "Special Service"},
		PropertyCategories: []string{"Dwelling", "Outdoor"},
		StationCodes:       []string{"A21", "A22"},
		DeployedLocations:  []string{"Home Station", "Other Station"},
		StopCodes:          []string{"AFA", "Primary Fire"},
		ModelColumns:       slices.Clone(testColumns),
	}
}

func testEncoders() map[string]LabelEncoder {
	return map[string]LabelEncoder{
		FieldWardCode:    classEncoder{classes: []string{"E05000138", "E05000139", "E05000367"}},
		FieldBoroughCode: classEncoder{classes: []string{"E09000007", "E09000019"}},
		FieldStation:     classEncoder{classes: []string{"A21", "A22"}},
	}
}

func testModel() linearStub {
	return linearStub{
		columns: testColumns,
		weights: map[string]float64{
			"Hour":               5,
			"IsWeekend":          10,
			"IncidentGroup_Fire": 20,
		},
		bias: 100,
	}
}

func testArtifacts() Artifacts {
	return Artifacts{
		Model:    testModel(),
		Scaler:   identityScaler{},
		Encoders: testEncoders(),
		Metadata: testMetadata(),
	}
}

func newTestEngine(t *testing.T, policy EncodingPolicy) *Engine {
	t.Helper()
	engine, err := NewEngine(testArtifacts(), policy)
	require.NoError(t, err)
	return engine
}

func newTestEngineWith(t *testing.T, mutate func(*Artifacts)) *Engine {
	t.Helper()
	a := testArtifacts()
	mutate(&a)
	engine, err := NewEngine(a, PolicyStrict)
	require.NoError(t, err)
	return engine
}

// saturdayFire is the reference scenario: a fire in a Camden dwelling on
// Saturday 15 June 2024 at 14:00, no stop code.
func saturdayFire() IncidentRequest {
	return IncidentRequest{
		CallDate:         time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
		CallTime:         ClockTime{Hour: 14},
		BoroughName:      testBorough,
		WardName:         testWard,
		StationCode:      testStation,
		IncidentGroup:    "Fire",
		PropertyCategory: "Dwelling",
		DeployedFrom:     "Home Station",
	}
}

func strPtr(s string) *string { return &s }

var errBoom = errors.New("boom")
