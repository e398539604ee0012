// Package artifact loads the training-time artifact bundle (model, scaler,
// label encoders and metadata) from JSON files in one directory.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/lfb-response-predictor/internal/domain"
)

// Artifact names used in ArtifactLoadError.
const (
	NameModel    = "model"
	NameScaler   = "scaler"
	NameEncoders = "encoders"
	NameMetadata = "metadata"
)

// Model and scaler kinds.
const (
	KindTreeEnsemble = "tree_ensemble"
	KindLinear       = "linear"
	KindStandard     = "standard"
	KindMinMax       = "minmax"
)

// Files names the bundle files inside the artifact directory.
type Files struct {
	Model    string
	Scaler   string
	Encoders string
	Metadata string
}

// DefaultFiles returns the standard bundle file names.
func DefaultFiles() Files {
	return Files{
		Model:    "model.json",
		Scaler:   "scaler.json",
		Encoders: "encoders.json",
		Metadata: "metadata.json",
	}
}

// widthReporter is implemented by scalers and models that know their input width.
type widthReporter interface {
	NumFeatures() int
}

// Load reads every artifact from dir and checks that they agree with each
// other. The returned bundle is ready for domain.NewEngine.
func Load(dir string, files Files) (domain.Artifacts, error) {
	meta, err := LoadMetadata(filepath.Join(dir, files.Metadata))
	if err != nil {
		return domain.Artifacts{}, err
	}
	encoders, err := LoadEncoders(filepath.Join(dir, files.Encoders))
	if err != nil {
		return domain.Artifacts{}, err
	}
	scaler, err := LoadScaler(filepath.Join(dir, files.Scaler))
	if err != nil {
		return domain.Artifacts{}, err
	}
	model, err := LoadModel(filepath.Join(dir, files.Model))
	if err != nil {
		return domain.Artifacts{}, err
	}

	width := len(meta.ModelColumns)
	if err := checkWidth(NameScaler, scaler, width); err != nil {
		return domain.Artifacts{}, err
	}
	if err := checkWidth(NameModel, model, width); err != nil {
		return domain.Artifacts{}, err
	}

	bundle := domain.Artifacts{
		Model:    model,
		Scaler:   scaler,
		Encoders: encoders,
		Metadata: meta,
	}
	if err := bundle.Validate(); err != nil {
		return domain.Artifacts{}, err
	}
	return bundle, nil
}

func checkWidth(name string, v any, width int) error {
	w, ok := v.(widthReporter)
	if !ok || w.NumFeatures() == width {
		return nil
	}
	return &domain.SchemaMismatchError{
		Reason: fmt.Sprintf("%s expects %d features, model_columns has %d", name, w.NumFeatures(), width),
	}
}

// MetadataFile is the JSON layout of metadata.json.
type MetadataFile struct {
	WardNameToCode    map[string]string `json:"ward_name_to_code"`
	BoroughNameToCode map[string]string `json:"borough_name_to_code"`
	IncidentGroup     []string          `json:"IncidentGroup"`
	PropertyCategory  []string          `json:"PropertyCategory"`
	StationGround     []string          `json:"IncidentStationGround"`
	DeployedFrom      []string          `json:"DeployedFromLocation"`
	StopCode          []string          `json:"StopCodeDescription"`
	TimeOfDay         []string          `json:"TimeOfDay,omitempty"`
	ModelColumns      []string          `json:"model_columns"`
}

// LoadMetadata reads metadata.json. A file without model_columns is a schema
// mismatch rather than a load error: the file parsed, but cannot drive the
// encoder.
func LoadMetadata(path string) (domain.Metadata, error) {
	var f MetadataFile
	if err := readJSON(NameMetadata, path, &f); err != nil {
		return domain.Metadata{}, err
	}
	if len(f.ModelColumns) == 0 {
		return domain.Metadata{}, &domain.SchemaMismatchError{Reason: "metadata has no model_columns"}
	}
	return domain.Metadata{
		WardNameToCode:     f.WardNameToCode,
		BoroughNameToCode:  f.BoroughNameToCode,
		IncidentGroups:     f.IncidentGroup,
		PropertyCategories: f.PropertyCategory,
		StationCodes:       f.StationGround,
		DeployedLocations:  f.DeployedFrom,
		StopCodes:          f.StopCode,
		TimeOfDayLabels:    f.TimeOfDay,
		ModelColumns:       f.ModelColumns,
	}, nil
}

// LoadEncoders reads encoders.json: a map of field name to ordered classes.
func LoadEncoders(path string) (map[string]domain.LabelEncoder, error) {
	var f map[string][]string
	if err := readJSON(NameEncoders, path, &f); err != nil {
		return nil, err
	}
	encoders := make(map[string]domain.LabelEncoder, len(f))
	for field, classes := range f {
		enc, err := NewClassEncoder(classes)
		if err != nil {
			return nil, loadErr(NameEncoders, path, fmt.Errorf("field %s: %w", field, err))
		}
		encoders[field] = enc
	}
	return encoders, nil
}

// ScalerFile is the JSON layout of scaler.json.
type ScalerFile struct {
	Kind  string    `json:"kind"`
	Mean  []float64 `json:"mean,omitempty"`
	Min   []float64 `json:"min,omitempty"`
	Scale []float64 `json:"scale"`
}

// LoadScaler reads scaler.json.
func LoadScaler(path string) (domain.Scaler, error) {
	var f ScalerFile
	if err := readJSON(NameScaler, path, &f); err != nil {
		return nil, err
	}
	var (
		s   domain.Scaler
		err error
	)
	switch f.Kind {
	case KindStandard:
		s, err = NewStandardScaler(f.Mean, f.Scale)
	case KindMinMax:
		s, err = NewMinMaxScaler(f.Min, f.Scale)
	default:
		err = fmt.Errorf("unsupported scaler kind %q", f.Kind)
	}
	if err != nil {
		return nil, loadErr(NameScaler, path, err)
	}
	return s, nil
}

// ModelFile is the JSON layout of model.json.
type ModelFile struct {
	Kind               string    `json:"kind"`
	NumFeatures        int       `json:"n_features,omitempty"`
	BaseScore          float64   `json:"base_score,omitempty"`
	Trees              []Tree    `json:"trees,omitempty"`
	FeatureImportances []float64 `json:"feature_importances,omitempty"`
	Coef               []float64 `json:"coef,omitempty"`
	Intercept          float64   `json:"intercept,omitempty"`
}

// LoadModel reads model.json.
func LoadModel(path string) (domain.Regressor, error) {
	var f ModelFile
	if err := readJSON(NameModel, path, &f); err != nil {
		return nil, err
	}
	var (
		m   domain.Regressor
		err error
	)
	switch f.Kind {
	case KindTreeEnsemble:
		m, err = NewTreeEnsemble(f.NumFeatures, f.BaseScore, f.Trees, f.FeatureImportances)
	case KindLinear:
		m, err = NewLinearModel(f.Coef, f.Intercept)
	default:
		err = fmt.Errorf("unsupported model kind %q", f.Kind)
	}
	if err != nil {
		return nil, loadErr(NameModel, path, err)
	}
	return m, nil
}

func readJSON(name, path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return loadErr(name, path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return loadErr(name, path, fmt.Errorf("decode: %w", err))
	}
	return nil
}

func loadErr(name, path string, err error) error {
	return &domain.ArtifactLoadError{Artifact: name, Path: path, Err: err}
}
