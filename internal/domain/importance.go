package domain

import "sort"

// TopImportances is how many features the importance report keeps.
const TopImportances = 20

// FeatureImportance pairs a model column with the model's reliance on it.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ImportanceReport is the ranked, positive feature importances of the model.
// ColumnCount and ImportanceCount differ when the model and the metadata
// disagree; the report is then diagnostic only.
type ImportanceReport struct {
	Features        []FeatureImportance `json:"features"`
	ColumnCount     int                 `json:"column_count"`
	ImportanceCount int                 `json:"importance_count"`
}

// Consistent reports whether the model had one importance per column.
func (r ImportanceReport) Consistent() bool {
	return r.ColumnCount == r.ImportanceCount
}

// FeatureImportance ranks the model's importances against the model columns.
// It returns ErrImportanceUnavailable when the model exposes none.
func (e *Engine) FeatureImportance() (ImportanceReport, error) {
	reporter, ok := e.artifacts.Model.(ImportanceReporter)
	if !ok {
		return ImportanceReport{}, ErrImportanceUnavailable
	}
	importances := reporter.FeatureImportances()
	if len(importances) == 0 {
		return ImportanceReport{}, ErrImportanceUnavailable
	}
	return RankImportances(e.artifacts.Metadata.ModelColumns, importances, TopImportances), nil
}

// RankImportances pairs columns with importances by position, keeps strictly
// positive values, sorts them descending (ties keep column order) and
// returns at most limit entries. Pairs beyond the shorter input are ignored.
func RankImportances(columns []string, importances []float64, limit int) ImportanceReport {
	n := min(len(columns), len(importances))
	features := make([]FeatureImportance, 0, n)
	for i := 0; i < n; i++ {
		if importances[i] > 0 {
			features = append(features, FeatureImportance{Feature: columns[i], Importance: importances[i]})
		}
	}
	sort.SliceStable(features, func(i, j int) bool {
		return features[i].Importance > features[j].Importance
	})
	if limit >= 0 && len(features) > limit {
		features = features[:limit]
	}
	return ImportanceReport{
		Features:        features,
		ColumnCount:     len(columns),
		ImportanceCount: len(importances),
	}
}
