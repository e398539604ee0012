package artifact

import (
	"time"

	"github.com/couchcryptid/lfb-response-predictor/internal/domain"
)

// referenceColumns is the schema of the reference bundle: the numeric and
// label-encoded columns first, then the one-hot indicator columns in
// get_dummies order.
var referenceColumns = []string{
	"Year", "Month", "DayOfWeek", "Hour", "IsWeekend",
	"IncGeo_WardCode", "IncGeo_BoroughCode", "IncidentStationGround",
	"PumpOrder", "DelayCodeId",
	"TimeOfDay_Afternoon", "TimeOfDay_Evening", "TimeOfDay_Morning", "TimeOfDay_Night",
	"IncidentGroup_False Alarm", "IncidentGroup_Fire", "IncidentGroup_Special Service",
	"PropertyCategory_Dwelling", "PropertyCategory_Non Residential",
	"PropertyCategory_Outdoor", "PropertyCategory_Road Vehicle",
	"DeployedFromLocation_Home Station", "DeployedFromLocation_Other Station",
	"StopCodeDescription_AFA", "StopCodeDescription_Primary Fire",
	"StopCodeDescription_Secondary Fire", "StopCodeDescription_Special Service",
}

// Column indices used by the reference trees.
const (
	refHour         = 3
	refIsWeekend    = 4
	refFire         = 15
	refDwelling     = 17
	refOtherStation = 22
)

// ReferenceBundle returns a small, hand-built artifact set covering four
// central London boroughs. It has the same shape as a trained bundle and is
// used for local runs and tests.
func ReferenceBundle() Bundle {
	n := len(referenceColumns)

	mean := make([]float64, n)
	scale := make([]float64, n)
	for i := range scale {
		scale[i] = 1
	}
	mean[0], mean[1], mean[2], mean[3] = 2024, 6, 3, 12
	scale[1], scale[2], scale[3] = 3, 2, 6
	// PumpOrder and DelayCodeId are constant in the training data.
	mean[8], mean[9] = 1, 1
	scale[8], scale[9] = 0, 0

	importances := make([]float64, n)
	importances[refOtherStation] = 300
	importances[refFire] = 120.5
	importances[refHour] = 80
	importances[refDwelling] = 40
	importances[refIsWeekend] = 22.25

	return Bundle{
		Metadata: MetadataFile{
			BoroughNameToCode: map[string]string{
				"Camden":      "E09000007",
				"Hackney":     "E09000012",
				"Islington":   "E09000019",
				"Westminster": "E09000033",
			},
			WardNameToCode: map[string]string{
				"Holborn and Covent Garden":  "E05000138",
				"Kentish Town":               "E05000139",
				"Barnsbury":                  "E05000367",
				"Highbury East":              "E05000371",
				"St James's":                 "E05000644",
				"Hoxton East and Shoreditch": "E05009378",
			},
			IncidentGroup:    []string{"False Alarm", "Fire", "Special Service"},
			PropertyCategory: []string{"Dwelling", "Non Residential", "Outdoor", "Road Vehicle"},
			StationGround:    []string{"A21", "A22", "A23", "A24", "F21", "G27"},
			DeployedFrom:     []string{"Home Station", "Other Station"},
			StopCode:         []string{"AFA", "Primary Fire", "Secondary Fire", "Special Service"},
			TimeOfDay:        domain.TimeOfDayCategories(),
			ModelColumns:     append([]string(nil), referenceColumns...),
		},
		Encoders: map[string][]string{
			domain.FieldWardCode:    {"E05000138", "E05000139", "E05000367", "E05000371", "E05000644", "E05009378"},
			domain.FieldBoroughCode: {"E09000007", "E09000012", "E09000019", "E09000033"},
			domain.FieldStation:     {"A21", "A22", "A23", "A24", "F21", "G27"},
		},
		Scaler: ScalerFile{Kind: KindStandard, Mean: mean, Scale: scale},
		Model: ModelFile{
			Kind:        KindTreeEnsemble,
			NumFeatures: n,
			BaseScore:   300,
			Trees: []Tree{
				{Nodes: []Node{
					{Feature: refFire, Threshold: 0.5, Left: 1, Right: 2},
					{Leaf: true, Value: -20},
					{Leaf: true, Value: 25},
				}},
				{Nodes: []Node{
					{Feature: refHour, Threshold: -1, Left: 1, Right: 2, DefaultLeft: true},
					{Leaf: true, Value: 40},
					{Feature: refIsWeekend, Threshold: 0.5, Left: 3, Right: 4},
					{Leaf: true, Value: -10},
					{Leaf: true, Value: 15},
				}},
				{Nodes: []Node{
					{Feature: refOtherStation, Threshold: 0.5, Left: 1, Right: 2},
					{Leaf: true, Value: -30},
					{Leaf: true, Value: 90},
				}},
				{Nodes: []Node{
					{Feature: refDwelling, Threshold: 0.5, Left: 1, Right: 2},
					{Leaf: true, Value: 5},
					{Leaf: true, Value: -12.5},
				}},
			},
			FeatureImportances: importances,
		},
	}
}

// ReferenceRequest is a house fire in Kentish Town on Saturday 15 June 2024
// at 14:00, attended from the home station. The reference bundle predicts
// 297.5 s for it, reported as 298 s.
func ReferenceRequest() domain.IncidentRequest {
	return domain.IncidentRequest{
		CallDate:         time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
		CallTime:         domain.ClockTime{Hour: 14},
		BoroughName:      "Camden",
		WardName:         "Kentish Town",
		StationCode:      "A22",
		IncidentGroup:    "Fire",
		PropertyCategory: "Dwelling",
		DeployedFrom:     "Home Station",
	}
}
