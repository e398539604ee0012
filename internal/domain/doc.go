// Package domain turns London Fire Brigade (LFB) incident parameters into the
// feature vector of a previously trained response-time regressor and reports
// the predicted attendance time.
//
// # Training-time conventions
//
// The model was trained on the LFB incident records, so every name here is the
// name of a column in that dataset:
//
//	Year, Month, DayOfWeek, Hour, IsWeekend, TimeOfDay
//	IncidentGroup, PropertyCategory, StopCodeDescription
//	IncGeo_WardCode, IncGeo_BoroughCode, IncidentStationGround
//	DeployedFromLocation, PumpOrder, DelayCodeId
//
// Wards and boroughs are shown to the operator by name ("Camden",
// "Kentish Town") but the model only knows their ONS codes ("E09000007",
// "E05000139"). The name to code mappings ship with the artifact bundle.
//
// DayOfWeek follows the ISO convention used at training time: 0 is Monday and
// 6 is Sunday. IsWeekend is 1 for 5 and 6.
//
// TimeOfDay buckets the call hour into half-open ranges:
//
//	[0, 6)   Night
//	[6, 12)  Morning
//	[12, 18) Afternoon
//	[18, 24) Evening
//
// PumpOrder and DelayCodeId are part of the training schema but are fixed to 1
// for a first-pump, undelayed attendance.
//
// # Encoding
//
// Fields with a fitted label encoder are replaced by the encoder's integer
// code. Every remaining categorical field is expanded into indicator columns
// named "{field}_{value}" (e.g. "IncidentGroup_Fire"), which must match the
// training-time dummy naming bit for bit. The expanded record is then aligned
// onto the model's column list: missing columns are zero, extra columns are
// dropped, and the order is the model's order. See [Engine.Encode].
//
// # Prediction
//
// The aligned vector is scaled, passed to the regressor, and the raw seconds
// are rounded half to even and floored at zero. See [NewPredictionResult].
package domain
