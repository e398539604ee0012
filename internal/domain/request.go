package domain

import (
	"fmt"
	"strings"
	"time"
)

// Default call time used by the form when the operator leaves it untouched.
const (
	defaultCallHour   = 12
	defaultCallMinute = 0
)

// IncidentRequest is one operator query. It lives for a single prediction.
type IncidentRequest struct {
	CallDate time.Time // only the calendar date is used
	CallTime ClockTime

	BoroughName string
	WardName    string

	StationCode      string
	IncidentGroup    string
	PropertyCategory string
	DeployedFrom     string

	// StopCode is optional; nil selects the first known stop code.
	StopCode *string
}

// ClockTime is a time of day. Only the hour reaches the model.
type ClockTime struct {
	Hour   int
	Minute int
}

// Valid reports whether c is a time of day between 00:00 and 23:59.
func (c ClockTime) Valid() bool {
	return c.Hour >= 0 && c.Hour <= 23 && c.Minute >= 0 && c.Minute <= 59
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// IncidentPayload is the JSON shape of a request on the wire (HTTP body or
// Kafka message value).
type IncidentPayload struct {
	RequestID        string  `json:"request_id,omitempty"`
	CallDate         string  `json:"call_date,omitempty"` // YYYY-MM-DD
	CallTime         string  `json:"call_time,omitempty"` // HH:MM or HH:MM:SS
	Borough          string  `json:"borough"`
	Ward             string  `json:"ward"`
	Station          string  `json:"station"`
	IncidentGroup    string  `json:"incident_group"`
	PropertyCategory string  `json:"property_category"`
	DeployedFrom     string  `json:"deployed_from"`
	StopCode         *string `json:"stop_code,omitempty"`
}

// ParsePayload validates the wire fields and converts them into an
// IncidentRequest. A missing date defaults to today and a missing time to
// 12:00, as on the operator form. Area names are resolved later by the
// encoder so that an unknown name surfaces as an InvalidLocationError.
func ParsePayload(p IncidentPayload) (IncidentRequest, error) {
	callDate, err := parseCallDate(p.CallDate)
	if err != nil {
		return IncidentRequest{}, err
	}
	callTime, err := parseCallTime(p.CallTime)
	if err != nil {
		return IncidentRequest{}, err
	}

	required := []struct{ name, value string }{
		{"borough", p.Borough},
		{"ward", p.Ward},
		{"station", p.Station},
		{"incident_group", p.IncidentGroup},
		{"property_category", p.PropertyCategory},
		{"deployed_from", p.DeployedFrom},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return IncidentRequest{}, fmt.Errorf("%w: %s is required", ErrInvalidRequest, f.name)
		}
	}

	var stopCode *string
	if p.StopCode != nil && strings.TrimSpace(*p.StopCode) != "" {
		s := strings.TrimSpace(*p.StopCode)
		stopCode = &s
	}

	return IncidentRequest{
		CallDate:         callDate,
		CallTime:         callTime,
		BoroughName:      strings.TrimSpace(p.Borough),
		WardName:         strings.TrimSpace(p.Ward),
		StationCode:      strings.TrimSpace(p.Station),
		IncidentGroup:    strings.TrimSpace(p.IncidentGroup),
		PropertyCategory: strings.TrimSpace(p.PropertyCategory),
		DeployedFrom:     strings.TrimSpace(p.DeployedFrom),
		StopCode:         stopCode,
	}, nil
}

func parseCallDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		now := clock.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: call_date %q is not YYYY-MM-DD", ErrInvalidRequest, s)
	}
	return d, nil
}

func parseCallTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ClockTime{Hour: defaultCallHour, Minute: defaultCallMinute}, nil
	}
	for _, layout := range []string{"15:04", time.TimeOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return ClockTime{}, fmt.Errorf("%w: call_time %q is not HH:MM", ErrInvalidRequest, s)
}

// PredictionResult is the post-processed model output.
type PredictionResult struct {
	TotalSeconds int `json:"total_seconds"`
	Minutes      int `json:"minutes"`
	Seconds      int `json:"seconds"`
}

// NewPredictionResult floors raw at zero, rounds it half to even (the
// rounding the training notebooks used) and splits it into minutes and
// seconds.
func NewPredictionResult(raw float64) PredictionResult {
	total := ClampSeconds(raw)
	return PredictionResult{
		TotalSeconds: total,
		Minutes:      total / 60,
		Seconds:      total % 60,
	}
}

// String renders the result the way the operator form displays it.
func (r PredictionResult) String() string {
	return fmt.Sprintf("%d min %d s", r.Minutes, r.Seconds)
}
