package domain

import "time"

// Time-of-day categories, in bin order.
const (
	Night     = "Night"
	Morning   = "Morning"
	Afternoon = "Afternoon"
	Evening   = "Evening"
)

// timeOfDayBins are the half-open [low, high) hour ranges of each category.
var timeOfDayBins = []struct {
	low, high int
	label     string
}{
	{0, 6, Night},
	{6, 12, Morning},
	{12, 18, Afternoon},
	{18, 24, Evening},
}

// TimeOfDayCategories returns the category labels in bin order.
func TimeOfDayCategories() []string {
	labels := make([]string, len(timeOfDayBins))
	for i, b := range timeOfDayBins {
		labels[i] = b.label
	}
	return labels
}

// TimeOfDay buckets hour into Night, Morning, Afternoon or Evening. Hours
// outside [0, 24) return "".
func TimeOfDay(hour int) string {
	for _, b := range timeOfDayBins {
		if hour >= b.low && hour < b.high {
			return b.label
		}
	}
	return ""
}

// ISOWeekday maps a time.Weekday to 0=Monday .. 6=Sunday.
func ISOWeekday(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// IsWeekend returns 1 for Saturday (5) and Sunday (6), else 0.
func IsWeekend(dayOfWeek int) int {
	if dayOfWeek == 5 || dayOfWeek == 6 {
		return 1
	}
	return 0
}

// temporalFeatures are the calendar fields derived from the call date and time.
type temporalFeatures struct {
	Year      int
	Month     int
	DayOfWeek int
	Hour      int
	IsWeekend int
	TimeOfDay string
}

func deriveTemporal(date time.Time, at ClockTime) temporalFeatures {
	dow := ISOWeekday(date.Weekday())
	return temporalFeatures{
		Year:      date.Year(),
		Month:     int(date.Month()),
		DayOfWeek: dow,
		Hour:      at.Hour,
		IsWeekend: IsWeekend(dow),
		TimeOfDay: TimeOfDay(at.Hour),
	}
}
