package view

import (
	"fmt"
	"strings"
	"time"
)

// RiskLevel buckets a model score for display.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

func (l RiskLevel) String() string {
	switch l {
	case RiskHigh:
		return "high"
	case RiskMedium:
		return "medium"
	}
	return "low"
}

// Priority is the visual class of an alert priority. Unknown wire
// values degrade to neutral rather than breaking the view.
type Priority int

const (
	PriorityNeutral Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	}
	return "neutral"
}

// ParsePriority maps a wire priority onto its visual class.
func ParsePriority(s string) Priority {
	switch strings.ToLower(s) {
	case "high":
		return PriorityHigh
	case "medium":
		return PriorityMedium
	case "low":
		return PriorityLow
	}
	return PriorityNeutral
}

// VitalRange is the normal band for one vital sign.
type VitalRange struct {
	Min float64
	Max float64
}

// ClinicalRanges carries the tunable classification thresholds. Views
// hold one of these (usually DefaultRanges) so deployments can adjust
// cutoffs without a code change.
type ClinicalRanges struct {
	HighRisk   float64
	MediumRisk float64
	Vitals     map[string]VitalRange
}

// DefaultRanges returns the platform defaults.
func DefaultRanges() ClinicalRanges {
	return ClinicalRanges{
		HighRisk:   0.70,
		MediumRisk: 0.40,
		Vitals: map[string]VitalRange{
			"heart_rate":       {Min: 60, Max: 100},
			"systolic_bp":      {Min: 90, Max: 130},
			"diastolic_bp":     {Min: 60, Max: 85},
			"temperature":      {Min: 36.5, Max: 37.5},
			"respiration_rate": {Min: 12, Max: 20},
			"o2_saturation":    {Min: 95, Max: 100},
		},
	}
}

// RiskBucket classifies a score against the configured thresholds.
func (c ClinicalRanges) RiskBucket(score float64) RiskLevel {
	switch {
	case score >= c.HighRisk:
		return RiskHigh
	case score >= c.MediumRisk:
		return RiskMedium
	}
	return RiskLow
}

// IsVitalAbnormal reports whether value falls outside the normal band
// for the vital type. Unknown types are never abnormal.
func (c ClinicalRanges) IsVitalAbnormal(vitalType string, value float64) bool {
	r, ok := c.Vitals[vitalType]
	if !ok {
		return false
	}
	return value < r.Min || value > r.Max
}

var defaultRanges = DefaultRanges()

// RiskBucket classifies a score with the default thresholds.
func RiskBucket(score float64) RiskLevel {
	return defaultRanges.RiskBucket(score)
}

// IsVitalAbnormal classifies a vital with the default ranges.
func IsVitalAbnormal(vitalType string, value float64) bool {
	return defaultRanges.IsVitalAbnormal(vitalType, value)
}

// FormatRiskScore renders a [0,1] score as a percentage, one decimal.
func FormatRiskScore(score float64) string {
	return fmt.Sprintf("%.1f%%", score*100)
}

var vitalDisplayNames = map[string]string{
	"heart_rate":       "Heart Rate",
	"systolic_bp":      "Systolic BP",
	"diastolic_bp":     "Diastolic BP",
	"temperature":      "Temperature",
	"respiration_rate": "Respiration Rate",
	"o2_saturation":    "O2 Saturation",
	"pain_level":       "Pain Level",
}

var vitalUnits = map[string]string{
	"heart_rate":       "bpm",
	"systolic_bp":      "mmHg",
	"diastolic_bp":     "mmHg",
	"temperature":      "°C",
	"respiration_rate": "breaths/min",
	"o2_saturation":    "%",
}

// VitalDisplayName returns the human label for a vital type; unknown
// types pass through unchanged.
func VitalDisplayName(vitalType string) string {
	if name, ok := vitalDisplayNames[vitalType]; ok {
		return name
	}
	return vitalType
}

// VitalUnit returns the unit for a vital type, or "" when unknown.
func VitalUnit(vitalType string) string {
	return vitalUnits[vitalType]
}

// FormatPatientName normalizes "Last, First" records to "First Last";
// anything without a comma passes through.
func FormatPatientName(name string) string {
	if !strings.Contains(name, ",") {
		return name
	}
	parts := strings.SplitN(name, ",", 2)
	last := strings.TrimSpace(parts[0])
	first := strings.TrimSpace(parts[1])
	if first == "" {
		return last
	}
	if last == "" {
		return first
	}
	return first + " " + last
}

// RelativeTime renders t relative to now, falling back to a calendar
// date past one week.
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return agoString(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return agoString(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return agoString(int(d.Hours()/24), "day")
	}
	return t.Format("Jan 2, 2006")
}

func agoString(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
