package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRiskBucketBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  RiskLevel
	}{
		{0.0, RiskLow},
		{0.39999, RiskLow},
		{0.40, RiskMedium},
		{0.69999, RiskMedium},
		{0.70, RiskHigh},
		{1.0, RiskHigh},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, RiskBucket(c.score), "score %v", c.score)
	}
}

func TestRiskBucketHonorsCustomThresholds(t *testing.T) {
	ranges := DefaultRanges()
	ranges.HighRisk = 0.60
	ranges.MediumRisk = 0.30

	assert.Equal(t, RiskHigh, ranges.RiskBucket(0.65))
	assert.Equal(t, RiskMedium, ranges.RiskBucket(0.35))
	assert.Equal(t, RiskLow, ranges.RiskBucket(0.29))
}

func TestIsVitalAbnormalBoundaries(t *testing.T) {
	cases := []struct {
		vital string
		value float64
		want  bool
	}{
		{"heart_rate", 60, false},
		{"heart_rate", 59, true},
		{"heart_rate", 100, false},
		{"heart_rate", 101, true},
		{"o2_saturation", 95, false},
		{"o2_saturation", 94, true},
		{"temperature", 37.5, false},
		{"temperature", 37.6, true},
		{"systolic_bp", 89, true},
		{"systolic_bp", 130, false},
		{"respiration_rate", 12, false},
		{"respiration_rate", 11, true},
		{"diastolic_bp", 86, true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, IsVitalAbnormal(c.vital, c.value), "%s=%v", c.vital, c.value)
	}
}

func TestUnknownVitalIsNeverAbnormal(t *testing.T) {
	assert.False(t, IsVitalAbnormal("glucose", 9999))
}

func TestFormatRiskScore(t *testing.T) {
	assert.Equal(t, "72.5%", FormatRiskScore(0.725))
	assert.Equal(t, "0.0%", FormatRiskScore(0))
	assert.Equal(t, "100.0%", FormatRiskScore(1))
}

func TestVitalDisplayNameAndUnit(t *testing.T) {
	assert.Equal(t, "Heart Rate", VitalDisplayName("heart_rate"))
	assert.Equal(t, "bpm", VitalUnit("heart_rate"))
	assert.Equal(t, "°C", VitalUnit("temperature"))

	// Unknown types degrade gracefully.
	assert.Equal(t, "glucose", VitalDisplayName("glucose"))
	assert.Empty(t, VitalUnit("glucose"))
}

func TestFormatPatientName(t *testing.T) {
	assert.Equal(t, "John Doe", FormatPatientName("Doe, John"))
	assert.Equal(t, "John Doe", FormatPatientName("Doe,John"))
	assert.Equal(t, "John Doe", FormatPatientName("John Doe"))
	assert.Equal(t, "Doe", FormatPatientName("Doe,"))
	assert.Empty(t, FormatPatientName(""))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-1 * time.Minute), "1 minute ago"},
		{now.Add(-5 * time.Minute), "5 minutes ago"},
		{now.Add(-1 * time.Hour), "1 hour ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-25 * time.Hour), "1 day ago"},
		{now.Add(-2 * 24 * time.Hour), "2 days ago"},
		{now.Add(-10 * 24 * time.Hour), "Mar 5, 2026"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, RelativeTime(c.t, now))
	}
}

func TestParsePriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, ParsePriority("high"))
	assert.Equal(t, PriorityMedium, ParsePriority("Medium"))
	assert.Equal(t, PriorityLow, ParsePriority("low"))
	assert.Equal(t, PriorityNeutral, ParsePriority("urgent"))
	assert.Equal(t, PriorityNeutral, ParsePriority(""))
}
