// Package api provides the client-side library for the HealthPulse
// analytics API: an authenticated HTTP pipeline and the domain-grouped
// service facades built on top of it.
package api

import (
	"math"
	"sort"
)

// RiskType identifies one of the three clinical risk models.
type RiskType string

const (
	RiskDeterioration RiskType = "deterioration"
	RiskReadmission   RiskType = "readmission"
	RiskSepsis        RiskType = "sepsis"
)

// Valid reports whether the risk type is one the platform serves.
func (r RiskType) Valid() bool {
	switch r {
	case RiskDeterioration, RiskReadmission, RiskSepsis:
		return true
	}
	return false
}

// TokenResponse is returned by the token endpoint on successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// User is the identity record served by /api/v1/users/me.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	LastLogin  string `json:"last_login,omitempty"`
}

// UserCreate is the payload for creating a user (admin only).
type UserCreate struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

// RiskScores carries the latest model outputs for one patient.
type RiskScores struct {
	Deterioration float64 `json:"deterioration"`
	Readmission   float64 `json:"readmission"`
	Sepsis        float64 `json:"sepsis"`
	Timestamp     string  `json:"timestamp,omitempty"`
	AlertLevel    string  `json:"alert_level,omitempty"`
}

// Patient is the list-view record.
type Patient struct {
	PatientID          string      `json:"patient_id"`
	MRN                string      `json:"mrn"`
	Name               string      `json:"name"`
	Gender             string      `json:"gender,omitempty"`
	Age                int         `json:"age,omitempty"`
	Department         string      `json:"department,omitempty"`
	Room               string      `json:"room,omitempty"`
	AdmissionDate      string      `json:"admission_date,omitempty"`
	AttendingPhysician string      `json:"attending_physician,omitempty"`
	RiskScores         *RiskScores `json:"risk_scores,omitempty"`
}

// Vitals is the most recent vital-sign row for a patient.
type Vitals struct {
	HeartRate       float64 `json:"heart_rate"`
	SystolicBP      float64 `json:"systolic_bp"`
	DiastolicBP     float64 `json:"diastolic_bp"`
	Temperature     float64 `json:"temperature"`
	RespirationRate float64 `json:"respiration_rate"`
	O2Saturation    float64 `json:"o2_saturation"`
	PainLevel       int     `json:"pain_level,omitempty"`
	Timestamp       string  `json:"timestamp,omitempty"`
}

// Lab is the latest result for one test.
type Lab struct {
	TestName   string  `json:"test_name"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	Timestamp  string  `json:"timestamp"`
	IsAbnormal bool    `json:"is_abnormal"`
}

// Medication is an active medication order.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Route     string `json:"route"`
	StartDate string `json:"start_date"`
}

// PatientDetail is the full aggregate served by /api/v1/patients/{id}.
type PatientDetail struct {
	Patient
	Diagnoses     []string     `json:"diagnoses"`
	Comorbidities []string     `json:"comorbidities"`
	Vitals        *Vitals      `json:"vitals,omitempty"`
	Labs          []Lab        `json:"labs"`
	Medications   []Medication `json:"medications"`
	Alerts        []Alert      `json:"alerts"`
}

// PatientList is the paginated patients response.
type PatientList struct {
	Patients   []Patient `json:"patients"`
	TotalCount int       `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// RiskPrediction is one model score for one patient.
type RiskPrediction struct {
	PatientID string   `json:"patient_id"`
	RiskType  RiskType `json:"risk_type"`
	Score     float64  `json:"score"`
	Timestamp string   `json:"timestamp"`
}

// FeatureImportance is a model-global feature weight.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// FeatureContribution is a per-patient signed contribution to a score.
type FeatureContribution struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value,omitempty"`
	Contribution float64 `json:"contribution"`
}

// RiskExplanation is the per-patient model explanation.
type RiskExplanation struct {
	PatientID        string                `json:"patient_id"`
	RiskType         RiskType              `json:"risk_type"`
	Score            float64               `json:"score"`
	GlobalImportance []FeatureImportance   `json:"global_importance"`
	PatientSpecific  []FeatureContribution `json:"patient_specific"`
	Recommendation   string                `json:"recommendation,omitempty"`
}

// Features returns the patient-specific contributions ordered by
// descending absolute contribution, which is how views render them.
func (e *RiskExplanation) Features() []FeatureContribution {
	out := make([]FeatureContribution, len(e.PatientSpecific))
	copy(out, e.PatientSpecific)
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Contribution) > math.Abs(out[j].Contribution)
	})
	return out
}

// Alert is a server-originated clinical notification.
type Alert struct {
	ID                int         `json:"id"`
	PatientID         string      `json:"patient_id"`
	Timestamp         string      `json:"timestamp"`
	RiskType          RiskType    `json:"risk_type"`
	RiskScore         float64     `json:"risk_score"`
	Priority          string      `json:"priority"`
	Message           string      `json:"message"`
	RecommendedAction string      `json:"recommended_action,omitempty"`
	Status            AlertStatus `json:"status"`
	Notes             string      `json:"notes,omitempty"`
}

// AlertStats summarizes the alert population alongside a list response.
type AlertStats struct {
	ByStatus   map[string]int `json:"by_status"`
	ByPriority map[string]int `json:"by_priority"`
}

// AlertList is the paginated alerts response.
type AlertList struct {
	Alerts     []Alert     `json:"alerts"`
	TotalCount int         `json:"total_count"`
	Stats      *AlertStats `json:"stats,omitempty"`
}

// AuditLogEntry is one admin-visible audit row.
type AuditLogEntry struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	Username   string         `json:"username,omitempty"`
	UserName   string         `json:"user_name,omitempty"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	Details    map[string]any `json:"details,omitempty"`
	IPAddress  string         `json:"ip_address,omitempty"`
	Timestamp  string         `json:"timestamp"`
}

// AlertThresholds maps risk type to named score cutoffs, e.g.
// {"sepsis": {"medium": 0.4, "high": 0.7}}.
type AlertThresholds struct {
	Thresholds map[string]map[string]float64 `json:"thresholds"`
}

// HealthStatus is the gateway health aggregate.
type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Components map[string]string `json:"components"`
}

// DashboardSummary is the landing-page overview.
type DashboardSummary struct {
	TotalPatients    int      `json:"total_patients"`
	HighRiskCount    int      `json:"high_risk_count"`
	ActiveAlertCount int      `json:"active_alert_count"`
	Departments      []string `json:"departments"`
}

// RiskDistribution buckets the patient population for one risk model.
type RiskDistribution struct {
	RiskType RiskType       `json:"risk_type"`
	Buckets  map[string]int `json:"buckets"`
}

// TrendPoint is one sample in a dashboard trend series.
type TrendPoint struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// TrendSeries is a dashboard metric over a period.
type TrendSeries struct {
	Metric string       `json:"metric"`
	Period string       `json:"period"`
	Points []TrendPoint `json:"points"`
}

// DepartmentPerformance is the operational rollup for one department.
type DepartmentPerformance struct {
	Department       string  `json:"department"`
	PatientCount     int     `json:"patient_count"`
	HighRiskCount    int     `json:"high_risk_count"`
	AvgRiskScore     float64 `json:"avg_risk_score"`
	AlertResponseMin float64 `json:"alert_response_min"`
}
