package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// PatientListParams filters and pages the patient list.
type PatientListParams struct {
	Page          int
	PageSize      int
	Search        string
	Department    string
	RiskLevel     string
	AdmissionDate string
}

func (p PatientListParams) values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Department != "" {
		q.Set("department", p.Department)
	}
	if p.RiskLevel != "" {
		q.Set("risk_level", p.RiskLevel)
	}
	if p.AdmissionDate != "" {
		q.Set("admission_date", p.AdmissionDate)
	}
	return q
}

// PatientsService groups the patient and risk-model operations.
type PatientsService struct {
	c *Client
}

// List returns a page of patients matching params.
func (s *PatientsService) List(ctx context.Context, params PatientListParams) (*PatientList, error) {
	env, err := get[PatientList](ctx, s.c, "/api/v1/patients", params.values())
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ListHighRisk returns patients above the high-risk threshold, most
// severe first, optionally filtered by department.
func (s *PatientsService) ListHighRisk(ctx context.Context, department string) ([]Patient, error) {
	q := url.Values{}
	if department != "" {
		q.Set("department", department)
	}
	env, err := get[[]Patient](ctx, s.c, "/api/v1/high-risk", q)
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// Get returns the full detail aggregate for one patient.
func (s *PatientsService) Get(ctx context.Context, patientID string) (*PatientDetail, error) {
	env, err := get[PatientDetail](ctx, s.c, "/api/v1/patients/"+url.PathEscape(patientID), nil)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// PredictRisk fetches a fresh model score for one patient.
func (s *PatientsService) PredictRisk(ctx context.Context, riskType RiskType, patientID string) (*RiskPrediction, error) {
	if !riskType.Valid() {
		return nil, fmt.Errorf("invalid risk type: %s", riskType)
	}
	path := fmt.Sprintf("/api/v1/predict/%s/%s", riskType, url.PathEscape(patientID))
	env, err := get[RiskPrediction](ctx, s.c, path, nil)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ExplainRisk fetches the per-feature explanation for one score.
func (s *PatientsService) ExplainRisk(ctx context.Context, riskType RiskType, patientID string) (*RiskExplanation, error) {
	if !riskType.Valid() {
		return nil, fmt.Errorf("invalid risk type: %s", riskType)
	}
	path := fmt.Sprintf("/api/v1/explain/%s/%s", riskType, url.PathEscape(patientID))
	env, err := get[RiskExplanation](ctx, s.c, path, nil)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}
