package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// AlertStatus is the lifecycle state of an alert. The only legal
// transitions are active→acknowledged, active→dismissed and
// acknowledged→dismissed; dismissed is terminal.
type AlertStatus string

const (
	AlertActive       AlertStatus = "active"
	AlertAcknowledged AlertStatus = "acknowledged"
	AlertDismissed    AlertStatus = "dismissed"
)

// ParseAlertStatus validates a wire string.
func ParseAlertStatus(s string) (AlertStatus, error) {
	switch AlertStatus(s) {
	case AlertActive, AlertAcknowledged, AlertDismissed:
		return AlertStatus(s), nil
	}
	return "", fmt.Errorf("unknown alert status: %q", s)
}

// CanTransition reports whether moving from s to next is legal.
func (s AlertStatus) CanTransition(next AlertStatus) bool {
	switch s {
	case AlertActive:
		return next == AlertAcknowledged || next == AlertDismissed
	case AlertAcknowledged:
		return next == AlertDismissed
	}
	return false
}

// AlertListParams filters and pages the alert list.
type AlertListParams struct {
	Page       int
	PageSize   int
	PatientID  string
	Status     AlertStatus
	Priority   string
	Type       string
	Department string
}

func (p AlertListParams) values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	if p.PatientID != "" {
		q.Set("patient_id", p.PatientID)
	}
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	if p.Priority != "" {
		q.Set("priority", p.Priority)
	}
	if p.Type != "" {
		q.Set("type", p.Type)
	}
	if p.Department != "" {
		q.Set("department", p.Department)
	}
	return q
}

// AlertUpdate is the payload for PUT /api/v1/alerts/{id}.
type AlertUpdate struct {
	Status AlertStatus `json:"status"`
	Notes  string      `json:"notes,omitempty"`
}

// AlertsService groups the alert operations.
type AlertsService struct {
	c *Client
}

// List returns alerts ordered by priority then recency.
func (s *AlertsService) List(ctx context.Context, params AlertListParams) (*AlertList, error) {
	env, err := get[AlertList](ctx, s.c, "/api/v1/alerts", params.values())
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Update moves an alert through its lifecycle. Illegal transitions are
// rejected locally before any request is sent; current is the status the
// caller last observed for the alert.
func (s *AlertsService) Update(ctx context.Context, alertID int, current AlertStatus, update AlertUpdate) (*Alert, error) {
	if _, err := ParseAlertStatus(string(update.Status)); err != nil {
		return nil, err
	}
	if !current.CanTransition(update.Status) {
		return nil, fmt.Errorf("alert transition %s -> %s is not allowed", current, update.Status)
	}
	path := "/api/v1/alerts/" + strconv.Itoa(alertID)
	env, err := put[Alert](ctx, s.c, path, update)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}
