package api

import (
	"context"
	"net/url"
	"strconv"
)

// UserListParams pages the admin user list. The users and audit-log
// endpoints page by offset, unlike the patient and alert lists.
type UserListParams struct {
	Skip  int
	Limit int
}

func (p UserListParams) values() url.Values {
	q := url.Values{}
	if p.Skip > 0 {
		q.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

// AuditLogParams filters the audit trail.
type AuditLogParams struct {
	UserID     string
	EntityType string
	EntityID   string
	StartDate  string
	EndDate    string
	Skip       int
	Limit      int
}

func (p AuditLogParams) values() url.Values {
	q := url.Values{}
	if p.UserID != "" {
		q.Set("user_id", p.UserID)
	}
	if p.EntityType != "" {
		q.Set("entity_type", p.EntityType)
	}
	if p.EntityID != "" {
		q.Set("entity_id", p.EntityID)
	}
	if p.StartDate != "" {
		q.Set("start_date", p.StartDate)
	}
	if p.EndDate != "" {
		q.Set("end_date", p.EndDate)
	}
	if p.Skip > 0 {
		q.Set("skip", strconv.Itoa(p.Skip))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

// AdminService groups the admin-only operations.
type AdminService struct {
	c *Client
}

// ListUsers returns platform users ordered by name.
func (s *AdminService) ListUsers(ctx context.Context, params UserListParams) ([]User, error) {
	env, err := get[[]User](ctx, s.c, "/api/v1/users", params.values())
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CreateUser provisions a new user account.
func (s *AdminService) CreateUser(ctx context.Context, user UserCreate) (*User, error) {
	env, err := post[User](ctx, s.c, "/api/v1/users", user)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ListAuditLogs returns the audit trail, newest first.
func (s *AdminService) ListAuditLogs(ctx context.Context, params AuditLogParams) ([]AuditLogEntry, error) {
	env, err := get[[]AuditLogEntry](ctx, s.c, "/api/v1/audit-logs", params.values())
	if err != nil {
		return nil, err
	}
	return env.Data, nil
}
