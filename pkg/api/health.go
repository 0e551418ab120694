package api

import "context"

// HealthService exposes the gateway health probe.
type HealthService struct {
	c *Client
}

// Check returns the health aggregate for the gateway and its upstreams.
func (s *HealthService) Check(ctx context.Context) (*HealthStatus, error) {
	env, err := get[HealthStatus](ctx, s.c, "/api/v1/health", nil)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}
