package api

import "context"

// SettingsService groups the system-settings operations.
type SettingsService struct {
	c *Client
}

// GetAlertThresholds returns the score cutoffs per risk type.
func (s *SettingsService) GetAlertThresholds(ctx context.Context) (*AlertThresholds, error) {
	env, err := get[AlertThresholds](ctx, s.c, "/api/v1/settings/alert-thresholds", nil)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// UpdateAlertThresholds applies a partial threshold patch (admin only).
func (s *SettingsService) UpdateAlertThresholds(ctx context.Context, update AlertThresholds) (*AlertThresholds, error) {
	env, err := patch[AlertThresholds](ctx, s.c, "/api/v1/settings/alert-thresholds", update)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}
