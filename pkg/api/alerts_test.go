package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to AlertStatus
		ok       bool
	}{
		{AlertActive, AlertAcknowledged, true},
		{AlertActive, AlertDismissed, true},
		{AlertAcknowledged, AlertDismissed, true},
		{AlertAcknowledged, AlertActive, false},
		{AlertDismissed, AlertActive, false},
		{AlertDismissed, AlertAcknowledged, false},
		{AlertActive, AlertActive, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, c.from.CanTransition(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestParseAlertStatus(t *testing.T) {
	for _, valid := range []string{"active", "acknowledged", "dismissed"} {
		got, err := ParseAlertStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, AlertStatus(valid), got)
	}
	_, err := ParseAlertStatus("resolved")
	assert.Error(t, err)
}

func TestUpdateRejectsIllegalTransitionLocally(t *testing.T) {
	// The base URL is unreachable on purpose: an illegal transition must
	// be rejected before any request goes out.
	client := New(Options{BaseURL: "http://127.0.0.1:1"})

	_, err := client.Alerts.Update(context.Background(), 7, AlertDismissed, AlertUpdate{Status: AlertActive})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")
}

func TestUpdateRejectsUnknownStatusLocally(t *testing.T) {
	client := New(Options{BaseURL: "http://127.0.0.1:1"})

	_, err := client.Alerts.Update(context.Background(), 7, AlertActive, AlertUpdate{Status: "resolved"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown alert status")
}
