package mockapi_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yassnemo/health-pulse-sub000/internal/mockapi"
	"github.com/yassnemo/health-pulse-sub000/pkg/api"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memStore struct {
	mu    sync.Mutex
	token string
	has   bool
}

func (s *memStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.has
}

func (s *memStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.has = token, true
	return nil
}

func (s *memStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.has = "", false
	return nil
}

func newStack(t *testing.T) (*api.Client, *memStore) {
	t.Helper()
	server := mockapi.New(mockapi.Options{Secret: []byte("test-secret")})
	srv := httptest.NewServer(server.Routes())
	t.Cleanup(srv.Close)
	store := &memStore{}
	return api.New(api.Options{BaseURL: srv.URL, Tokens: store}), store
}

func login(t *testing.T, client *api.Client, store *memStore, username, password string) {
	t.Helper()
	tok, err := client.Auth.Login(context.Background(), api.Credentials{Username: username, Password: password})
	require.NoError(t, err)
	require.NoError(t, store.Save(tok.AccessToken))
}

func TestLoginAndProfile(t *testing.T) {
	client, store := newStack(t)
	login(t, client, store, "jchen", "clinician123")

	user, err := client.Auth.GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jchen", user.Username)
	assert.Equal(t, "clinician", user.Role)
	assert.Equal(t, "ICU", user.Department)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	client, _ := newStack(t)
	_, err := client.Auth.Login(context.Background(), api.Credentials{Username: "jchen", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, "Incorrect username or password", api.ErrorMessage(err))
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	client, _ := newStack(t)
	_, err := client.Patients.List(context.Background(), api.PatientListParams{})
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
}

func TestExpiredTokenRejectedAndCleared(t *testing.T) {
	server := mockapi.New(mockapi.Options{Secret: []byte("test-secret"), TokenTTL: time.Millisecond})
	srv := httptest.NewServer(server.Routes())
	t.Cleanup(srv.Close)
	store := &memStore{}
	client := api.New(api.Options{BaseURL: srv.URL, Tokens: store})

	login(t, client, store, "jchen", "clinician123")

	// exp has one-second granularity; wait until the token is firmly in
	// the past.
	time.Sleep(1100 * time.Millisecond)

	_, err := client.Patients.List(context.Background(), api.PatientListParams{})
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))

	// The 401 policy wiped the stored token.
	_, has := store.Token()
	assert.False(t, has)
}

func TestHealthNeedsNoToken(t *testing.T) {
	client, _ := newStack(t)
	status, err := client.Health.Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "ok", status.Components["database"])
	assert.Equal(t, "ok", status.Components["ml_model_server"])
}

func TestPatientListPagingAndFilters(t *testing.T) {
	client, store := newStack(t)
	login(t, client, store, "jchen", "clinician123")
	ctx := context.Background()

	page1, err := client.Patients.List(ctx, api.PatientListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page1.Patients, 10)
	assert.Equal(t, 40, page1.TotalCount)
	assert.Equal(t, 4, page1.TotalPages)

	page2, err := client.Patients.List(ctx, api.PatientListParams{Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.NotEqual(t, page1.Patients[0].PatientID, page2.Patients[0].PatientID)

	icu, err := client.Patients.List(ctx, api.PatientListParams{Department: "ICU", PageSize: 100})
	require.NoError(t, err)
	for _, p := range icu.Patients {
		assert.Equal(t, "ICU", p.Department)
	}

	// Searching by a known id narrows to that patient.
	byID, err := client.Patients.List(ctx, api.PatientListParams{Search: "P-1001"})
	require.NoError(t, err)
	require.Len(t, byID.Patients, 1)
	assert.Equal(t, "P-1001", byID.Patients[0].PatientID)
}

func TestPatientDetailAggregate(t *testing.T) {
	client, store := newStack(t)
	login(t, client, store, "jchen", "clinician123")

	detail, err := client.Patients.Get(context.Background(), "P-1001")
	require.NoError(t, err)
	assert.Equal(t, "P-1001", detail.PatientID)
	assert.NotEmpty(t, detail.Diagnoses)
	assert.NotNil(t, detail.Vitals)
	assert.NotEmpty(t, detail.Labs)
	assert.NotEmpty(t, detail.Medications)
	assert.NotNil(t, detail.RiskScores)
}

func TestUnknownPatientIs404WithDetail(t *testing.T) {
	client, store := newStack(t)
	login(t, client, store, "jchen", "clinician123")

	_, err := client.Patients.Get(context.Background(), "P-9999")
	require.Error(t, err)
	assert.True(t, api.IsNotFound(err))
	assert.Equal(t, "Patient not found", api.ErrorMessage(err))
}

func TestHighRiskOrderedMostSevereFirst(t *testing.T) {
	client, store := newStack(t)
	login(t, client, store, "jchen", "clinician123")

	patients, err := client.Patients.ListHighRisk(context.Background(), "")
	require.NoError(t, err)
	require.NotEmpty(t, patients)

	worst := func(p api.Patient) float64 {
		m := p.RiskScores.Deterioration
		if p.RiskScores.Readmission > m {
			m = p.RiskScores.Readmission
		}
		if p.RiskScores.Sepsis > m {
			m = p.RiskScores.Sepsis
		}
		return m
	}
	for i := range patients {
		assert.GreaterOrEqual(t, worst(patients[i]), 0.70)
		if i > 0 {
			assert.GreaterOrEqual(t, worst(patients[i-1]), worst(patients[i]))
		}
	}
}

func TestPredictAndExplain(t *testing.T) {
	client, store := newStack(t)
	login(t, client, store, "jchen", "clinician123")
	ctx := context.Background()

	pred, err := client.Patients.PredictRisk(ctx, api.RiskSepsis, "P-1001")
	require.NoError(t, err)
	assert.Equal(t, api.RiskSepsis, pred.RiskType)
	assert.GreaterOrEqual(t, pred.Score, 0.0)
	assert.LessOrEqual(t, pred.Score, 1.0)

	exp, err := client.Patients.ExplainRisk(ctx, api.RiskSepsis, "P-1001")
	require.NoError(t, err)
	assert.NotEmpty(t, exp.GlobalImportance)
	assert.NotEmpty(t, exp.PatientSpecific)
	assert.NotEmpty(t, exp.Recommendation)
}

func TestInvalidRiskTypeNeverReachesServer(t *testing.T) {
	client, store := newStack(t)
	login(t, client, store, "jchen", "clinician123")

	_, err := client.Patients.PredictRisk(context.Background(), "mortality", "P-1001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid risk type")
}

func TestAlertWorkflow(t *testing.T) {
	client, store := newStack(t)
	login(t, client, store, "jchen", "clinician123")
	ctx := context.Background()

	list, err := client.Alerts.List(ctx, api.AlertListParams{Status: api.AlertActive, PageSize: 100})
	require.NoError(t, err)
	require.NotEmpty(t, list.Alerts)
	require.NotNil(t, list.Stats)

	// Priority ordering: once a lower priority appears, no higher one may
	// follow.
	rank := map[string]int{"high": 0, "medium": 1, "low": 2}
	for i := 1; i < len(list.Alerts); i++ {
		assert.LessOrEqual(t, rank[list.Alerts[i-1].Priority], rank[list.Alerts[i].Priority])
	}

	target := list.Alerts[0]
	acked, err := client.Alerts.Update(ctx, target.ID, target.Status, api.AlertUpdate{
		Status: api.AlertAcknowledged,
		Notes:  "Reviewed at bedside",
	})
	require.NoError(t, err)
	assert.Equal(t, api.AlertAcknowledged, acked.Status)
	assert.Equal(t, "Reviewed at bedside", acked.Notes)

	dismissed, err := client.Alerts.Update(ctx, target.ID, acked.Status, api.AlertUpdate{Status: api.AlertDismissed})
	require.NoError(t, err)
	assert.Equal(t, api.AlertDismissed, dismissed.Status)

	// Dismissed is terminal; the server enforces it too.
	_, err = client.Alerts.Update(ctx, target.ID, api.AlertActive, api.AlertUpdate{Status: api.AlertAcknowledged})
	require.Error(t, err)
	assert.Contains(t, api.ErrorMessage(err), "not allowed")
}

func TestAdminEndpointsRequireAdminRole(t *testing.T) {
	client, store := newStack(t)
	login(t, client, store, "rpatel", "nurse123")
	ctx := context.Background()

	_, err := client.Admin.ListUsers(ctx, api.UserListParams{})
	require.Error(t, err)
	assert.Equal(t, "Not enough permissions", api.ErrorMessage(err))

	_, err = client.Admin.ListAuditLogs(ctx, api.AuditLogParams{})
	require.Error(t, err)

	_, err = client.Settings.UpdateAlertThresholds(ctx, api.AlertThresholds{
		Thresholds: map[string]map[string]float64{"sepsis": {"high": 0.6}},
	})
	require.Error(t, err)
}

func TestUserManagement(t *testing.T) {
	client, store := newStack(t)
	login(t, client, store, "admin", "admin123")
	ctx := context.Background()

	users, err := client.Admin.ListUsers(ctx, api.UserListParams{})
	require.NoError(t, err)
	assert.Len(t, users, 3)

	created, err := client.Admin.CreateUser(ctx, api.UserCreate{
		Username: "mlee",
		Password: "welcome1",
		Name:     "Morgan Lee",
		Email:    "mlee@healthpulse.dev",
		Role:     "clinician",
	})
	require.NoError(t, err)
	assert.Equal(t, "mlee", created.Username)
	assert.NotEmpty(t, created.ID)

	// Duplicate usernames are rejected.
	_, err = client.Admin.CreateUser(ctx, api.UserCreate{Username: "mlee", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, "Username already registered", api.ErrorMessage(err))

	// The new account can log in.
	_, err = client.Auth.Login(ctx, api.Credentials{Username: "mlee", Password: "welcome1"})
	require.NoError(t, err)
}

func TestAuditTrailRecordsActivity(t *testing.T) {
	client, store := newStack(t)
	login(t, client, store, "admin", "admin123")
	ctx := context.Background()

	_, err := client.Patients.Get(ctx, "P-1002")
	require.NoError(t, err)

	logs, err := client.Admin.ListAuditLogs(ctx, api.AuditLogParams{})
	require.NoError(t, err)

	actions := map[string]bool{}
	for _, e := range logs {
		actions[e.Action] = true
	}
	assert.True(t, actions["login"])
	assert.True(t, actions["view_patient"])
}

func TestThresholdPatchMergesPartialUpdate(t *testing.T) {
	client, store := newStack(t)
	login(t, client, store, "admin", "admin123")
	ctx := context.Background()

	before, err := client.Settings.GetAlertThresholds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.70, before.Thresholds["sepsis"]["high"])

	after, err := client.Settings.UpdateAlertThresholds(ctx, api.AlertThresholds{
		Thresholds: map[string]map[string]float64{"sepsis": {"high": 0.60}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.60, after.Thresholds["sepsis"]["high"])
	// Untouched cutoffs survive the patch.
	assert.Equal(t, 0.40, after.Thresholds["sepsis"]["medium"])
	assert.Equal(t, 0.70, after.Thresholds["deterioration"]["high"])
}

func TestDashboardEndpoints(t *testing.T) {
	client, store := newStack(t)
	login(t, client, store, "jchen", "clinician123")
	ctx := context.Background()

	summary, err := client.Dashboard.Summary(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 40, summary.TotalPatients)
	assert.NotEmpty(t, summary.Departments)

	dist, err := client.Dashboard.RiskDistribution(ctx, api.RiskDeterioration, "")
	require.NoError(t, err)
	total := dist.Buckets["low"] + dist.Buckets["medium"] + dist.Buckets["high"]
	assert.Equal(t, 40, total)

	recent, err := client.Dashboard.RecentAlerts(ctx, 5)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(recent), 5)

	trends, err := client.Dashboard.Trends(ctx, "high_risk_count", "7d")
	require.NoError(t, err)
	assert.Len(t, trends.Points, 7)

	perf, err := client.Dashboard.Performance(ctx, "")
	require.NoError(t, err)
	assert.Len(t, perf, 5)
}
