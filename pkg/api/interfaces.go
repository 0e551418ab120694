package api

import "context"

// --- Functional interfaces (interface segregation) ---
//
// Consumers depend on the narrow slice of the API surface they use, so
// tests can substitute small fakes instead of a whole client.

// PatientReader covers the patient list/detail/risk operations.
type PatientReader interface {
	List(ctx context.Context, params PatientListParams) (*PatientList, error)
	ListHighRisk(ctx context.Context, department string) ([]Patient, error)
	Get(ctx context.Context, patientID string) (*PatientDetail, error)
	PredictRisk(ctx context.Context, riskType RiskType, patientID string) (*RiskPrediction, error)
	ExplainRisk(ctx context.Context, riskType RiskType, patientID string) (*RiskExplanation, error)
}

// AlertManager covers listing and transitioning alerts.
type AlertManager interface {
	List(ctx context.Context, params AlertListParams) (*AlertList, error)
	Update(ctx context.Context, alertID int, current AlertStatus, update AlertUpdate) (*Alert, error)
}

// Authenticator covers the credential exchange and profile surface the
// session needs.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (*TokenResponse, error)
	Logout(ctx context.Context) error
	GetProfile(ctx context.Context) (*User, error)
}

// ThresholdSettings covers reading and tuning alert thresholds.
type ThresholdSettings interface {
	GetAlertThresholds(ctx context.Context) (*AlertThresholds, error)
	UpdateAlertThresholds(ctx context.Context, update AlertThresholds) (*AlertThresholds, error)
}

// UserAdmin covers the admin-only operations.
type UserAdmin interface {
	ListUsers(ctx context.Context, params UserListParams) ([]User, error)
	CreateUser(ctx context.Context, user UserCreate) (*User, error)
	ListAuditLogs(ctx context.Context, params AuditLogParams) ([]AuditLogEntry, error)
}

// Compile-time checks that the concrete facades satisfy the contracts.
var (
	_ PatientReader     = (*PatientsService)(nil)
	_ AlertManager      = (*AlertsService)(nil)
	_ Authenticator     = (*AuthService)(nil)
	_ ThresholdSettings = (*SettingsService)(nil)
	_ UserAdmin         = (*AdminService)(nil)
)
