package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/yassnemo/health-pulse-sub000/pkg/api"
)

// ErrSessionExpired is the message shown when a stored token no longer
// resolves to a profile.
const ErrSessionExpired = "Session expired"

// Manager is the single identity holder for the process. Authentication
// state is defined by the presence of a verified profile, not by token
// presence: a stored-but-invalid token never reports authenticated.
type Manager struct {
	auth     api.Authenticator
	tokens   api.TokenStore
	strategy Strategy
	logger   *zap.Logger

	mu      sync.Mutex
	user    *api.User
	loading bool
	errMsg  string

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// Options configures a Manager. Strategy defaults to PasswordStrategy
// over Auth and Tokens.
type Options struct {
	Auth     api.Authenticator
	Tokens   api.TokenStore
	Strategy Strategy
	Logger   *zap.Logger
}

// NewManager builds a Manager. Call Bootstrap before consulting it.
func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	strategy := opts.Strategy
	if strategy == nil {
		strategy = &PasswordStrategy{Auth: opts.Auth, Tokens: opts.Tokens}
	}
	return &Manager{
		auth:     opts.Auth,
		tokens:   opts.Tokens,
		strategy: strategy,
		logger:   logger,
		loading:  true,
		subs:     make(map[int]func()),
	}
}

// Bootstrap restores the session from the persisted token, if any.
// loading is guaranteed false when it returns, so route guarding can
// rely on a settled state.
func (m *Manager) Bootstrap(ctx context.Context) {
	_, ok := m.tokens.Token()
	if !ok {
		m.setState(nil, false, "")
		return
	}

	user, err := m.auth.GetProfile(ctx)
	if err != nil {
		// The token is stale or revoked; drop it rather than carrying a
		// slot that can never authenticate.
		if clearErr := m.tokens.Clear(); clearErr != nil {
			m.logger.Warn("failed to clear stale token", zap.Error(clearErr))
		}
		m.logger.Info("session bootstrap failed", zap.String("reason", api.ErrorMessage(err)))
		m.setState(nil, false, ErrSessionExpired)
		return
	}

	m.logger.Debug("session restored", zap.String("username", user.Username))
	m.setState(user, false, "")
}

// Login authenticates with the configured strategy.
func (m *Manager) Login(ctx context.Context, creds api.Credentials) error {
	m.setLoading(true)
	user, err := m.strategy.Login(ctx, creds)
	if err != nil {
		m.setState(nil, false, api.ErrorMessage(err))
		return err
	}
	m.setState(user, false, "")
	m.logger.Info("logged in", zap.String("username", user.Username), zap.String("role", user.Role))
	return nil
}

// Logout ends the session: server-side best effort, then the token and
// the identity are dropped locally regardless.
func (m *Manager) Logout(ctx context.Context) {
	if m.auth != nil {
		if err := m.auth.Logout(ctx); err != nil {
			m.logger.Debug("server-side logout failed", zap.Error(err))
		}
	}
	if err := m.tokens.Clear(); err != nil {
		m.logger.Warn("failed to clear token on logout", zap.Error(err))
	}
	m.setState(nil, false, "")
}

// HandleUnauthorized drops the local identity after the HTTP client saw
// a 401. The client has already cleared the token by the time this runs.
func (m *Manager) HandleUnauthorized() {
	m.mu.Lock()
	hadUser := m.user != nil
	m.user = nil
	if hadUser {
		m.errMsg = ErrSessionExpired
	}
	m.mu.Unlock()
	if hadUser {
		m.notify()
	}
}

// CurrentUser returns the verified identity, or nil.
func (m *Manager) CurrentUser() *api.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// IsAuthenticated reports whether a verified profile is present.
func (m *Manager) IsAuthenticated() bool {
	return m.CurrentUser() != nil
}

// Loading reports whether bootstrap or a login is still in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Err returns the last session-level error message, if any.
func (m *Manager) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errMsg
}

// Subscribe registers fn to run after every session state change. The
// returned function removes the subscription.
func (m *Manager) Subscribe(fn func()) func() {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()
	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) setState(user *api.User, loading bool, errMsg string) {
	m.mu.Lock()
	m.user = user
	m.loading = loading
	m.errMsg = errMsg
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) notify() {
	m.subMu.Lock()
	fns := make([]func(), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
