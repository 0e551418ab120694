package view

import (
	"strings"
	"sync"

	"github.com/yassnemo/health-pulse-sub000/pkg/api"
)

// The routing surface the client guards. Views themselves live outside
// the core; the router only decides where the user lands.
const (
	RouteLogin          = "/login"
	RouteForgotPassword = "/forgot-password"
	RouteDashboard      = "/dashboard"
	RoutePatients       = "/patients"
	RouteHighRisk       = "/high-risk"
	RouteAlerts         = "/alerts"
	RouteSettings       = "/settings"
	RouteAdminUsers     = "/admin/users"
	RouteAdminAuditLogs = "/admin/audit-logs"
	RouteNotFound       = "/not-found"
)

// publicRoutes need no session.
var publicRoutes = map[string]bool{
	RouteLogin:          true,
	RouteForgotPassword: true,
	RouteNotFound:       true,
}

// roleRequirements lists routes gated on a specific role.
var roleRequirements = map[string]string{
	RouteAdminUsers:     "admin",
	RouteAdminAuditLogs: "admin",
}

// Resolve normalizes a raw path onto the routing surface: "/" lands on
// the dashboard and anything unknown lands on not-found.
func Resolve(path string) string {
	if path == "" || path == "/" {
		return RouteDashboard
	}
	path = strings.TrimSuffix(path, "/")
	switch path {
	case RouteLogin, RouteForgotPassword, RouteDashboard, RoutePatients,
		RouteHighRisk, RouteAlerts, RouteSettings, RouteAdminUsers,
		RouteAdminAuditLogs, RouteNotFound:
		return path
	}
	// Patient detail carries an identifier segment.
	if strings.HasPrefix(path, RoutePatients+"/") && !strings.Contains(strings.TrimPrefix(path, RoutePatients+"/"), "/") {
		return path
	}
	return RouteNotFound
}

// RequiredRole returns the role a route demands, or "".
func RequiredRole(route string) string {
	return roleRequirements[route]
}

// IsPublic reports whether a route is reachable without a session.
func IsPublic(route string) bool {
	return publicRoutes[route]
}

// Session is the slice of session state the router consults.
type Session interface {
	Loading() bool
	IsAuthenticated() bool
	CurrentUser() *api.User
}

// Router tracks the current location and applies the route guard on
// every navigation.
type Router struct {
	mu      sync.Mutex
	session Session
	current string
}

// NewRouter starts on the login route; Navigate moves on from there
// once the session has bootstrapped.
func NewRouter(session Session) *Router {
	return &Router{session: session, current: RouteLogin}
}

// Current returns the route the user is on.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate attempts to move to path and returns the guard's decision.
// The location only changes when the guard allows or redirects.
func (r *Router) Navigate(path string) Decision {
	route := Resolve(path)
	decision := Check(r.session, route, RequiredRole(route))

	r.mu.Lock()
	defer r.mu.Unlock()
	switch decision {
	case Allow:
		r.current = route
	case RedirectLogin:
		r.current = RouteLogin
	case RedirectHome:
		r.current = RouteDashboard
	}
	return decision
}

// SessionExpired sends the user to the login route after a 401. It
// reports whether a navigation actually happened: already being on the
// login page is a no-op, so the redirect fires at most once.
func (r *Router) SessionExpired() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == RouteLogin {
		return false
	}
	r.current = RouteLogin
	return true
}
