package view

// Decision is the route guard's verdict for a navigation attempt.
type Decision int

const (
	// Pending: the session is still bootstrapping; render a neutral
	// loading indicator and keep the user where they are.
	Pending Decision = iota
	// Allow: render the requested view.
	Allow
	// RedirectLogin: no session; send the user to the login route.
	RedirectLogin
	// RedirectHome: authenticated but the wrong role; never a 403 page,
	// always back to the dashboard.
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	}
	return "unknown"
}

// Check gates a route on the session state and an optional required
// role. Public routes are always allowed.
func Check(session Session, route, requiredRole string) Decision {
	if IsPublic(route) {
		return Allow
	}
	if session.Loading() {
		return Pending
	}
	if !session.IsAuthenticated() {
		return RedirectLogin
	}
	if requiredRole != "" {
		user := session.CurrentUser()
		if user == nil || user.Role != requiredRole {
			return RedirectHome
		}
	}
	return Allow
}
