// Package routegate decides, per request, whether the caller may reach the
// requested page or must be redirected. The decision is a pure function of the
// session state and the path category; it never fails. Token validation happens
// upstream: a missing or invalid token simply means "not logged in".
package routegate

const (
	LoginPath     = "/login"
	SignupPath    = "/signup"
	PaymentPath   = "/payment"
	DashboardPath = "/app/dashboard"
	AppPrefix     = "/app"
)

// Decision is the outcome of the route gate: either the request proceeds, or
// the caller is redirected to RedirectTo.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Allow lets the request through.
func Allow() Decision { return Decision{Allow: true} }

// RedirectTo sends the caller to target instead.
func RedirectTo(target string) Decision { return Decision{RedirectTo: target} }

// Decide evaluates the gate. The rules, in precedence order:
//
//  1. gated app pages require login, then payment;
//  2. a logged-in, paid user has no business on the login/signup forms and is
//     sent to the dashboard;
//  3. a logged-in, unpaid user is sent from the auth forms to payment but may
//     browse any other public page;
//  4. everything public is open to anonymous visitors.
//
// Every combination of the four inputs maps to exactly one outcome.
func Decide(isLoggedIn, hasAccess, isAppPath, isAuthPagePath bool) Decision {
	if isAppPath {
		if !isLoggedIn {
			return RedirectTo(LoginPath)
		}
		if !hasAccess {
			return RedirectTo(PaymentPath)
		}
		return Allow()
	}

	if isLoggedIn && isAuthPagePath {
		if hasAccess {
			return RedirectTo(DashboardPath)
		}
		return RedirectTo(PaymentPath)
	}

	return Allow()
}

// PathKind classifies a request path for the gate.
type PathKind struct {
	IsAppPath      bool
	IsAuthPagePath bool
}

// Classify buckets a path as gated app territory, an auth form, or neither.
func Classify(path string) PathKind {
	if path == AppPrefix || hasPathPrefix(path, AppPrefix) {
		return PathKind{IsAppPath: true}
	}
	if path == LoginPath || path == SignupPath ||
		hasPathPrefix(path, LoginPath) || hasPathPrefix(path, SignupPath) {
		return PathKind{IsAuthPagePath: true}
	}
	return PathKind{}
}

// hasPathPrefix reports whether path lives under prefix as a segment boundary,
// so /application does not count as /app.
func hasPathPrefix(path, prefix string) bool {
	return len(path) > len(prefix) &&
		path[:len(prefix)] == prefix &&
		path[len(prefix)] == '/'
}
