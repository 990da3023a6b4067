package guard

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	sageauth "github.com/sageflow/sageauth"
)

// Action is the outcome kind of a route decision.
type Action uint8

const (
	// ActionPending means the session is still loading; no redirect
	// decision can be made yet.
	ActionPending Action = iota
	// ActionAllow means the requested view may render.
	ActionAllow
	// ActionRedirectSignIn means the navigation goes to the sign-in entry
	// point, carrying the originally requested location as resume target.
	ActionRedirectSignIn
	// ActionRedirectDefault means the user is valid but misrouted; the
	// navigation goes to the default landing view, never to sign-in.
	ActionRedirectDefault
)

// Decision is the result of gating one navigation.
type Decision struct {
	Action Action
	// Target is the redirect destination for the redirect actions,
	// including the resume query parameter for sign-in redirects.
	Target string
	// Resume is the originally requested path carried on sign-in
	// redirects so the navigation can continue after login.
	Resume string
}

// Policy names the navigation targets decisions redirect to.
type Policy struct {
	SignInPath         string
	DefaultLandingPath string
	ResumeParam        string
}

// DefaultPolicy matches the paths of [sageauth.DefaultConfig].
func DefaultPolicy() Policy {
	cfg := sageauth.DefaultConfig()
	return PolicyFromConfig(cfg.Guard)
}

// PolicyFromConfig builds a Policy from a resolver guard configuration.
func PolicyFromConfig(cfg sageauth.GuardConfig) Policy {
	return Policy{
		SignInPath:         cfg.SignInPath,
		DefaultLandingPath: cfg.DefaultLandingPath,
		ResumeParam:        cfg.ResumeParam,
	}
}

// Decide gates a navigation to requestedPath given the current session
// state. requiredRole may be empty, in which case any authenticated user
// passes. Decide is a pure function; it holds no state beyond what it
// reads from its arguments.
func Decide(state sageauth.State, requiredRole, requestedPath string, policy Policy) Decision {
	if state.Loading {
		return Decision{Action: ActionPending}
	}

	if !state.IsAuthenticated {
		return Decision{
			Action: ActionRedirectSignIn,
			Target: signInTarget(policy, requestedPath),
			Resume: requestedPath,
		}
	}

	if requiredRole != "" && (state.User == nil || state.User.Role != requiredRole) {
		return Decision{
			Action: ActionRedirectDefault,
			Target: policy.DefaultLandingPath,
		}
	}

	return Decision{Action: ActionAllow}
}

func signInTarget(policy Policy, requestedPath string) string {
	if strings.TrimSpace(requestedPath) == "" {
		return policy.SignInPath
	}
	v := url.Values{}
	v.Set(policy.ResumeParam, requestedPath)
	return policy.SignInPath + "?" + v.Encode()
}

type userContextKey struct{}

// UserFromContext returns the resolved user injected by the middleware
// guards.
func UserFromContext(ctx context.Context) (*sageauth.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(*sageauth.User)
	return u, ok
}

// SessionSource is anything that can produce a session snapshot —
// normally a [*sageauth.Resolver].
type SessionSource interface {
	Session() sageauth.State
}

// RequireAuth returns middleware that admits any authenticated session.
func RequireAuth(src SessionSource, policy Policy) func(http.Handler) http.Handler {
	return Middleware(src, "", policy)
}

// RequireRole returns middleware that admits only sessions whose resolved
// user carries the given role. Misrouted-but-valid users are sent to the
// default landing path, not to sign-in.
func RequireRole(src SessionSource, role string, policy Policy) func(http.Handler) http.Handler {
	return Middleware(src, role, policy)
}

// Middleware applies [Decide] to each request. While the session is
// loading it answers 503 with Retry-After rather than guessing a
// redirect.
func Middleware(src SessionSource, requiredRole string, policy Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if src == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			state := src.Session()
			decision := Decide(state, requiredRole, requestedPath(r), policy)

			switch decision.Action {
			case ActionPending:
				w.Header().Set("Retry-After", "1")
				http.Error(w, "session loading", http.StatusServiceUnavailable)
			case ActionRedirectSignIn, ActionRedirectDefault:
				http.Redirect(w, r, decision.Target, http.StatusFound)
			default:
				ctx := context.WithValue(r.Context(), userContextKey{}, state.User)
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}

func requestedPath(r *http.Request) string {
	path := r.URL.Path
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}
	return path
}
