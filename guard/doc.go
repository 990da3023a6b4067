// Package guard decides whether a navigation to a protected view is
// allowed, redirected to sign-in, or redirected to a default landing
// view when a role requirement is unmet.
//
// # Guards
//
//   - [Decide] — the pure decision function over current session state.
//   - [RequireAuth] — HTTP middleware gating on authentication only.
//   - [RequireRole] — HTTP middleware additionally requiring a role.
//
// The middleware forms translate a [Decision] into HTTP semantics: 302
// to the sign-in path carrying the originally requested location, 302 to
// the default landing path on role mismatch, 503 while the session is
// still loading, and context injection of the resolved user on allow.
//
// # Architecture boundaries
//
// This package holds no state of its own. Every decision is a pure
// function of the session snapshot plus the static route requirement; it
// does NOT resolve identities, touch storage, or call the network.
package guard
