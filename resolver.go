package sageauth

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/sageflow/sageauth/token"
)

// Resolver owns the process-wide session: it derives a trustworthy
// identity from heterogeneous, partially-missing inputs and keeps the
// in-memory session and the persisted user record in sync.
//
// Resolver instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Resolver struct {
	config  Config
	tokens  TokenStore
	users   UserStore
	remote  AuthService
	audit   *auditDispatcher
	metrics *Metrics
	clock   func() time.Time

	mu    sync.Mutex
	state State
}

// Session returns a point-in-time snapshot of the session read model.
// The returned user is a copy; mutating it does not affect the Resolver.
func (r *Resolver) Session() State {
	if r == nil {
		return State{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.state
	out.User = r.state.User.Clone()
	return out
}

// Close shuts down the audit dispatcher, flushing buffered events.
func (r *Resolver) Close() {
	if r == nil {
		return
	}
	if r.audit != nil {
		r.audit.Close()
	}
}

// AuditDropped returns the number of audit events dropped under
// dispatcher backpressure.
func (r *Resolver) AuditDropped() uint64 {
	if r == nil || r.audit == nil {
		return 0
	}
	return r.audit.Dropped()
}

// MetricsSnapshot returns a deep copy of the in-process metrics.
func (r *Resolver) MetricsSnapshot() MetricsSnapshot {
	if r == nil || r.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return r.metrics.Snapshot()
}

// Initialize restores the session from durable storage. It runs once at
// startup, never surfaces an error to the user, and reports which
// recovery path it took. Malformed and expired tokens are cleared
// silently together with the persisted user (corrupt-session recovery);
// a valid token restores the persisted user as-is when it carries a
// positive id, and otherwise reconstructs the identity from token claims
// alone. Loading ends false on every path.
func (r *Resolver) Initialize(ctx context.Context) RestoreOutcome {
	if r == nil {
		return RestoreNoSession
	}

	r.setLoading(true)
	defer r.setLoading(false)

	raw, err := r.tokens.Token(ctx)
	if err != nil {
		r.storageFault(ctx, "token_read", err)
		raw = ""
	}
	if raw == "" {
		r.setEmpty()
		r.metricInc(MetricRestoreNoSession)
		r.emitAudit(ctx, auditEventRestoreNoSession, true, nil, nil, nil)
		return RestoreNoSession
	}

	claims, err := token.Decode(raw)
	if err != nil {
		r.clearStored(ctx)
		r.setEmpty()
		r.metricInc(MetricRestoreMalformed)
		r.emitAudit(ctx, auditEventRestoreMalformed, false, nil, err, nil)
		return RestoreClearedMalformed
	}

	if !claims.ValidAt(r.clock(), r.config.Session.ExpiryBuffer) {
		r.clearStored(ctx)
		r.setEmpty()
		r.metricInc(MetricRestoreExpired)
		r.emitAudit(ctx, auditEventRestoreExpired, false, nil, nil, nil)
		return RestoreClearedExpired
	}

	persisted, err := r.users.Load(ctx)
	if err != nil {
		r.storageFault(ctx, "user_read", err)
		persisted = nil
	}
	if persisted != nil && persisted.ID > 0 {
		user := persisted.Clone()
		r.setAuthenticated(user)
		r.metricInc(MetricRestorePersisted)
		r.emitAudit(ctx, auditEventRestorePersisted, true, user, nil, nil)
		return RestoredPersisted
	}

	// No usable persisted record: rebuild the identity from the token
	// payload with an empty response object.
	user := resolveIdentity(nil, claims, r.config.Session.DefaultRole)
	if user == nil {
		r.clearStored(ctx)
		r.setEmpty()
		r.metricInc(MetricRestoreUnresolved)
		r.emitAudit(ctx, auditEventRestoreUnresolved, false, nil, nil, nil)
		return RestoreClearedUnresolved
	}

	if err := r.users.Save(ctx, *user); err != nil {
		r.storageFault(ctx, "user_write", err)
	}
	r.setAuthenticated(user)
	r.metricInc(MetricRestoreFromToken)
	r.emitAudit(ctx, auditEventRestoreFromToken, true, user, nil, nil)
	return RestoredFromToken
}

// Login forwards the opaque credentials to the remote login call for the
// given role, reads back whatever bearer token the call stored, and
// re-derives the session identity from the raw response plus token
// claims.
//
// When the backend accepts the credentials but no identity can be
// resolved from any source, the session still becomes authenticated with
// a nil user. That degraded state mirrors the backend contract as it
// exists today and is deliberately preserved; it is counted under
// [MetricLoginIdentityUnresolved] so operators can see it happening.
//
// On remote failure the session error message is set, the failure is
// returned to the caller (wrapped so errors.Is(err, ErrLoginFailed)
// holds), and the session is left unauthenticated. Loading ends false on
// every path. The raw response is returned on success so callers can make
// role-specific redirect decisions from it.
func (r *Resolver) Login(ctx context.Context, credentials Credentials, role string) (RawResponse, error) {
	if r == nil || r.remote == nil {
		return nil, ErrResolverNotReady
	}
	if strings.TrimSpace(role) == "" {
		return nil, ErrRoleRequired
	}

	r.mu.Lock()
	r.state.Loading = true
	r.state.Err = ""
	r.mu.Unlock()
	defer r.setLoading(false)

	start := r.clock()

	resp, err := r.remote.Login(ctx, credentials, role)
	if err != nil {
		r.mu.Lock()
		r.state.Err = err.Error()
		r.mu.Unlock()
		r.metricInc(MetricLoginFailure)
		r.emitAudit(ctx, auditEventLoginFailure, false, nil, err, map[string]string{"login_role": role})
		return nil, errors.Join(ErrLoginFailed, err)
	}

	tokenStr, terr := r.tokens.Token(ctx)
	if terr != nil {
		r.storageFault(ctx, "token_read", terr)
		tokenStr = ""
	}
	var claims *token.Claims
	if tokenStr != "" {
		// A token that fails to decode contributes no claims; the response
		// object may still resolve the identity on its own.
		claims, _ = token.Decode(tokenStr)
	}

	user := resolveIdentity(resp, claims, r.config.Session.DefaultRole)

	r.mu.Lock()
	r.state.IsAuthenticated = true
	r.state.User = user
	r.mu.Unlock()

	if user != nil {
		if err := r.users.Save(ctx, *user); err != nil {
			r.storageFault(ctx, "user_write", err)
		}
		r.emitAudit(ctx, auditEventLoginSuccess, true, user, nil, map[string]string{"login_role": role})
	} else {
		if err := r.users.Clear(ctx); err != nil {
			r.storageFault(ctx, "user_clear", err)
		}
		r.metricInc(MetricLoginIdentityUnresolved)
		r.emitAudit(ctx, auditEventLoginIdentityUnresolved, true, nil, nil, map[string]string{"login_role": role})
	}

	r.metricInc(MetricLoginSuccess)
	r.metricObserve(MetricLoginLatency, r.clock().Sub(start))
	return resp, nil
}

// Logout invokes the remote logout best-effort and unconditionally clears
// the local session, the stored token, and the persisted user. A remote
// failure is logged and audited but never blocks local cleanup: logout
// must always be effective on the client.
func (r *Resolver) Logout(ctx context.Context) {
	if r == nil {
		return
	}

	r.setLoading(true)
	defer r.setLoading(false)

	var user *User
	r.mu.Lock()
	user = r.state.User.Clone()
	r.mu.Unlock()

	if r.remote != nil {
		if err := r.remote.Logout(ctx); err != nil {
			log.Print("sageauth: remote logout failed")
			r.metricInc(MetricLogoutRemoteFailure)
			r.emitAudit(ctx, auditEventLogoutRemoteFailure, false, user, err, nil)
		}
	}

	r.clearStored(ctx)
	r.setEmpty()
	r.metricInc(MetricLogout)
	r.emitAudit(ctx, auditEventLogout, true, user, nil, nil)
}

// UpdateUser shallow-merges the non-nil patch fields into the current
// user and re-persists the merged record. It is a no-op when there is no
// current user (including the degraded authenticated-without-identity
// state).
func (r *Resolver) UpdateUser(ctx context.Context, patch UserPatch) {
	if r == nil {
		return
	}

	r.mu.Lock()
	if r.state.User == nil {
		r.mu.Unlock()
		return
	}

	merged := r.state.User.Clone()
	if patch.ID != nil {
		merged.ID = *patch.ID
	}
	if patch.Username != nil {
		merged.Username = *patch.Username
	}
	if patch.Role != nil {
		merged.Role = *patch.Role
	}
	if patch.HolisticProfileCompleted != nil {
		v := *patch.HolisticProfileCompleted
		merged.HolisticProfileCompleted = &v
	}
	r.state.User = merged
	snapshot := *merged
	r.mu.Unlock()

	if err := r.users.Save(ctx, snapshot); err != nil {
		r.storageFault(ctx, "user_write", err)
	}
	r.metricInc(MetricUserUpdated)
	r.emitAudit(ctx, auditEventUserUpdated, true, &snapshot, nil, nil)
}

// ClearError discards the last login error message.
func (r *Resolver) ClearError() {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.state.Err = ""
	r.mu.Unlock()
}

func (r *Resolver) setLoading(v bool) {
	r.mu.Lock()
	r.state.Loading = v
	r.mu.Unlock()
}

func (r *Resolver) setEmpty() {
	r.mu.Lock()
	loading := r.state.Loading
	r.state = State{Loading: loading}
	r.mu.Unlock()
}

func (r *Resolver) setAuthenticated(user *User) {
	r.mu.Lock()
	r.state.IsAuthenticated = true
	r.state.User = user
	r.state.Err = ""
	r.mu.Unlock()
}

// clearStored removes the bearer token and the persisted user record.
// Storage faults here are recorded but never surfaced: local cleanup is
// the recovery path, so it must not itself fail loudly.
func (r *Resolver) clearStored(ctx context.Context) {
	if err := r.tokens.ClearToken(ctx); err != nil {
		r.storageFault(ctx, "token_clear", err)
	}
	if err := r.users.Clear(ctx); err != nil {
		r.storageFault(ctx, "user_clear", err)
	}
}

func (r *Resolver) storageFault(ctx context.Context, op string, err error) {
	r.metricInc(MetricStorageFault)
	r.emitAudit(ctx, auditEventStorageFault, false, nil, err, map[string]string{"op": op})
}

func (r *Resolver) metricInc(id MetricID) {
	if r == nil || r.metrics == nil {
		return
	}
	r.metrics.Inc(id)
}

func (r *Resolver) metricObserve(id MetricID, d time.Duration) {
	if r == nil || r.metrics == nil {
		return
	}
	r.metrics.Observe(id, d)
}

func (r *Resolver) emitAudit(ctx context.Context, eventType string, success bool, user *User, cause error, metadata map[string]string) {
	if r == nil || r.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: r.clock(),
		EventType: eventType,
		Success:   success,
		Metadata:  metadata,
	}
	if user != nil {
		event.UserID = user.ID
		event.Username = user.Username
		event.Role = user.Role
	}
	if cause != nil {
		event.Error = cause.Error()
	}

	r.audit.Emit(ctx, event)
}
