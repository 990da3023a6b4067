package sageauth

import (
	"context"
)

// Role tags understood by the SageFlow backend. The backend routes each
// role to its own login endpoint and its own dashboard; [RoleDefault] is
// what identity resolution falls back to when no role claim is found
// anywhere.
const (
	RoleStudent      = "STUDENT"
	RoleParent       = "PARENT"
	RoleTeacher      = "TEACHER"
	RolePsychologist = "PSYCHOLOGIST"
	RoleDefault      = "USER"
)

// User is the canonical identity derived by the Resolver. ID == 0 marks a
// resolved-but-unidentified user (a valid sentinel, distinct from "no
// session"); Username may be empty; Role defaults to [RoleDefault].
//
// The same shape is what gets persisted to the [UserStore], so the JSON
// tags are part of the durable storage format.
type User struct {
	ID                       int    `json:"id"`
	Username                 string `json:"username"`
	Role                     string `json:"role"`
	HolisticProfileCompleted *bool  `json:"holisticProfileCompleted,omitempty"`
}

// Clone returns a deep copy of the user, or nil for a nil receiver.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	if u.HolisticProfileCompleted != nil {
		v := *u.HolisticProfileCompleted
		out.HolisticProfileCompleted = &v
	}
	return &out
}

// UserPatch carries the fields of a [Resolver.UpdateUser] shallow merge.
// Nil fields are left untouched.
type UserPatch struct {
	ID                       *int
	Username                 *string
	Role                     *string
	HolisticProfileCompleted *bool
}

// State is the session read model exposed to page-level callers and to
// the route guard. It is a point-in-time snapshot; mutating it has no
// effect on the Resolver.
type State struct {
	IsAuthenticated bool
	User            *User
	Loading         bool
	Err             string
}

// RestoreOutcome reports which path [Resolver.Initialize] took. Silent
// best-effort recovery (malformed or expired tokens) is represented as an
// explicit variant rather than a swallowed error so callers and tests can
// assert the path taken.
type RestoreOutcome uint8

const (
	// RestoreNoSession means no stored token was found; the session is empty.
	RestoreNoSession RestoreOutcome = iota
	// RestoredPersisted means a valid token and a persisted user with a
	// positive id were found and adopted as-is.
	RestoredPersisted
	// RestoredFromToken means a valid token was found but no usable
	// persisted user; the identity was reconstructed from token claims
	// alone and re-persisted.
	RestoredFromToken
	// RestoreClearedMalformed means the stored token did not decode;
	// token and persisted user were cleared.
	RestoreClearedMalformed
	// RestoreClearedExpired means the stored token was past (or within
	// the safety buffer of) its expiry; token and persisted user were
	// cleared.
	RestoreClearedExpired
	// RestoreClearedUnresolved means the token was valid but carried no
	// identity at all (no id, no username); token and persisted user
	// were cleared rather than entering a degraded session offline.
	RestoreClearedUnresolved
)

func (o RestoreOutcome) String() string {
	switch o {
	case RestoreNoSession:
		return "no_session"
	case RestoredPersisted:
		return "restored_persisted"
	case RestoredFromToken:
		return "restored_from_token"
	case RestoreClearedMalformed:
		return "cleared_malformed"
	case RestoreClearedExpired:
		return "cleared_expired"
	case RestoreClearedUnresolved:
		return "cleared_unresolved"
	default:
		return "unknown"
	}
}

// Credentials is the opaque credential payload forwarded verbatim to the
// remote login call. The Resolver never inspects it.
type Credentials map[string]any

// RawResponse is a decoded login/refresh response body. The backend's
// shape is inconsistent across roles and versions, so it stays a loose
// map and identity is derived by the field-resolution chain.
type RawResponse map[string]any

// TokenStore owns the durable bearer token. The Resolver consults it and
// clears it on failure or expiry but never mints tokens itself.
// Implementations report "absent" as ("", nil).
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// UserStore is durable single-record storage for the persisted user,
// keyed internally by a fixed constant. Only the Resolver may use it.
// Load reports "absent" as (nil, nil).
type UserStore interface {
	Load(ctx context.Context) (*User, error)
	Save(ctx context.Context, user User) error
	Clear(ctx context.Context) error
}

// AuthService is the remote SageFlow authentication contract. Login
// returns the decoded raw response body and, as a side effect, stores any
// bearer token it received into the shared [TokenStore] — the Resolver
// reads the token back from there rather than from the response. Logout
// is best-effort.
type AuthService interface {
	Login(ctx context.Context, credentials Credentials, role string) (RawResponse, error)
	Logout(ctx context.Context) error
}
