// Package remote is the HTTP client for the SageFlow REST API. It
// implements [sageauth.AuthService] — role-aware login endpoint
// selection, bearer-token capture into the shared token store, and
// best-effort logout — plus the typed read models behind the dashboard
// views (daily guidance, wellness scores, booking requests, session
// scheduling).
//
// # Architecture boundaries
//
// The client owns transport policy: timeouts, request IDs, and the
// Authorization header. It does NOT interpret identities — login hands
// the decoded response body back raw, and the resolver's field-resolution
// chain decides what it means.
//
// The backend's error envelope is ill-specified ({"message": ...} from
// some services, {"error": ...} from others); [APIError] tolerates both,
// consistent with the resolver's multi-shape tolerance.
package remote
