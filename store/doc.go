// Package store provides durable client-side storage backends for the
// bearer token and the persisted user record.
//
//   - [Memory] — in-process storage for tests and ephemeral sessions.
//   - [File] — per-device storage under a local state directory, the
//     default for single-user installs.
//   - [Redis] — shared storage namespaced by device ID, for managed
//     terminal deployments (school computer labs) where session state
//     must survive the local disk being wiped between sittings.
//
// Each backend implements both [sageauth.TokenStore] and
// [sageauth.UserStore]. Absence is reported as a nil error with a zero
// value; only genuine backend faults produce errors, wrapped in
// [ErrUnavailable].
package store
