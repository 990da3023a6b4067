// Package sageauth provides the client-side session core for the SageFlow
// student-wellness platform: token introspection, heuristic identity
// resolution over an ill-specified backend contract, durable session
// persistence, and role-gated route decisions.
//
// The package is built around a [Resolver] constructed through
// [Builder.Build]. A Resolver owns the single process-wide session: it
// restores it from durable storage at startup, replaces it on login,
// clears it on logout, and writes every user mutation through to the
// configured [UserStore]. Resolver methods are safe to call from multiple
// goroutines after construction.
//
// # Architecture boundaries
//
// sageauth is the public surface. It exposes [Resolver], [Builder],
// [Config], the collaborator contracts ([TokenStore], [UserStore],
// [AuthService]), and value types (State, User, RestoreOutcome). Storage
// backends live under store/, token introspection under token/, the route
// guard under guard/, and the SageFlow REST client under remote/.
//
// # What this package must NOT do
//
//   - Verify token signatures. Introspection is read-only derivation for
//     display and routing; the server remains the authority on validity.
//   - Talk to the network directly. All remote calls go through the
//     injected [AuthService].
//   - Read or write persisted user storage from anywhere but the Resolver.
package sageauth
