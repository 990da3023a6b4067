// Package token performs read-only introspection of SageFlow bearer
// tokens: decoding the payload segment of a three-segment compact token
// and exposing the loose claim set the backend actually emits.
//
// # Architecture boundaries
//
// Decoding is NOT verification. No signature is checked and no key
// material exists client-side; the server remains the authority on token
// validity. The only local judgment made here is the expiry check in
// [Claims.ValidAt], and that exists so a stale session can be cleared
// without a network round-trip.
package token
