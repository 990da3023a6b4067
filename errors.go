package sageauth

import "errors"

var (
	// ErrResolverNotReady is returned when a Resolver method is called on a
	// nil or unbuilt Resolver.
	ErrResolverNotReady = errors.New("resolver not initialized")
	// ErrLoginFailed wraps remote login rejections surfaced to the caller.
	ErrLoginFailed = errors.New("login failed")
	// ErrRoleRequired is returned by Login when no role tag was supplied.
	ErrRoleRequired = errors.New("login role required")
)
