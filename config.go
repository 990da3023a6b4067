package sageauth

import (
	"errors"
	"strings"
	"time"
)

// Config defines the tunable behavior of a [Resolver] and the route
// guard defaults derived from it.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Session SessionConfig
	Guard   GuardConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls token expiry checking and identity defaults.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// ExpiryBuffer is the safety margin subtracted from the token's exp
	// claim. A token whose remaining lifetime is ExpiryBuffer or less is
	// treated as already expired (the boundary belongs to the cleared
	// side). Default 60s.
	ExpiryBuffer time.Duration
	// DefaultRole is adopted when no role is found in the response or the
	// token claims. Default [RoleDefault].
	DefaultRole string
}

/*
====================================
GUARD CONFIG
====================================
*/

// GuardConfig carries the navigation targets the route guard redirects to.
//
// GuardConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type GuardConfig struct {
	// SignInPath receives unauthenticated navigations. Default "/signin".
	SignInPath string
	// DefaultLandingPath receives authenticated navigations whose role
	// requirement is unmet. Default "/".
	DefaultLandingPath string
	// ResumeParam is the query parameter carrying the originally requested
	// path to the sign-in page. Default "redirect".
	ResumeParam string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the in-process metrics system.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the configuration a stock SageFlow client runs
// with. Callers mutate the copy and pass it to [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			ExpiryBuffer: 60 * time.Second,
			DefaultRole:  RoleDefault,
		},
		Guard: GuardConfig{
			SignInPath:         "/signin",
			DefaultLandingPath: "/",
			ResumeParam:        "redirect",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types today; the clone exists so future
	// reference-typed fields keep builder inputs immutable.
	return cfg
}

// Validate checks the configuration for values the Resolver cannot run
// with. It is called by [Builder.Build]; callers may also invoke it
// directly when assembling configs from the environment.
func (c *Config) Validate() error {
	if c.Session.ExpiryBuffer < 0 || c.Session.ExpiryBuffer > 10*time.Minute {
		return errors.New("invalid ExpiryBuffer: must be between 0 and 10 minutes")
	}
	if strings.TrimSpace(c.Session.DefaultRole) == "" {
		return errors.New("DefaultRole must not be empty")
	}
	if !strings.HasPrefix(c.Guard.SignInPath, "/") {
		return errors.New("Guard.SignInPath must be an absolute path")
	}
	if !strings.HasPrefix(c.Guard.DefaultLandingPath, "/") {
		return errors.New("Guard.DefaultLandingPath must be an absolute path")
	}
	if strings.TrimSpace(c.Guard.ResumeParam) == "" {
		return errors.New("Guard.ResumeParam must not be empty")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must not be negative")
	}
	return nil
}
