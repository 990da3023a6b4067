package sageauth

import (
	"errors"
	"time"
)

// Builder assembles a [Resolver] from its collaborators. All three
// collaborators — token store, user store, and remote auth service — are
// required; the Resolver is the only component allowed to touch the
// persisted user entry, so there is no partial wiring.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	tokenStore  TokenStore
	userStore   UserStore
	authService AuthService
	auditSink   AuditSink

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithTokenStore sets the durable bearer-token storage collaborator.
func (b *Builder) WithTokenStore(ts TokenStore) *Builder {
	b.tokenStore = ts
	return b
}

// WithUserStore sets the durable persisted-user storage collaborator.
func (b *Builder) WithUserStore(us UserStore) *Builder {
	b.userStore = us
	return b
}

// WithAuthService sets the remote SageFlow authentication collaborator.
func (b *Builder) WithAuthService(svc AuthService) *Builder {
	b.authService = svc
	return b
}

// WithAuditSink sets the sink that receives session audit events. Audit
// dispatching also requires Config.Audit.Enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process metrics system.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the login-latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and collaborators and constructs the
// Resolver. A builder can be used once.
func (b *Builder) Build() (*Resolver, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.tokenStore == nil {
		return nil, errors.New("token store required")
	}
	if b.userStore == nil {
		return nil, errors.New("user store required")
	}
	if b.authService == nil {
		return nil, errors.New("auth service required")
	}

	resolver := &Resolver{
		config:  cfg,
		tokens:  b.tokenStore,
		users:   b.userStore,
		remote:  b.authService,
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics: NewMetrics(cfg.Metrics),
		clock:   time.Now,
		state:   State{Loading: true},
	}

	b.built = true

	return resolver, nil
}
