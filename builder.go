package authsession

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/crmkit/authsession/credstore"
	"github.com/crmkit/authsession/token"
)

// Builder assembles a [Controller]. A builder is single-use: Build fails on
// the second call.
type Builder struct {
	config    Config
	kv        credstore.KV
	transport Transport
	notifier  Notifier
	logger    zerolog.Logger
	restore   bool

	built bool
}

// New returns a Builder loaded with defaults.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithConfig replaces the default configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithTransport sets the remote authentication backend. Required.
func (b *Builder) WithTransport(t Transport) *Builder {
	b.transport = t
	return b
}

// WithStorage injects the durable key-value backend. When omitted,
// Config.Storage.Path must point at a file for a credstore.FileKV.
func (b *Builder) WithStorage(kv credstore.KV) *Builder {
	b.kv = kv
	return b
}

// WithNotifier sets the UI surface notified on logout. Optional; a silent
// no-op notifier is used when omitted.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithLogger sets the logger for degraded paths (storage failures, remote
// logout failures). Defaults to zerolog.Nop.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithRestore makes Build reload a previously persisted session from
// storage, so an authenticated session survives a process restart.
func (b *Builder) WithRestore(enabled bool) *Builder {
	b.restore = enabled
	return b
}

// Build validates the configuration and wires the controller.
func (b *Builder) Build() (*Controller, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.transport == nil {
		return nil, errors.New("transport required")
	}

	kv := b.kv
	if kv == nil {
		if cfg.Storage.Path == "" {
			return nil, errors.New("storage backend required: inject a KV or set Storage.Path")
		}
		kv = credstore.NewFileKV(cfg.Storage.Path)
	}

	notifier := b.notifier
	if notifier == nil {
		notifier = noopNotifier{}
	}

	c := &Controller{
		config:    cfg,
		codec:     token.NewCodec(cfg.Token.RefreshWindow),
		store:     credstore.NewStore(kv, cfg.Storage.TokenKey, cfg.Storage.UserKey),
		transport: b.transport,
		notifier:  notifier,
		log:       b.logger,
		state:     StateAnonymous,
	}

	if b.restore {
		c.Restore()
	}

	b.built = true

	return c, nil
}
