package manager

import (
	"github.com/GriffinCanCode/restmanager/internal/config"
	"github.com/GriffinCanCode/restmanager/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/restmanager/internal/rest/client"
	"github.com/GriffinCanCode/restmanager/internal/rest/response"
	"go.uber.org/zap"
)

// Option configures a Manager
type Option func(*Manager)

// WithConfig applies REST settings and transport options from cfg
func WithConfig(cfg *config.Config) Option {
	return func(m *Manager) {
		if cfg == nil {
			return
		}
		m.initial = &Settings{
			BaseURL:   cfg.REST.BaseURL,
			Username:  cfg.REST.Username,
			Password:  cfg.REST.Password,
			UserAgent: cfg.REST.UserAgent,
			Mode:      cfg.REST.Mode(),
		}
		m.clientOpts.Timeout = cfg.Client.Timeout.Std()
		m.clientOpts.RateLimit = cfg.Client.RateLimit
		m.clientOpts.Compression = cfg.Client.Compression
		m.clientOpts.BreakerThreshold = cfg.Client.BreakerThreshold
		m.clientOpts.BreakerCooldown = cfg.Client.BreakerCooldown.Std()
	}
}

// WithSettings applies REST settings
func WithSettings(s Settings) Option {
	return func(m *Manager) {
		m.initial = &s
	}
}

// WithLogger sets the logger (nop by default)
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClient replaces the transport client
func WithClient(c *client.Client) Option {
	return func(m *Manager) {
		m.client = c
	}
}

// WithCodec replaces the JSON codec
func WithCodec(codec response.Codec) Option {
	return func(m *Manager) {
		if codec != nil {
			m.codec = codec
		}
	}
}

// WithHandler sets the lifecycle event handler
func WithHandler(h Handler) Option {
	return func(m *Manager) {
		m.handler = h
	}
}

// WithMetrics records lifecycle metrics
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}
