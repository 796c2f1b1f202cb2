package v1

import "go.uber.org/zap"

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	repoPath     string
	trailerKey   string
	trailerValue string
	logger       *zap.Logger
}

// WithRepo sets the repository path (default: detect from cwd).
func WithRepo(path string) Option {
	return func(c *clientConfig) {
		c.repoPath = path
	}
}

// WithTrailer sets the default trailer appended by Rewrite.
func WithTrailer(key, value string) Option {
	return func(c *clientConfig) {
		c.trailerKey = key
		c.trailerValue = value
	}
}

// WithLogger routes internal debug events to the given logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
