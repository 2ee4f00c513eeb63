// Copyright (c) Kopexa GmbH
// SPDX-License-Identifier: BUSL-1.1

package magiclink

import (
	"io"
	"os"

	"github.com/kopexa-grc/magiclink/clock"
	"github.com/kopexa-grc/magiclink/keys"
	"github.com/kopexa-grc/magiclink/link"
	"github.com/kopexa-grc/magiclink/logger"
	"github.com/kopexa-grc/magiclink/metrics"
	"github.com/kopexa-grc/magiclink/noncestore"
	"github.com/kopexa-grc/magiclink/verify"
	"github.com/rs/zerolog/log"
)

// LogFormat selects how New renders the package-level logger's output when
// at least one log Option is passed.
type LogFormat int

const (
	// LogFormatConsole is colorized, human-readable output for local
	// development (package logger's CliLogger).
	LogFormatConsole LogFormat = iota
	// LogFormatJSON is machine-readable output for production
	// (package logger's UseJSONLogging).
	LogFormatJSON
)

// Option configures optional logging behavior for New. Leaving every Option
// unset keeps whatever global zerolog configuration the process already
// has; New never reconfigures logging on its own.
type Option func(*logConfig)

type logConfig struct {
	format LogFormat
	writer io.Writer
	level  string
}

// WithLogFormat selects LogFormatConsole or LogFormatJSON for every log
// line Issue/Verify/Rotate emit.
func WithLogFormat(f LogFormat) Option {
	return func(c *logConfig) { c.format = f }
}

// WithLogWriter overrides where log output is written; os.Stderr if unset.
func WithLogWriter(w io.Writer) Option {
	return func(c *logConfig) { c.writer = w }
}

// WithLogLevel sets the global log level (see package logger's level
// constants). logger.GetEnvLogLevel's DEBUG/TRACE convention is used when
// this is left unset.
func WithLogLevel(level string) Option {
	return func(c *logConfig) { c.level = level }
}

// Service bundles the shared state Issue and Verify need: a key set, a
// clock, a nonce store, and an optional metrics registry. Construct one
// per process and reuse it across requests — every field it wraps is
// already concurrency-safe on its own.
type Service struct {
	Keys    *keys.KeySet
	Clock   clock.Clock
	Nonces  noncestore.NonceStore
	Metrics *metrics.Registry

	builder  *link.LinkBuilder
	verifier *verify.Verifier
}

// New constructs a Service. Pass nil for metrics to run without
// instrumentation. Passing one or more log Options configures the
// package-level logger (package logger's Set/CliLogger/UseJSONLogging)
// before the Service is returned; callers that already configured logging
// themselves can omit them entirely.
func New(ks *keys.KeySet, c clock.Clock, nonces noncestore.NonceStore, m *metrics.Registry, opts ...Option) *Service {
	if len(opts) > 0 {
		cfg := logConfig{format: LogFormatConsole}
		for _, opt := range opts {
			opt(&cfg)
		}

		configureLogging(cfg)
	}

	return &Service{
		Keys:     ks,
		Clock:    c,
		Nonces:   nonces,
		Metrics:  m,
		builder:  link.New(ks, c),
		verifier: verify.New(ks, nonces, c.Now),
	}
}

func configureLogging(cfg logConfig) {
	level := cfg.level
	if level == "" {
		if envLevel, ok := logger.GetEnvLogLevel(); ok {
			level = envLevel
		}
	}

	if level != "" {
		logger.Set(level)
	}

	w := cfg.writer
	if w == nil {
		w = os.Stderr
	}

	switch cfg.format {
	case LogFormatJSON:
		logger.UseJSONLogging(w)
	default:
		logger.LogOutputWriter = logger.NewBufferedWriter(w)
		logger.CliLogger()
	}
}

// Issue creates a signed, optionally encrypted token for subject.
func (s *Service) Issue(subject string, opts link.CreateOptions) (string, error) {
	tok, err := s.builder.Issue(subject, opts)
	if err != nil {
		log.Warn().Err(err).Msg("magiclink: issue failed")
		return "", err
	}

	if s.Metrics != nil {
		if key, kerr := s.Keys.GetForSign(s.Clock.Now()); kerr == nil {
			s.Metrics.ObserveIssue(key.Kid)
		}
	}

	return tok, nil
}

// IssueAndCreateURL issues a token and assembles the resulting magic-link
// URL in one call.
func (s *Service) IssueAndCreateURL(subject string, opts link.CreateOptions, baseURL, paramName string) (string, error) {
	tok, err := s.Issue(subject, opts)
	if err != nil {
		return "", err
	}

	return s.builder.CreateURL(baseURL, tok, paramName)
}

// Verify runs the verification pipeline against a compact token string.
func (s *Service) Verify(token string, opts verify.Options) verify.Result {
	result := s.verifier.Verify(token, opts)
	s.observeVerify(result)

	return result
}

// VerifyFromRequest runs the verification pipeline against a raw token or
// a full URL containing one (see verify.Verifier.VerifyFromRequest).
func (s *Service) VerifyFromRequest(raw, paramName string, opts verify.Options) verify.Result {
	result := s.verifier.VerifyFromRequest(raw, paramName, opts)
	s.observeVerify(result)

	return result
}

func (s *Service) observeVerify(result verify.Result) {
	if s.Metrics != nil {
		s.Metrics.ObserveVerify(string(result.Reason))
	}

	if !result.Ok {
		log.Warn().Str(logger.FieldReason, string(result.Reason)).Str(logger.FieldKeyID, result.Kid).Msg("magiclink: verify rejected")
	}
}

// Rotate adds newKey to the key set as the new signing key, without
// invalidating tokens issued under any previously added key.
func (s *Service) Rotate(newKey keys.Key) {
	s.Keys.Rotate(newKey)
}
