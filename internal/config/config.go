// Package config provides the configuration structure for the podcast-generator
// services.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"

	"github.com/jash90/podcast-generator/internal/assetutil"
	"github.com/jash90/podcast-generator/internal/pipeline"
	"github.com/jash90/podcast-generator/internal/synth"
	"github.com/jash90/podcast-generator/internal/synth/audio"
)

// defaultAPIKeyEnv is the environment variable consulted for the provider API
// key when the TOML does not name one. The key itself never lives in the TOML.
const defaultAPIKeyEnv = "OPENAI_API_KEY"

// Validation messages.
const (
	errMsgNATSURLRequired   = "nats url is required"
	errMsgStreamRequired    = "nats stream and consumer names are required"
	errMsgSubjectsRequired  = "nats subjects are required"
	errMsgBucketsRequired   = "nats object store buckets are required"
	errMsgBaseURLRequired   = "tts base_url is required"
	errFmtUnsupportedFormat = "%w: unsupported response_format %q"
	errFmtEnsureDir         = "failed to prepare directory %s: %w"
)

// ErrInvalidConfig is returned when a required configuration value is missing
// or malformed.
var ErrInvalidConfig = errors.New("invalid configuration")

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	URL                     string `toml:"url"`
	PodcastStreamName       string `toml:"podcast_stream_name"`
	PodcastConsumerName     string `toml:"podcast_consumer_name"`
	ScriptSubmittedSubject  string `toml:"script_submitted_subject"`
	AssetCreatedSubject     string `toml:"asset_created_subject"`
	ScriptObjectStoreBucket string `toml:"script_object_store_bucket"`
	AudioObjectStoreBucket  string `toml:"audio_object_store_bucket"`
}

// TTSConfig holds the connection settings for the remote speech provider.
type TTSConfig struct {
	BaseURL        string  `toml:"base_url"`
	APIKeyEnv      string  `toml:"api_key_env"`
	Model          string  `toml:"model"`
	Speed          float64 `toml:"speed"`
	ResponseFormat string  `toml:"response_format"`
	MaxInputLength int     `toml:"max_input_length"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// PipelineConfig holds the synthesis pipeline tuning knobs.
type PipelineConfig struct {
	PlaceholderBytes        int `toml:"placeholder_bytes"`
	PreloadPacingMS         int `toml:"preload_pacing_ms"`
	MaxRetries              int `toml:"max_retries"`
	TransientBackoffSeconds int `toml:"transient_backoff_seconds"`
	RateLimitBackoffSeconds int `toml:"rate_limit_backoff_seconds"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
	OutputDir   string `toml:"output_dir"`
}

// Config is the root configuration structure.
type Config struct {
	NATS     NATSConfig     `toml:"nats"`
	TTS      TTSConfig      `toml:"tts"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Paths    PathsConfig    `toml:"paths"`
}

// Load loads the configuration for the podcast services.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	return &cfg, nil
}

// APIKey resolves the provider API key from the environment.
func (c *TTSConfig) APIKey() string {
	envName := c.APIKeyEnv
	if envName == "" {
		envName = defaultAPIKeyEnv
	}

	return os.Getenv(envName)
}

// ValidateNATS checks the fields the delivery worker needs.
func (c *Config) ValidateNATS() error {
	if c.NATS.URL == "" {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, errMsgNATSURLRequired)
	}

	if c.NATS.PodcastStreamName == "" || c.NATS.PodcastConsumerName == "" {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, errMsgStreamRequired)
	}

	if c.NATS.ScriptSubmittedSubject == "" || c.NATS.AssetCreatedSubject == "" {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, errMsgSubjectsRequired)
	}

	if c.NATS.ScriptObjectStoreBucket == "" || c.NATS.AudioObjectStoreBucket == "" {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, errMsgBucketsRequired)
	}

	return nil
}

// ValidateTTS checks the fields every synthesis front end needs.
func (c *Config) ValidateTTS() error {
	if c.TTS.BaseURL == "" {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, errMsgBaseURLRequired)
	}

	format := audio.Format(c.TTS.ResponseFormat)
	if format != audio.FormatUnknown && !format.Valid() {
		return fmt.Errorf(errFmtUnsupportedFormat, ErrInvalidConfig, c.TTS.ResponseFormat)
	}

	return nil
}

// SynthOptions maps the TTS section onto speech client options. Unset fields
// keep the client defaults.
func (c *Config) SynthOptions() synth.Options {
	return synth.Options{
		BaseURL:        c.TTS.BaseURL,
		APIKey:         c.TTS.APIKey(),
		Model:          c.TTS.Model,
		Speed:          c.TTS.Speed,
		Format:         audio.Format(c.TTS.ResponseFormat),
		MaxInputLength: c.TTS.MaxInputLength,
		Timeout:        time.Duration(c.TTS.TimeoutSeconds) * time.Second,
	}
}

// PipelineOptions maps the pipeline section onto session options. Unset fields
// keep the session defaults.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		ModelID:         c.TTS.Model,
		Format:          audio.Format(c.TTS.ResponseFormat),
		MaxInputLength:  c.TTS.MaxInputLength,
		PlaceholderSize: c.Pipeline.PlaceholderBytes,
		PreloadPacing:   time.Duration(c.Pipeline.PreloadPacingMS) * time.Millisecond,
		RetryPolicy:     c.retryPolicy(),
		PreloadPolicy:   synth.RetryPolicy{},
		GenderMap:       nil,
	}
}

// retryPolicy overlays the configured knobs on the default budget, so a config
// can tune one field without restating the rest.
func (c *Config) retryPolicy() synth.RetryPolicy {
	policy := synth.DefaultPolicy()

	if c.Pipeline.MaxRetries > 0 {
		policy.MaxRetries = c.Pipeline.MaxRetries
	}

	if c.Pipeline.TransientBackoffSeconds > 0 {
		policy.TransientBackoff =
			time.Duration(c.Pipeline.TransientBackoffSeconds) * time.Second
	}

	if c.Pipeline.RateLimitBackoffSeconds > 0 {
		policy.RateLimitBackoff =
			time.Duration(c.Pipeline.RateLimitBackoffSeconds) * time.Second
	}

	return policy
}

// EnsureDirectories creates the directories the services write to.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.BaseLogsDir, c.Paths.OutputDir} {
		if dir == "" {
			continue
		}

		err := assetutil.EnsureDir(dir)
		if err != nil {
			return fmt.Errorf(errFmtEnsureDir, dir, err)
		}
	}

	return nil
}
