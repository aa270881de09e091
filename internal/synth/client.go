// Package synth performs single-chunk speech synthesis against an
// OpenAI-compatible TTS provider, with bounded, error-classified retry on top.
package synth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/book-expert/logger"

	"github.com/jash90/podcast-generator/internal/core"
	"github.com/jash90/podcast-generator/internal/synth/audio"
)

// API endpoints and paths.
const (
	apiSpeechPath = "/v1/audio/speech"
	apiModelsPath = "/v1/models"
)

// HTTP headers.
const (
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	headerAuthorization = "Authorization"
	contentTypeJSON     = "application/json"
	bearerPrefix        = "Bearer "
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultModel          = "tts-1"
	DefaultSpeed          = 1.0
	DefaultMaxInputLength = 4096
	DefaultTimeout        = 60 * time.Second
)

// Provider error codes that refine the HTTP status classification.
const providerCodeInsufficientQuota = "insufficient_quota"

// Error and log message formats.
const (
	errFmtEmptyText      = "%w: text cannot be empty"
	errFmtEmptyVoice     = "%w: voice cannot be empty"
	errFmtTextTooLong    = "%w: text length %d exceeds provider limit %d"
	errFmtMarshalRequest = "failed to marshal synthesis request: %w"
	errFmtCreateRequest  = "failed to create request: %w"
	errFmtSendRequest    = "failed to send request to provider at %s: %w"
	errFmtReadPayload    = "failed to read audio payload: %w"
	errFmtEmptyPayload   = "%w: provider returned zero bytes"
	errFmtClassified     = "%w: provider returned %s: %s"
	errFmtUnclassified   = "provider returned %s: %s"
	errFmtHealthRequest  = "failed to create health check request: %w"
	errFmtHealthSend     = "health check failed for provider at %s: %w"
	errFmtHealthStatus   = "health check failed with status: %s"

	logFmtFormatMismatch = "Payload format mismatch: requested %s, detected %s"
)

// Options configures the provider client. Zero fields fall back to the
// package defaults above; BaseURL and APIKey have no defaults.
type Options struct {
	BaseURL        string
	APIKey         string
	Model          string
	Speed          float64
	Format         audio.Format
	MaxInputLength int
	Timeout        time.Duration
}

// speechRequest is the JSON payload for the provider's speech endpoint.
type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed"`
	ResponseFormat string  `json:"response_format"`
}

// providerErrorResponse is the provider's structured error envelope.
type providerErrorResponse struct {
	Error providerErrorDetail `json:"error"`
}

type providerErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// HTTPClient performs one request/response cycle per chunk against the
// provider. Retry belongs to Invoke, never to the client itself.
type HTTPClient struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	model          string
	speed          float64
	format         audio.Format
	maxInputLength int
	log            *logger.Logger
}

// NewHTTPClient creates a client for an OpenAI-compatible speech provider. The
// baseURL should include protocol and host (e.g. "https://api.openai.com").
func NewHTTPClient(opts Options, log *logger.Logger) *HTTPClient {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}

	if opts.Speed == 0 {
		opts.Speed = DefaultSpeed
	}

	if opts.Format == audio.FormatUnknown {
		opts.Format = audio.FormatMP3
	}

	if opts.MaxInputLength <= 0 {
		opts.MaxInputLength = DefaultMaxInputLength
	}

	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	return &HTTPClient{
		httpClient:     &http.Client{Timeout: opts.Timeout},
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		apiKey:         opts.APIKey,
		model:          opts.Model,
		speed:          opts.Speed,
		format:         opts.Format,
		maxInputLength: opts.MaxInputLength,
		log:            log,
	}
}

// Model returns the synthesis model the client is configured for. Cache keys
// include it so a model switch never serves stale audio.
func (c *HTTPClient) Model() string {
	return c.model
}

// Format returns the audio container format requested from the provider.
func (c *HTTPClient) Format() audio.Format {
	return c.format
}

// MaxInputLength returns the provider's per-request text limit in runes.
// Chunking must keep every chunk at or under this.
func (c *HTTPClient) MaxInputLength() int {
	return c.maxInputLength
}

// Synthesize sends one chunk to the provider and returns the raw audio payload.
// Preconditions fail fast: empty text, empty voice, or text over the provider
// limit are caller bugs, not retryable conditions. The payload must be
// non-empty; a best-effort format sniff mismatch is logged, never fatal.
func (c *HTTPClient) Synthesize(
	ctx context.Context,
	req core.SynthesisRequest,
) ([]byte, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf(errFmtEmptyText, core.ErrInvalidInput)
	}

	if req.Voice == "" {
		return nil, fmt.Errorf(errFmtEmptyVoice, core.ErrInvalidInput)
	}

	length := utf8.RuneCountInString(req.Text)
	if length > c.maxInputLength {
		return nil, fmt.Errorf(
			errFmtTextTooLong, core.ErrInvalidInput, length, c.maxInputLength,
		)
	}

	requestBody, err := json.Marshal(speechRequest{
		Model:          c.model,
		Input:          req.Text,
		Voice:          req.Voice,
		Speed:          c.speed,
		ResponseFormat: string(c.format),
	})
	if err != nil {
		return nil, fmt.Errorf(errFmtMarshalRequest, err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+apiSpeechPath,
		bytes.NewBuffer(requestBody),
	)
	if err != nil {
		return nil, fmt.Errorf(errFmtCreateRequest, err)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, c.format.MIME())
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf(errFmtSendRequest, c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.responseError(resp)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf(errFmtReadPayload, err)
	}

	if len(payload) == 0 {
		return nil, fmt.Errorf(errFmtEmptyPayload, core.ErrEmptyPayload)
	}

	if !audio.MatchesRequested(payload, c.format) {
		c.log.Warn(logFmtFormatMismatch, c.format, audio.DetectFormat(payload))
	}

	return payload, nil
}

// HealthCheck verifies that the provider answers authenticated requests.
// Performed once before a synthesis run to fail fast when the provider is
// unreachable or the key is bad.
func (c *HTTPClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+apiModelsPath, http.NoBody,
	)
	if err != nil {
		return fmt.Errorf(errFmtHealthRequest, err)
	}

	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf(errFmtHealthSend, c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.responseError(resp)
	}

	return nil
}

func (c *HTTPClient) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set(headerAuthorization, bearerPrefix+c.apiKey)
	}
}

// responseError maps a non-OK provider response onto the error taxonomy.
// 401/403 are authentication, 429 is rate limiting unless the provider code
// says the quota is gone, 402 is quota, 400 is invalid input, and anything
// else stays unclassified so the retry layer treats it as transient.
func (c *HTTPClient) responseError(resp *http.Response) error {
	providerCode, detail := parseErrorBody(resp)

	var sentinel error

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		sentinel = core.ErrAuthentication
	case http.StatusTooManyRequests:
		if providerCode == providerCodeInsufficientQuota {
			sentinel = core.ErrQuotaExceeded
		} else {
			sentinel = core.ErrRateLimited
		}
	case http.StatusPaymentRequired:
		sentinel = core.ErrQuotaExceeded
	case http.StatusBadRequest:
		sentinel = core.ErrInvalidInput
	default:
		return fmt.Errorf(errFmtUnclassified, resp.Status, detail)
	}

	return fmt.Errorf(errFmtClassified, sentinel, resp.Status, detail)
}

// parseErrorBody decodes the provider's structured error envelope, falling back
// to the raw body so diagnostics are never lost.
func parseErrorBody(resp *http.Response) (string, string) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ""
	}

	var envelope providerErrorResponse

	err = json.Unmarshal(body, &envelope)
	if err == nil && envelope.Error.Message != "" {
		return envelope.Error.Code, envelope.Error.Message
	}

	return "", string(body)
}
