package synth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/book-expert/logger"

	"github.com/jash90/podcast-generator/internal/core"
	"github.com/jash90/podcast-generator/internal/synth/audio"
)

// Test constants.
const (
	testAPIKey    = "test-key"
	testModel     = "tts-1-hd"
	testVoice     = "onyx"
	testInputText = "Welcome to the show."
	testSpeed     = 1.25
	testRateLimit = "rate_limit_exceeded"
	testLogFile   = "synth-test.log"

	testMP3Payload = "ID3mockcompressedaudio"

	testErrCreateLogger           = "Failed to create test logger: %v"
	testErrExpectedPostRequest    = "Expected POST request, got %s"
	testErrExpectedSpeechPath     = "Expected /v1/audio/speech path, got %s"
	testErrExpectedModelsPath     = "Expected /v1/models path, got %s"
	testErrExpectedGetRequest     = "Expected GET request, got %s"
	testErrExpectedJSONContent    = "Expected application/json content type"
	testErrExpectedBearerAuth     = "Expected bearer authorization, got %q"
	testErrFailedToDecodeRequest  = "Failed to decode request: %v"
	testErrExpectedInputText      = "Expected input %q, got %q"
	testErrExpectedVoice          = "Expected voice %q, got %q"
	testErrExpectedModel          = "Expected model %q, got %q"
	testErrExpectedSpeed          = "Expected speed %v, got %v"
	testErrExpectedFormat         = "Expected response format %q, got %q"
	testErrSynthesizeFailed       = "Synthesize failed: %v"
	testErrExpectedPayload        = "Expected the mock payload back, got %d bytes"
	testErrExpectedError          = "Expected an error"
	testErrExpectedNoHTTPCall     = "Expected no HTTP call for a precondition failure"
	testErrWrongClassification    = "Wrong error classification for %v"
	testErrExpectedFatalState     = "Expected IsFatal=%v for %v"
	testErrExpectedRateLimitState = "Expected IsRateLimited=%v for %v"
	testErrHealthCheckFailed      = "HealthCheck failed: %v"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New(t.TempDir(), testLogFile)
	if err != nil {
		t.Fatalf(testErrCreateLogger, err)
	}

	return log
}

func newTestClient(t *testing.T, baseURL string) *HTTPClient {
	t.Helper()

	return NewHTTPClient(Options{
		BaseURL:        baseURL,
		APIKey:         testAPIKey,
		Model:          testModel,
		Speed:          testSpeed,
		Format:         audio.FormatMP3,
		MaxInputLength: DefaultMaxInputLength,
		Timeout:        DefaultTimeout,
	}, newTestLogger(t))
}

func TestHTTPClient_Synthesize_Success(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(responseWriter http.ResponseWriter, request *http.Request) {
				if request.Method != http.MethodPost {
					t.Errorf(testErrExpectedPostRequest, request.Method)
				}

				if request.URL.Path != apiSpeechPath {
					t.Errorf(testErrExpectedSpeechPath, request.URL.Path)
				}

				if request.Header.Get(headerContentType) != contentTypeJSON {
					t.Error(testErrExpectedJSONContent)
				}

				auth := request.Header.Get(headerAuthorization)
				if auth != bearerPrefix+testAPIKey {
					t.Errorf(testErrExpectedBearerAuth, auth)
				}

				var req speechRequest

				err := json.NewDecoder(request.Body).Decode(&req)
				if err != nil {
					t.Errorf(testErrFailedToDecodeRequest, err)
				}

				if req.Input != testInputText {
					t.Errorf(testErrExpectedInputText, testInputText, req.Input)
				}

				if req.Voice != testVoice {
					t.Errorf(testErrExpectedVoice, testVoice, req.Voice)
				}

				if req.Model != testModel {
					t.Errorf(testErrExpectedModel, testModel, req.Model)
				}

				if req.Speed != testSpeed {
					t.Errorf(testErrExpectedSpeed, testSpeed, req.Speed)
				}

				if req.ResponseFormat != string(audio.FormatMP3) {
					t.Errorf(
						testErrExpectedFormat,
						audio.FormatMP3,
						req.ResponseFormat,
					)
				}

				responseWriter.WriteHeader(http.StatusOK)
				_, _ = responseWriter.Write([]byte(testMP3Payload))
			},
		),
	)
	defer server.Close()

	client := newTestClient(t, server.URL)

	payload, err := client.Synthesize(context.Background(), core.SynthesisRequest{
		Text:  testInputText,
		Voice: testVoice,
	})
	if err != nil {
		t.Fatalf(testErrSynthesizeFailed, err)
	}

	if string(payload) != testMP3Payload {
		t.Errorf(testErrExpectedPayload, len(payload))
	}
}

func TestHTTPClient_Synthesize_PreconditionsSkipHTTP(t *testing.T) {
	called := false

	server := httptest.NewServer(
		http.HandlerFunc(
			func(responseWriter http.ResponseWriter, _ *http.Request) {
				called = true

				responseWriter.WriteHeader(http.StatusOK)
			},
		),
	)
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	_, err := client.Synthesize(ctx, core.SynthesisRequest{Text: "", Voice: testVoice})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf(testErrWrongClassification, err)
	}

	_, err = client.Synthesize(ctx, core.SynthesisRequest{Text: "   ", Voice: testVoice})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf(testErrWrongClassification, err)
	}

	_, err = client.Synthesize(ctx, core.SynthesisRequest{Text: testInputText, Voice: ""})
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf(testErrWrongClassification, err)
	}

	if called {
		t.Error(testErrExpectedNoHTTPCall)
	}
}

func TestHTTPClient_Synthesize_TextOverLimit(t *testing.T) {
	called := false

	server := httptest.NewServer(
		http.HandlerFunc(
			func(responseWriter http.ResponseWriter, _ *http.Request) {
				called = true

				responseWriter.WriteHeader(http.StatusOK)
			},
		),
	)
	defer server.Close()

	client := NewHTTPClient(Options{
		BaseURL:        server.URL,
		APIKey:         testAPIKey,
		MaxInputLength: 10,
	}, newTestLogger(t))

	_, err := client.Synthesize(context.Background(), core.SynthesisRequest{
		Text:  "elevenchars",
		Voice: testVoice,
	})

	if !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf(testErrWrongClassification, err)
	}

	if called {
		t.Error(testErrExpectedNoHTTPCall)
	}
}

func TestHTTPClient_Synthesize_ErrorClassification(t *testing.T) {
	testCases := []struct {
		name            string
		status          int
		body            string
		wantSentinel    error
		wantFatal       bool
		wantRateLimited bool
	}{
		{
			name:         "unauthorized",
			status:       http.StatusUnauthorized,
			body:         `{"error":{"message":"invalid api key"}}`,
			wantSentinel: core.ErrAuthentication,
			wantFatal:    true,
		},
		{
			name:         "forbidden",
			status:       http.StatusForbidden,
			body:         `{"error":{"message":"forbidden"}}`,
			wantSentinel: core.ErrAuthentication,
			wantFatal:    true,
		},
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body: `{"error":{"message":"slow down","code":"` +
				testRateLimit + `"}}`,
			wantSentinel:    core.ErrRateLimited,
			wantRateLimited: true,
		},
		{
			name:         "quota via 429 provider code",
			status:       http.StatusTooManyRequests,
			body:         `{"error":{"message":"quota gone","code":"insufficient_quota"}}`,
			wantSentinel: core.ErrQuotaExceeded,
			wantFatal:    true,
		},
		{
			name:         "payment required",
			status:       http.StatusPaymentRequired,
			body:         `{"error":{"message":"billing"}}`,
			wantSentinel: core.ErrQuotaExceeded,
			wantFatal:    true,
		},
		{
			name:         "bad request",
			status:       http.StatusBadRequest,
			body:         `{"error":{"message":"unknown voice"}}`,
			wantSentinel: core.ErrInvalidInput,
			wantFatal:    true,
		},
		{
			name:   "server error stays transient",
			status: http.StatusInternalServerError,
			body:   "upstream exploded",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			server := httptest.NewServer(
				http.HandlerFunc(
					func(responseWriter http.ResponseWriter, _ *http.Request) {
						responseWriter.WriteHeader(testCase.status)
						_, _ = responseWriter.Write([]byte(testCase.body))
					},
				),
			)
			defer server.Close()

			client := newTestClient(t, server.URL)

			_, err := client.Synthesize(
				context.Background(),
				core.SynthesisRequest{Text: testInputText, Voice: testVoice},
			)
			if err == nil {
				t.Fatal(testErrExpectedError)
			}

			if testCase.wantSentinel != nil &&
				!errors.Is(err, testCase.wantSentinel) {
				t.Errorf(testErrWrongClassification, err)
			}

			if core.IsFatal(err) != testCase.wantFatal {
				t.Errorf(testErrExpectedFatalState, testCase.wantFatal, err)
			}

			if core.IsRateLimited(err) != testCase.wantRateLimited {
				t.Errorf(
					testErrExpectedRateLimitState,
					testCase.wantRateLimited,
					err,
				)
			}
		})
	}
}

func TestHTTPClient_Synthesize_EmptyPayload(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(responseWriter http.ResponseWriter, _ *http.Request) {
				responseWriter.WriteHeader(http.StatusOK)
			},
		),
	)
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Synthesize(context.Background(), core.SynthesisRequest{
		Text:  testInputText,
		Voice: testVoice,
	})

	if !errors.Is(err, core.ErrEmptyPayload) {
		t.Errorf(testErrWrongClassification, err)
	}

	if core.IsFatal(err) {
		t.Errorf(testErrExpectedFatalState, false, err)
	}
}

func TestHTTPClient_Synthesize_FormatMismatchIsNotFatal(t *testing.T) {
	wavPayload := audio.Silence(audio.FormatWAV, 64)

	server := httptest.NewServer(
		http.HandlerFunc(
			func(responseWriter http.ResponseWriter, _ *http.Request) {
				responseWriter.WriteHeader(http.StatusOK)
				_, _ = responseWriter.Write(wavPayload)
			},
		),
	)
	defer server.Close()

	client := newTestClient(t, server.URL)

	payload, err := client.Synthesize(context.Background(), core.SynthesisRequest{
		Text:  testInputText,
		Voice: testVoice,
	})
	if err != nil {
		t.Fatalf(testErrSynthesizeFailed, err)
	}

	if len(payload) != len(wavPayload) {
		t.Errorf(testErrExpectedPayload, len(payload))
	}
}

func TestHTTPClient_HealthCheck_Success(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(responseWriter http.ResponseWriter, request *http.Request) {
				if request.Method != http.MethodGet {
					t.Errorf(testErrExpectedGetRequest, request.Method)
				}

				if request.URL.Path != apiModelsPath {
					t.Errorf(testErrExpectedModelsPath, request.URL.Path)
				}

				auth := request.Header.Get(headerAuthorization)
				if auth != bearerPrefix+testAPIKey {
					t.Errorf(testErrExpectedBearerAuth, auth)
				}

				responseWriter.WriteHeader(http.StatusOK)
				_, _ = responseWriter.Write([]byte(`{"data":[]}`))
			},
		),
	)
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.HealthCheck(context.Background())
	if err != nil {
		t.Fatalf(testErrHealthCheckFailed, err)
	}
}

func TestHTTPClient_HealthCheck_BadKey(t *testing.T) {
	server := httptest.NewServer(
		http.HandlerFunc(
			func(responseWriter http.ResponseWriter, _ *http.Request) {
				responseWriter.WriteHeader(http.StatusUnauthorized)
				_, _ = responseWriter.Write(
					[]byte(`{"error":{"message":"invalid api key"}}`),
				)
			},
		),
	)
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.HealthCheck(context.Background())

	if !errors.Is(err, core.ErrAuthentication) {
		t.Errorf(testErrWrongClassification, err)
	}
}
