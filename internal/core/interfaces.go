package core

import "context"

// ObjectStore defines the interface for interacting with a key-value blob store.
// Scripts are downloaded from it and finished assets are uploaded to it.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}

// SynthesisRequest describes one chunk-level call to the speech provider.
type SynthesisRequest struct {
	Text  string
	Voice string
}

// SpeechSynthesizer defines the interface for a remote text-to-speech provider:
// one request/response cycle per chunk, plus a liveness probe.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error)
	HealthCheck(ctx context.Context) error
}

// AssetProducer runs the full synthesis pipeline for one script and returns the
// deliverable asset. Implementations own any per-script state (voice assignments,
// segment cache) and must not leak it between scripts.
type AssetProducer interface {
	Produce(ctx context.Context, script *Script) (*Asset, error)
}
