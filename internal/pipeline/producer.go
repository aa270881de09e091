package pipeline

import (
	"context"

	"github.com/book-expert/logger"

	"github.com/jash90/podcast-generator/internal/core"
)

// Producer runs the synthesis pipeline behind the core.AssetProducer interface,
// creating a fresh Session per script so no voice assignment or cached audio
// leaks between scripts. It is the worker's entry point into the pipeline.
type Producer struct {
	synthesizer core.SpeechSynthesizer
	opts        Options
	log         *logger.Logger
}

// NewProducer creates a Producer that will hand every script its own Session.
func NewProducer(
	synthesizer core.SpeechSynthesizer,
	opts Options,
	log *logger.Logger,
) *Producer {
	return &Producer{
		synthesizer: synthesizer,
		opts:        opts,
		log:         log,
	}
}

// Produce synthesizes the script into a deliverable asset.
func (p *Producer) Produce(ctx context.Context, script *core.Script) (*core.Asset, error) {
	session := NewSession(p.synthesizer, p.opts, p.log)

	return session.DownloadAndAssemble(ctx, script)
}
