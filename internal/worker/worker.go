// Package worker provides the NATS worker that turns submitted podcast scripts
// into delivered audio assets.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/jash90/podcast-generator/internal/assetutil"
	"github.com/jash90/podcast-generator/internal/core"
	"github.com/jash90/podcast-generator/internal/pipeline"
)

// handleMessageTimeout bounds one full script synthesis, including every
// per-segment retry.
const handleMessageTimeout = 10 * time.Minute

// Error and log message formats.
const (
	errFmtSubscribe    = "failed to subscribe to subject %s: %w"
	errFmtDrain        = "failed to drain subscription: %w"
	errFmtUnmarshal    = "failed to unmarshal event: %w"
	errFmtDownload     = "failed to download script for key '%s': %w"
	errFmtParse        = "failed to parse script for key '%s': %w"
	errFmtProduce      = "failed to produce asset: %w"
	errFmtUpload       = "failed to upload asset '%s': %w"
	errFmtMarshalReply = "failed to marshal reply event: %w"
	errFmtPublishReply = "failed to publish reply event: %w"

	logFmtBadEvent    = "Failed to parse and validate event: %v"
	logFmtJobFailed   = "Failed to synthesize podcast for workflow %s: %v"
	logFmtReplyFailed = "Failed to publish reply event for workflow %s: %v"
	logFmtJobDone     = "Synthesized podcast for workflow %s: %s (%d segments, %d placeholders)"
)

// ErrScriptKeyEmpty indicates that the submitted event carries no script key.
var ErrScriptKeyEmpty = errors.New("script key cannot be empty")

// AssetStore is the subset of the object store the worker needs for delivering
// assembled assets.
type AssetStore interface {
	UploadAsset(ctx context.Context, asset *core.Asset) (string, error)
}

// NatsWorker listens for submitted scripts on a NATS subject and replies with
// the created asset's location.
type NatsWorker struct {
	natsConnection *nats.Conn
	subject        string
	scripts        core.ObjectStore
	assets         AssetStore
	producer       core.AssetProducer
	log            *logger.Logger
}

// NewNatsWorker creates a new instance of a NATS worker.
func NewNatsWorker(
	natsConnection *nats.Conn,
	subject string,
	scripts core.ObjectStore,
	assets AssetStore,
	producer core.AssetProducer,
	log *logger.Logger,
) (*NatsWorker, error) {
	return &NatsWorker{
		natsConnection: natsConnection,
		subject:        subject,
		scripts:        scripts,
		assets:         assets,
		producer:       producer,
		log:            log,
	}, nil
}

// Run starts the worker and begins listening for messages.
func (w *NatsWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf(errFmtSubscribe, w.subject, err)
	}

	<-ctx.Done()

	drainErr := sub.Drain()
	if drainErr != nil {
		return fmt.Errorf(errFmtDrain, drainErr)
	}

	return nil
}

func (w *NatsWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	event, err := w.parseAndValidateEvent(msg)
	if err != nil {
		w.log.Error(logFmtBadEvent, err)

		return
	}

	reply, processErr := w.processScriptJob(ctx, event)
	if processErr != nil {
		w.log.Error(logFmtJobFailed, event.Header.WorkflowID, processErr)

		return
	}

	err = w.publishReplyEvent(msg, reply)
	if err != nil {
		w.log.Error(logFmtReplyFailed, event.Header.WorkflowID, err)
	}
}

// processScriptJob handles the core logic of downloading the script, running
// the synthesis pipeline, and uploading the assembled asset.
func (w *NatsWorker) processScriptJob(
	ctx context.Context,
	event *core.PodcastScriptSubmittedEvent,
) (*core.PodcastAssetCreatedEvent, error) {
	scriptData, err := w.scripts.Download(ctx, event.ScriptKey)
	if err != nil {
		return nil, fmt.Errorf(errFmtDownload, event.ScriptKey, err)
	}

	script, err := pipeline.ParseScript(scriptData)
	if err != nil {
		return nil, fmt.Errorf(errFmtParse, event.ScriptKey, err)
	}

	asset, err := w.producer.Produce(ctx, script)
	if err != nil {
		return nil, fmt.Errorf(errFmtProduce, err)
	}

	audioKey, err := w.assets.UploadAsset(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf(errFmtUpload, asset.Name, err)
	}

	failed := make([]int, 0, len(asset.Failures))
	for _, failure := range asset.Failures {
		failed = append(failed, failure.Index)
	}

	w.log.Info(
		logFmtJobDone,
		event.Header.WorkflowID, audioKey, len(script.Segments), len(failed),
	)

	return &core.PodcastAssetCreatedEvent{
		Header:         event.Header,
		AudioKey:       audioKey,
		Format:         assetutil.GetFileExtension(audioKey),
		SegmentCount:   len(script.Segments),
		FailedSegments: failed,
	}, nil
}

// publishReplyEvent marshals and responds with the PodcastAssetCreatedEvent.
func (w *NatsWorker) publishReplyEvent(
	msg *nats.Msg,
	replyEvent *core.PodcastAssetCreatedEvent,
) error {
	replyData, err := json.Marshal(replyEvent)
	if err != nil {
		return fmt.Errorf(errFmtMarshalReply, err)
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf(errFmtPublishReply, err)
	}

	return nil
}

func (w *NatsWorker) parseAndValidateEvent(
	msg *nats.Msg,
) (*core.PodcastScriptSubmittedEvent, error) {
	var event core.PodcastScriptSubmittedEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		return nil, fmt.Errorf(errFmtUnmarshal, err)
	}

	if event.ScriptKey == "" {
		return nil, ErrScriptKeyEmpty
	}

	return &event, nil
}
