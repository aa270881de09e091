// Package pipeline drives the end-to-end synthesis of a podcast script into one
// deliverable audio asset: voice assignment, per-segment synthesis with caching
// and retry, silence placeholders for failed segments, ordered assembly, and
// progress reporting.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/book-expert/logger"

	"github.com/jash90/podcast-generator/internal/assetutil"
	"github.com/jash90/podcast-generator/internal/cache"
	"github.com/jash90/podcast-generator/internal/core"
	"github.com/jash90/podcast-generator/internal/synth"
	"github.com/jash90/podcast-generator/internal/synth/audio"
	"github.com/jash90/podcast-generator/internal/synth/text"
	"github.com/jash90/podcast-generator/internal/voice"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultPlaceholderSize = 4096
	DefaultPreloadPacing   = 500 * time.Millisecond

	assetNamePrefix = "podcast"
	percentScale    = 100.0
)

// Error and log message formats.
const (
	errFmtAssignVoice    = "failed to assign voice for role %q: %w"
	errFmtHealthCheck    = "provider health check failed: %w"
	errFmtSegmentFatal   = "segment %d aborted the pipeline: %w"
	errFmtCanceled       = "synthesis canceled at segment %d: %w"
	errFmtBadSegmentRole = "%w: unknown speaker role %q"
	errFmtBadSegmentText = "%w: segment text is empty"

	labelFmtChunk = "%s chunk %d/%d"

	logFmtSegmentFailed = "Segment %d (%s) failed, substituting silence: %v"
	logFmtCacheHit      = "Cache hit for segment %d (%s)"
	logFmtPreloadFailed = "Preload for segment %d failed: %v"
	logFmtRunFailed     = "Pipeline failed: %v"
	logFmtRunComplete   = "Assembled %d segments into %s (%d bytes, %d placeholders)"
)

// Operation labels reported with progress snapshots.
const (
	opInitializing = "initializing"
	opFmtSegment   = "synthesizing segment %d/%d"
	opCombining    = "combining segments"
	opEncoding     = "encoding asset"
	opDelivering   = "delivering asset"
	opComplete     = "complete"
	opFailed       = "failed"
)

// State identifies one phase of a session's lifecycle.
type State string

// Session lifecycle states.
const (
	StateIdle         State = "idle"
	StateInitializing State = "initializing"
	StateSynthesizing State = "synthesizing"
	StateCombining    State = "combining"
	StateEncoding     State = "encoding"
	StateDelivering   State = "delivering"
	StateComplete     State = "complete"
	StateFailed       State = "failed"
)

// Options configures a Session. Zero fields fall back to the defaults above and
// to the synth package's retry budgets.
type Options struct {
	ModelID         string
	Format          audio.Format
	MaxInputLength  int
	PlaceholderSize int
	PreloadPacing   time.Duration
	RetryPolicy     synth.RetryPolicy
	PreloadPolicy   synth.RetryPolicy
	GenderMap       map[core.Role]core.Gender
}

// Session owns the per-script pipeline state. The voice assignments and the
// segment cache live exactly as long as the script they were built for: a new
// script gets a new session, so nothing bleeds between topics.
type Session struct {
	synthesizer core.SpeechSynthesizer
	opts        Options
	normalizer  *text.Normalizer
	assigner    *voice.Assigner
	segments    *cache.SegmentCache
	log         *logger.Logger

	mu          sync.Mutex
	state       State
	onProgress  core.ProgressFunc
	lastOverall float64
	manifest    *Manifest
}

// NewSession constructs a session for one script run.
func NewSession(
	synthesizer core.SpeechSynthesizer,
	opts Options,
	log *logger.Logger,
) *Session {
	if opts.ModelID == "" {
		opts.ModelID = synth.DefaultModel
	}

	if opts.Format == audio.FormatUnknown {
		opts.Format = audio.FormatMP3
	}

	if opts.MaxInputLength <= 0 {
		opts.MaxInputLength = synth.DefaultMaxInputLength
	}

	if opts.PlaceholderSize <= 0 {
		opts.PlaceholderSize = DefaultPlaceholderSize
	}

	if opts.PreloadPacing <= 0 {
		opts.PreloadPacing = DefaultPreloadPacing
	}

	if opts.RetryPolicy == (synth.RetryPolicy{}) {
		opts.RetryPolicy = synth.DefaultPolicy()
	}

	if opts.PreloadPolicy == (synth.RetryPolicy{}) {
		opts.PreloadPolicy = synth.PreloadPolicy()
	}

	if opts.GenderMap == nil {
		opts.GenderMap = voice.DefaultGenderMap()
	}

	return &Session{
		synthesizer: synthesizer,
		opts:        opts,
		normalizer:  text.NewNormalizer(),
		assigner:    voice.NewAssigner(),
		segments:    cache.New(log),
		log:         log,
		mu:          sync.Mutex{},
		state:       StateIdle,
		onProgress:  nil,
		lastOverall: 0,
		manifest:    newManifest(0),
	}
}

// Subscribe registers the callback that receives a progress snapshot on every
// state transition. Passing nil unsubscribes.
func (s *Session) Subscribe(onProgress core.ProgressFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onProgress = onProgress
}

// State returns the session's current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Manifest returns a snapshot of the current run's manifest.
func (s *Session) Manifest() Manifest {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := *s.manifest
	snapshot.Failures = append([]core.SegmentFailure(nil), s.manifest.Failures...)

	return snapshot
}

// Voices returns the role-to-voice assignments made so far.
func (s *Session) Voices() map[core.Role]string {
	return s.assigner.Assigned()
}

// ClearCache drops all cached segment audio, for script regeneration.
func (s *Session) ClearCache() {
	s.segments.Clear()
}

// CacheStats reports the segment cache size.
func (s *Session) CacheStats() cache.Stats {
	return s.segments.Stats()
}

// PrepareVoices validates the script and assigns a voice to every role in it.
// Assignment is idempotent, so preview playback and a later full download see
// the same voices.
func (s *Session) PrepareVoices(script *core.Script) error {
	err := script.Validate()
	if err != nil {
		return err
	}

	return s.assignVoices(script)
}

// GetAudioForSegment returns the audio for one segment, serving from the cache
// when possible. This is the preview path: failures surface to the caller
// instead of becoming placeholders.
func (s *Session) GetAudioForSegment(
	ctx context.Context,
	segment core.Segment,
) ([]byte, error) {
	if !segment.Role.Valid() {
		return nil, fmt.Errorf(errFmtBadSegmentRole, core.ErrInvalidInput, segment.Role)
	}

	if strings.TrimSpace(segment.Text) == "" {
		return nil, fmt.Errorf(errFmtBadSegmentText, core.ErrInvalidInput)
	}

	payload, _, err := s.segmentAudio(ctx, segment, s.opts.RetryPolicy)

	return payload, err
}

// DownloadAndAssemble runs the full pipeline and returns the assembled asset.
// One segment's exhausted retries become a fixed-size silence placeholder and a
// manifest entry; only precondition violations and fatal-class provider errors
// (authentication, quota, invalid input) abort the run.
func (s *Session) DownloadAndAssemble(
	ctx context.Context,
	script *core.Script,
) (*core.Asset, error) {
	total := 0
	if script != nil {
		total = len(script.Segments)
	}

	err := script.Validate()
	if err != nil {
		s.fail(0, total, err)

		return nil, err
	}

	s.mu.Lock()
	s.manifest = newManifest(total)
	s.lastOverall = 0
	s.mu.Unlock()

	s.transition(StateInitializing, core.PipelineProgress{
		SegmentIndex:   0,
		TotalSegments:  total,
		SegmentPercent: 0,
		OverallPercent: 0,
		Operation:      opInitializing,
	})

	err = s.assignVoices(script)
	if err != nil {
		s.fail(0, total, err)

		return nil, err
	}

	err = s.synthesizer.HealthCheck(ctx)
	if err != nil {
		err = fmt.Errorf(errFmtHealthCheck, err)
		s.fail(0, total, err)

		return nil, err
	}

	buffers, failedAt, err := s.synthesizeAll(ctx, script)
	if err != nil {
		s.fail(failedAt, total, err)

		return nil, err
	}

	s.transition(StateCombining, tailProgress(total, opCombining))
	combined := audio.Combine(buffers)

	s.transition(StateEncoding, tailProgress(total, opEncoding))

	asset := &core.Asset{
		Name:     assetutil.AssetFileName(assetNamePrefix, string(s.opts.Format)),
		MIME:     s.opts.Format.MIME(),
		Data:     combined,
		Failures: s.Manifest().Failures,
	}

	s.transition(StateDelivering, tailProgress(total, opDelivering))

	s.log.Info(logFmtRunComplete, total, asset.Name, len(asset.Data), len(asset.Failures))

	s.transition(StateComplete, core.PipelineProgress{
		SegmentIndex:   total,
		TotalSegments:  total,
		SegmentPercent: percentScale,
		OverallPercent: percentScale,
		Operation:      opComplete,
	})

	return asset, nil
}

// Preload warms the segment cache so interactive playback hits it. Requests run
// on their own goroutines, staggered by the pacing delay to stay under the
// provider's rate limit, with the lighter retry budget. Failures are logged and
// otherwise ignored; the on-demand path retries them with the full budget.
func (s *Session) Preload(ctx context.Context, script *core.Script) error {
	err := script.Validate()
	if err != nil {
		return err
	}

	err = s.assignVoices(script)
	if err != nil {
		return err
	}

	var waitGroup sync.WaitGroup

	for segmentIndex, segment := range script.Segments {
		waitGroup.Add(1)

		go func(index int, segment core.Segment) {
			defer waitGroup.Done()

			delay := time.Duration(index) * s.opts.PreloadPacing
			if delay > 0 {
				waitErr := waitFor(ctx, delay)
				if waitErr != nil {
					return
				}
			}

			_, _, segmentErr := s.segmentAudio(ctx, segment, s.opts.PreloadPolicy)
			if segmentErr != nil {
				s.log.Warn(logFmtPreloadFailed, index, segmentErr)
			}
		}(segmentIndex, segment)
	}

	waitGroup.Wait()

	return nil
}

// synthesizeAll walks the segments in order, producing one audio buffer per
// segment. It returns the index of the failing segment alongside any error that
// must abort the run.
func (s *Session) synthesizeAll(
	ctx context.Context,
	script *core.Script,
) ([][]byte, int, error) {
	total := len(script.Segments)
	buffers := make([][]byte, 0, total)

	for segmentIndex, segment := range script.Segments {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return nil, segmentIndex, fmt.Errorf(errFmtCanceled, segmentIndex, ctxErr)
		}

		operation := fmt.Sprintf(opFmtSegment, segmentIndex+1, total)

		s.transition(StateSynthesizing, core.PipelineProgress{
			SegmentIndex:   segmentIndex,
			TotalSegments:  total,
			SegmentPercent: 0,
			OverallPercent: overallPercent(segmentIndex, total),
			Operation:      operation,
		})

		payload, fromCache, err := s.segmentAudio(ctx, segment, s.opts.RetryPolicy)

		switch {
		case err == nil:
			if fromCache {
				s.bumpCacheHits()
				s.log.Info(logFmtCacheHit, segmentIndex, segment.Role)
			}

			buffers = append(buffers, payload)
		case core.IsFatal(err):
			return nil, segmentIndex, fmt.Errorf(errFmtSegmentFatal, segmentIndex, err)
		case errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			return nil, segmentIndex, fmt.Errorf(errFmtCanceled, segmentIndex, err)
		default:
			s.log.Error(logFmtSegmentFailed, segmentIndex, segment.Role, err)
			s.recordPlaceholder(segmentIndex, segment.Role, err)
			buffers = append(
				buffers,
				audio.Silence(s.opts.Format, s.opts.PlaceholderSize),
			)
		}

		s.transition(StateSynthesizing, core.PipelineProgress{
			SegmentIndex:   segmentIndex,
			TotalSegments:  total,
			SegmentPercent: percentScale,
			OverallPercent: overallPercent(segmentIndex+1, total),
			Operation:      operation,
		})
	}

	return buffers, total, nil
}

// segmentAudio produces the audio for one segment: cache lookup, then
// normalize, chunk, synthesize every chunk through the retrying invoker,
// combine, and cache. The bool reports a cache hit.
func (s *Session) segmentAudio(
	ctx context.Context,
	segment core.Segment,
	policy synth.RetryPolicy,
) ([]byte, bool, error) {
	key := cache.Key(segment.Role, segment.Text, s.opts.ModelID)

	payload, hit := s.segments.Get(key)
	if hit {
		return payload, true, nil
	}

	voiceID, err := s.segmentVoice(segment)
	if err != nil {
		return nil, false, err
	}

	normalized := s.normalizer.Normalize(segment.Text)
	chunks := text.Split(normalized, s.opts.MaxInputLength)
	pieces := make([][]byte, 0, len(chunks))

	for chunkIndex, chunk := range chunks {
		label := fmt.Sprintf(labelFmtChunk, segment.Role, chunkIndex+1, len(chunks))

		piece, _, invokeErr := synth.Invoke(
			ctx, s.log, label, policy,
			func(ctx context.Context) ([]byte, error) {
				return s.synthesizer.Synthesize(ctx, core.SynthesisRequest{
					Text:  chunk,
					Voice: voiceID,
				})
			},
		)
		if invokeErr != nil {
			return nil, false, invokeErr
		}

		pieces = append(pieces, piece)
	}

	combined := audio.Combine(pieces)
	s.segments.Put(key, combined)

	return combined, false, nil
}

func (s *Session) assignVoices(script *core.Script) error {
	for _, role := range script.Roles() {
		persona, ok := script.Persona(role)
		if ok {
			_, err := s.assigner.AssignWithPersona(role, persona)
			if err != nil {
				return fmt.Errorf(errFmtAssignVoice, role, err)
			}

			continue
		}

		_, err := s.assigner.AssignByGender(role, s.genderFor(role))
		if err != nil {
			return fmt.Errorf(errFmtAssignVoice, role, err)
		}
	}

	return nil
}

// segmentVoice resolves the voice for a lone segment. Roles already assigned
// keep their voice; unseen roles fall back to the gender rotation.
func (s *Session) segmentVoice(segment core.Segment) (string, error) {
	voiceID, err := s.assigner.AssignByGender(segment.Role, s.genderFor(segment.Role))
	if err != nil {
		return "", fmt.Errorf(errFmtAssignVoice, segment.Role, err)
	}

	return voiceID, nil
}

func (s *Session) genderFor(role core.Role) core.Gender {
	gender, ok := s.opts.GenderMap[role]
	if !ok {
		gender = core.GenderMale
	}

	return gender
}

func (s *Session) bumpCacheHits() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.manifest.CacheHits++
}

func (s *Session) recordPlaceholder(index int, role core.Role, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.manifest.recordFailure(index, role, err.Error())
}

func (s *Session) fail(index, total int, err error) {
	s.log.Error(logFmtRunFailed, err)

	s.transition(StateFailed, core.PipelineProgress{
		SegmentIndex:   index,
		TotalSegments:  total,
		SegmentPercent: 0,
		OverallPercent: 0,
		Operation:      opFailed,
	})
}

// transition records the new state and emits a progress snapshot. Reported
// overall progress never decreases across transitions.
func (s *Session) transition(state State, progress core.PipelineProgress) {
	s.mu.Lock()

	s.state = state

	if progress.OverallPercent < s.lastOverall {
		progress.OverallPercent = s.lastOverall
	} else {
		s.lastOverall = progress.OverallPercent
	}

	onProgress := s.onProgress
	s.mu.Unlock()

	if onProgress != nil {
		onProgress(progress)
	}
}

// waitFor sleeps for the pacing delay, returning early if the context ends.
func waitFor(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("pacing delay interrupted: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func overallPercent(completed, total int) float64 {
	if total == 0 {
		return percentScale
	}

	return float64(completed) / float64(total) * percentScale
}

func tailProgress(total int, operation string) core.PipelineProgress {
	return core.PipelineProgress{
		SegmentIndex:   total,
		TotalSegments:  total,
		SegmentPercent: percentScale,
		OverallPercent: percentScale,
		Operation:      operation,
	}
}
