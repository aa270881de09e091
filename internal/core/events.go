package core

import "github.com/book-expert/events"

// PodcastScriptSubmittedEvent announces that a script JSON document is waiting in
// the object store and should be synthesized into an audio asset.
type PodcastScriptSubmittedEvent struct {
	Header    events.EventHeader `json:"header"`
	ScriptKey string             `json:"script_key"`
}

// PodcastAssetCreatedEvent is the reply published after a script has been
// synthesized and the assembled asset uploaded to the object store.
type PodcastAssetCreatedEvent struct {
	Header         events.EventHeader `json:"header"`
	AudioKey       string             `json:"audio_key"`
	Format         string             `json:"format"`
	SegmentCount   int                `json:"segment_count"`
	FailedSegments []int              `json:"failed_segments,omitempty"`
}
