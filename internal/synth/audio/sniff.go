package audio

import "bytes"

// Format identifies an audio container format requested from or returned by the
// synthesis provider.
type Format string

const (
	FormatMP3  Format = "mp3"
	FormatWAV  Format = "wav"
	FormatOpus Format = "opus"
	FormatAAC  Format = "aac"
	FormatFLAC Format = "flac"

	// FormatUnknown is returned by DetectFormat when the payload's leading
	// bytes match no known container signature.
	FormatUnknown Format = ""
)

const (
	mimeMP3     = "audio/mpeg"
	mimeWAV     = "audio/wav"
	mimeOpus    = "audio/ogg"
	mimeAAC     = "audio/aac"
	mimeFLAC    = "audio/flac"
	mimeDefault = "application/octet-stream"
)

const (
	riffHeaderLen = 12
	mp3SyncByte   = 0xFF
	mp3SyncMask   = 0xE0
)

var (
	riffMagic = []byte("RIFF")
	waveMagic = []byte("WAVE")
	id3Magic  = []byte("ID3")
	flacMagic = []byte("fLaC")
	oggMagic  = []byte("OggS")
)

// Valid reports whether the format is one the provider can deliver.
func (f Format) Valid() bool {
	switch f {
	case FormatMP3, FormatWAV, FormatOpus, FormatAAC, FormatFLAC:
		return true
	case FormatUnknown:
		return false
	}

	return false
}

// MIME returns the media type for the format, falling back to a generic binary
// type for unrecognized values.
func (f Format) MIME() string {
	switch f {
	case FormatMP3:
		return mimeMP3
	case FormatWAV:
		return mimeWAV
	case FormatOpus:
		return mimeOpus
	case FormatAAC:
		return mimeAAC
	case FormatFLAC:
		return mimeFLAC
	case FormatUnknown:
		return mimeDefault
	}

	return mimeDefault
}

// DetectFormat inspects the payload's leading bytes and returns the container
// format they indicate, or FormatUnknown when no signature matches. Detection is
// best effort: a provider may legitimately return a raw stream without a
// recognizable header, so callers should treat a mismatch as a warning rather
// than an error.
func DetectFormat(payload []byte) Format {
	if len(payload) >= riffHeaderLen &&
		bytes.HasPrefix(payload, riffMagic) &&
		bytes.Equal(payload[8:riffHeaderLen], waveMagic) {
		return FormatWAV
	}

	if bytes.HasPrefix(payload, id3Magic) {
		return FormatMP3
	}

	if len(payload) >= 2 && payload[0] == mp3SyncByte && payload[1]&mp3SyncMask == mp3SyncMask {
		return FormatMP3
	}

	if bytes.HasPrefix(payload, flacMagic) {
		return FormatFLAC
	}

	if bytes.HasPrefix(payload, oggMagic) {
		return FormatOpus
	}

	return FormatUnknown
}

// MatchesRequested reports whether the payload plausibly carries the requested
// format. Payloads with no detectable signature pass, since detection cannot
// rule them out.
func MatchesRequested(payload []byte, requested Format) bool {
	detected := DetectFormat(payload)
	if detected == FormatUnknown {
		return true
	}

	return detected == requested
}
