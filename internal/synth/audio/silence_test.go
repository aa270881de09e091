package audio_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jash90/podcast-generator/internal/synth/audio"
)

func TestSilence_ExactSize(t *testing.T) {
	t.Parallel()

	for _, size := range []int{1, 44, 100, 4096} {
		assert.Len(t, audio.Silence(audio.FormatWAV, size), size)
		assert.Len(t, audio.Silence(audio.FormatMP3, size), size)
	}
}

func TestSilence_WAVHeader(t *testing.T) {
	t.Parallel()

	const size = 100

	buffer := audio.Silence(audio.FormatWAV, size)

	require.Len(t, buffer, size)
	assert.Equal(t, []byte("RIFF"), buffer[0:4])
	assert.Equal(t, []byte("WAVE"), buffer[8:12])
	assert.Equal(t, []byte("data"), buffer[36:40])

	const headerSize = 44

	dataLen := binary.LittleEndian.Uint32(buffer[40:44])
	assert.Equal(t, uint32(size-headerSize), dataLen)

	chunkSize := binary.LittleEndian.Uint32(buffer[4:8])
	assert.Equal(t, uint32(size-8), chunkSize)

	for i := headerSize; i < size; i++ {
		require.Zero(t, buffer[i], "sample bytes must be silence")
	}
}

func TestSilence_NonWAVIsZeroFill(t *testing.T) {
	t.Parallel()

	buffer := audio.Silence(audio.FormatMP3, 64)

	require.Len(t, buffer, 64)

	for _, b := range buffer {
		require.Zero(t, b)
	}
}

func TestSilence_TooSmallForHeader(t *testing.T) {
	t.Parallel()

	buffer := audio.Silence(audio.FormatWAV, 10)

	require.Len(t, buffer, 10)

	for _, b := range buffer {
		require.Zero(t, b)
	}
}

func TestSilence_NonPositiveSize(t *testing.T) {
	t.Parallel()

	assert.Empty(t, audio.Silence(audio.FormatWAV, 0))
	assert.Empty(t, audio.Silence(audio.FormatWAV, -5))
}
