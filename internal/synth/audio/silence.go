package audio

import "encoding/binary"

// Placeholder audio parameters. The placeholder stands in for a segment whose
// synthesis failed, so it only needs to be decodable, not pleasant: mono
// 16-bit PCM at the provider's default rate.
const (
	placeholderSampleRate = 24000
	placeholderChannels   = 1
	placeholderBitDepth   = 16

	wavHeaderSize   = 44
	wavFmtChunkSize = 16
	wavPCMFormat    = 1
	bitsPerByte     = 8
)

// Silence returns a placeholder buffer of exactly size bytes. For FormatWAV the
// buffer carries a valid RIFF header followed by zeroed PCM samples, so players
// decode it as digital silence. For other formats, or sizes too small to hold a
// WAV header, the buffer is plain zero fill: it keeps segment alignment in the
// combined output even though a strict decoder may skip it.
func Silence(format Format, size int) []byte {
	if size <= 0 {
		return []byte{}
	}

	buffer := make([]byte, size)
	if format != FormatWAV || size < wavHeaderSize {
		return buffer
	}

	writeWAVHeader(buffer, size-wavHeaderSize)

	return buffer
}

func writeWAVHeader(buffer []byte, dataLen int) {
	const riffOverhead = wavHeaderSize - 8

	bytesPerSample := placeholderBitDepth / bitsPerByte
	byteRate := placeholderSampleRate * placeholderChannels * bytesPerSample
	blockAlign := placeholderChannels * bytesPerSample

	copy(buffer[0:4], riffMagic)
	binary.LittleEndian.PutUint32(buffer[4:8], uint32(riffOverhead+dataLen))
	copy(buffer[8:12], waveMagic)
	copy(buffer[12:16], []byte("fmt "))
	binary.LittleEndian.PutUint32(buffer[16:20], wavFmtChunkSize)
	binary.LittleEndian.PutUint16(buffer[20:22], wavPCMFormat)
	binary.LittleEndian.PutUint16(buffer[22:24], placeholderChannels)
	binary.LittleEndian.PutUint32(buffer[24:28], placeholderSampleRate)
	binary.LittleEndian.PutUint32(buffer[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buffer[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buffer[34:36], placeholderBitDepth)
	copy(buffer[36:40], []byte("data"))
	binary.LittleEndian.PutUint32(buffer[40:44], uint32(dataLen))
}
