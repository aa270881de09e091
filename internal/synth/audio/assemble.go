// Package audio provides binary buffer assembly, silence placeholder generation,
// and payload format inspection for the synthesis pipeline.
package audio

// Combine concatenates ordered audio buffers into a single buffer whose length is
// the sum of the input lengths. Zero inputs yield an empty buffer. The result is
// always freshly allocated, never an alias of an input.
func Combine(buffers [][]byte) []byte {
	total := 0
	for _, buffer := range buffers {
		total += len(buffer)
	}

	combined := make([]byte, 0, total)
	for _, buffer := range buffers {
		combined = append(combined, buffer...)
	}

	return combined
}
