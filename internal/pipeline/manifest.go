package pipeline

import (
	"fmt"
	"strings"

	"github.com/jash90/podcast-generator/internal/core"
)

// Report section headers and messages.
const (
	reportHeaderManifest = "=== Synthesis Manifest ==="
	reportHeaderSummary  = "=== Summary ==="
	reportFailedSegments = "❌ Segments replaced by silence:"
)

// Summary format strings.
const (
	summaryTotalSegments = "Total segments: %d\n"
	summarySynthesized   = "Synthesized: %d\n"
	summaryCacheHits     = "Cache hits: %d\n"
	summaryPlaceholders  = "Placeholders: %d\n"
)

// List item format.
const (
	listItemFormat    = "  - %s\n"
	failureItemFormat = "segment %d (%s): %s"
)

// Manifest records what actually happened to each segment of a run. One
// segment's failure never fails the whole pipeline; it lands here and the
// segment is replaced by silence so the deliverable keeps its alignment.
type Manifest struct {
	TotalSegments int
	CacheHits     int
	Failures      []core.SegmentFailure
}

func newManifest(totalSegments int) *Manifest {
	return &Manifest{
		TotalSegments: totalSegments,
		CacheHits:     0,
		Failures:      nil,
	}
}

func (m *Manifest) recordFailure(index int, role core.Role, reason string) {
	m.Failures = append(m.Failures, core.SegmentFailure{
		Index:  index,
		Role:   role,
		Reason: reason,
	})
}

// Clean reports whether every segment was synthesized without a placeholder.
func (m *Manifest) Clean() bool {
	return len(m.Failures) == 0
}

// Render produces a formatted report of the run.
func (m *Manifest) Render() string {
	var builder strings.Builder

	builder.WriteString(reportHeaderManifest + "\n\n")

	if len(m.Failures) > 0 {
		builder.WriteString(reportFailedSegments + "\n")

		for _, failure := range m.Failures {
			item := fmt.Sprintf(
				failureItemFormat, failure.Index, failure.Role, failure.Reason,
			)
			builder.WriteString(fmt.Sprintf(listItemFormat, item))
		}

		builder.WriteString("\n")
	}

	builder.WriteString(reportHeaderSummary + "\n")
	builder.WriteString(fmt.Sprintf(summaryTotalSegments, m.TotalSegments))
	builder.WriteString(
		fmt.Sprintf(summarySynthesized, m.TotalSegments-len(m.Failures)),
	)
	builder.WriteString(fmt.Sprintf(summaryCacheHits, m.CacheHits))
	builder.WriteString(fmt.Sprintf(summaryPlaceholders, len(m.Failures)))

	return builder.String()
}
