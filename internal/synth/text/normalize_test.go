// Package text_test tests dialogue normalization and chunking.
package text_test

import (
	"testing"

	"github.com/jash90/podcast-generator/internal/synth/text"
)

// normalizerTestCase defines a standard test case for the normalizer.
type normalizerTestCase struct {
	name     string
	input    string
	expected string
}

// runNormalizerTests runs table-driven tests against a shared normalizer.
func runNormalizerTests(t *testing.T, tests []normalizerTestCase) {
	t.Helper()

	normalizer := text.NewNormalizer()

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			result := normalizer.Normalize(testCase.input)
			if result != testCase.expected {
				t.Errorf("Expected %q, got %q", testCase.expected, result)
			}
		})
	}
}

func TestNewNormalizer(t *testing.T) {
	t.Parallel()

	if text.NewNormalizer() == nil {
		t.Fatal("NewNormalizer returned nil")
	}
}

func TestNormalizer_Normalize_EmptyInput(t *testing.T) {
	t.Parallel()

	if result := text.NewNormalizer().Normalize(""); result != "" {
		t.Errorf("Expected empty string for empty input, got %q", result)
	}
}

func TestNormalizer_Normalize_Whitespace(t *testing.T) {
	t.Parallel()

	tests := []normalizerTestCase{
		{
			name:     "multiple spaces",
			input:    "Hello   world",
			expected: "Hello world",
		},
		{
			name:     "tabs and newlines",
			input:    "Line one\nand\tline two.",
			expected: "Line one and line two.",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  padded text  ",
			expected: "padded text",
		},
	}
	runNormalizerTests(t, tests)
}

func TestNormalizer_Normalize_Ellipses(t *testing.T) {
	t.Parallel()

	tests := []normalizerTestCase{
		{
			name:     "three dots",
			input:    "Well... maybe.",
			expected: "Well… maybe.",
		},
		{
			name:     "long dot run",
			input:    "Hmm...... interesting.",
			expected: "Hmm… interesting.",
		},
		{
			name:     "ellipsis glued to a capital",
			input:    "Wait...Stop right there.",
			expected: "Wait… Stop right there.",
		},
	}
	runNormalizerTests(t, tests)
}

func TestNormalizer_Normalize_Dashes(t *testing.T) {
	t.Parallel()

	tests := []normalizerTestCase{
		{
			name:     "double hyphen",
			input:    "One--two",
			expected: "One—two",
		},
		{
			name:     "en dash",
			input:    "pages 4–7 matter",
			expected: "pages 4—7 matter",
		},
		{
			name:     "em dash untouched",
			input:    "so—anyway",
			expected: "so—anyway",
		},
	}
	runNormalizerTests(t, tests)
}

func TestNormalizer_Normalize_PostPunctuationSpacing(t *testing.T) {
	t.Parallel()

	tests := []normalizerTestCase{
		{
			name:     "missing space after period",
			input:    "That is true.Next question.",
			expected: "That is true. Next question.",
		},
		{
			name:     "missing space after comma",
			input:    "yes,No doubt",
			expected: "yes, No doubt",
		},
		{
			name:     "missing space after question mark",
			input:    "Really?Absolutely.",
			expected: "Really? Absolutely.",
		},
		{
			name:     "lowercase after punctuation untouched",
			input:    "e.g. this stays",
			expected: "e.g. this stays",
		},
	}
	runNormalizerTests(t, tests)
}

func TestNormalizer_Normalize_Combined(t *testing.T) {
	t.Parallel()

	normalizer := text.NewNormalizer()
	input := "  So...I was thinking --  we could start.Right?  "
	expected := "So… I was thinking — we could start. Right?"

	result := normalizer.Normalize(input)
	if result != expected {
		t.Errorf("Combined test failed.\nExpected: %q\nGot:      %q", expected, result)
	}
}
