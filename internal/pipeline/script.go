package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jash90/podcast-generator/internal/core"
)

const (
	errFmtReadScript  = "failed to read script file: %w"
	errFmtParseScript = "%w: script is not valid JSON: %w"
)

// parseJSON parses JSON data into the target interface.
func parseJSON(data []byte, target any) error {
	err := json.Unmarshal(data, target)
	if err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return nil
}

// ParseScript decodes and validates script JSON. Malformed JSON and invalid
// scripts both classify as invalid input.
func ParseScript(data []byte) (*core.Script, error) {
	var script core.Script

	err := parseJSON(data, &script)
	if err != nil {
		return nil, fmt.Errorf(errFmtParseScript, core.ErrInvalidInput, err)
	}

	err = script.Validate()
	if err != nil {
		return nil, err
	}

	return &script, nil
}

// LoadScript reads and parses a script file.
func LoadScript(path string) (*core.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(errFmtReadScript, err)
	}

	return ParseScript(data)
}
