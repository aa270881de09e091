// Package assetutil provides file naming and formatting utilities for delivered
// audio assets.
//
// This package focuses on platform-agnostic ways to handle application paths,
// format data for display, and produce collision-resistant asset names, adhering
// to Go's best practices for clarity, error handling, and maintainability.
package assetutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Environment variable names used for path resolution.
const (
	envCacheDir = "PODCAST_CACHE_DIR"
)

// Common application directory and path constants.
const (
	appName                = "podcast-generator"
	cacheDirName           = "cache"
	tmpDir                 = "/tmp"
	dotCache               = ".cache"
	defaultDirPermissions  = 0o750
	dot                    = "."
	invalidCharReplacement = "_"
)

// Data size constants.
const (
	byteUnit = 1
	kilobyte = byteUnit * 1024
	megabyte = kilobyte * 1024
	gigabyte = megabyte * 1024
)

// Time and size formatting constants.
const (
	secondsInMinute = 60
	secondsInHour   = 3600
	formatSeconds   = "%.1fs"
	formatMinutes   = "%dm %.1fs"
	formatHours     = "%dh %dm"
	formatGB        = "%.1f GB"
	formatMB        = "%.1f MB"
	formatKB        = "%.1f KB"
	formatBytes     = "%d B"
)

// File extension constants.
const (
	extAAC  = ".aac"
	extFLAC = ".flac"
	extM4A  = ".m4a"
	extMP3  = ".mp3"
	extOGG  = ".ogg"
	extOpus = ".opus"
	extWAV  = ".wav"
)

// Asset naming constants.
const (
	timestampLayout    = "20060102_150405"
	assetNameFormat    = "%s_%s_%s"
	uniqueSuffixLength = 8

	errFmtFailedToCreateDir = "failed to create directory %s: %w"
)

// GetCacheDir returns the application's cache directory, respecting an
// environment variable override and falling back to a standard user-based cache
// directory.
func GetCacheDir() string {
	if cacheDir := os.Getenv(envCacheDir); cacheDir != "" {
		return cacheDir
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(tmpDir, appName, cacheDirName)
	}

	return filepath.Join(homeDir, dotCache, appName)
}

// EnsureDir ensures a directory exists at the given path, creating it if it
// doesn't.
func EnsureDir(path string) error {
	_, statErr := os.Stat(path)
	if os.IsNotExist(statErr) {
		mkdirErr := os.MkdirAll(path, defaultDirPermissions)
		if mkdirErr != nil {
			return fmt.Errorf(errFmtFailedToCreateDir, path, mkdirErr)
		}
	}

	return nil
}

// AssetFileName builds a collision-resistant file name for a delivered asset: a
// sanitized prefix, a UTC timestamp, and a short unique suffix, plus the
// extension when one is given.
func AssetFileName(prefix, extension string) string {
	stamp := time.Now().UTC().Format(timestampLayout)
	suffix := uuid.NewString()[:uniqueSuffixLength]
	name := fmt.Sprintf(assetNameFormat, SanitizeFilename(prefix), stamp, suffix)

	extension = strings.TrimPrefix(extension, dot)
	if extension == "" {
		return name
	}

	return name + dot + extension
}

// FormatDuration formats a duration in a human-readable string (e.g., "1h 15m",
// "5m 30.5s", "45.2s").
func FormatDuration(seconds float64) string {
	if seconds < secondsInMinute {
		return fmt.Sprintf(formatSeconds, seconds)
	}

	if seconds < secondsInHour {
		minutes := int(seconds / secondsInMinute)
		remainingSeconds := seconds - float64(minutes*secondsInMinute)

		return fmt.Sprintf(formatMinutes, minutes, remainingSeconds)
	}

	hours := int(seconds / secondsInHour)
	remainingSeconds := seconds - float64(hours*secondsInHour)
	remainingMinutes := int(remainingSeconds / secondsInMinute)

	return fmt.Sprintf(formatHours, hours, remainingMinutes)
}

// FormatFileSize formats a file size in a human-readable string (e.g., "1.2 GB",
// "500.5 MB").
func FormatFileSize(bytes int64) string {
	switch {
	case bytes >= gigabyte:
		return fmt.Sprintf(formatGB, float64(bytes)/gigabyte)
	case bytes >= megabyte:
		return fmt.Sprintf(formatMB, float64(bytes)/megabyte)
	case bytes >= kilobyte:
		return fmt.Sprintf(formatKB, float64(bytes)/kilobyte)
	default:
		return fmt.Sprintf(formatBytes, bytes)
	}
}

// IsValidAudioFile checks if a filename has a common audio file extension.
func IsValidAudioFile(filename string) bool {
	ext := filepath.Ext(filename)
	switch ext {
	case extWAV, extMP3, extFLAC, extOGG, extOpus, extM4A, extAAC:
		return true
	default:
		return false
	}
}

// GetFileExtension returns the file extension without the leading dot.
func GetFileExtension(filename string) string {
	return strings.TrimPrefix(filepath.Ext(filename), dot)
}

// SanitizeFilename removes or replaces characters that are invalid in most
// filesystems.
func SanitizeFilename(filename string) string {
	replacer := strings.NewReplacer(
		"<", invalidCharReplacement,
		">", invalidCharReplacement,
		":", invalidCharReplacement,
		"\"", invalidCharReplacement,
		"/", invalidCharReplacement,
		"\\", invalidCharReplacement,
		"|", invalidCharReplacement,
		"?", invalidCharReplacement,
		"*", invalidCharReplacement,
	)

	return replacer.Replace(filename)
}
