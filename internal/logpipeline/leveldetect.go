package logpipeline

import "strings"

// DetectLevel recognizes common Flutter console prefixes and returns the
// level a raw line should be logged at when the exception parser does not
// consume it (spec §4.1).
func DetectLevel(line string) Level {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "flutter:"):
		return Info
	case strings.Contains(trimmed, "Reloaded") && strings.Contains(trimmed, "libraries"):
		return Info
	case strings.HasPrefix(trimmed, "Debug service listening on"):
		return Info
	case strings.HasPrefix(trimmed, "Error:") || strings.Contains(trimmed, "EXCEPTION"):
		return Error
	case strings.HasPrefix(trimmed, "Warning:"):
		return Warn
	default:
		return Info
	}
}
