package logpipeline

import "regexp"

// ansiEscape matches terminal SGR/CSI escape sequences Flutter's console
// output embeds for colorized log level prefixes.
var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*[a-zA-Z]")

// StripANSI removes terminal escape sequences from a raw line before it
// enters the exception parser or level detector.
func StripANSI(line string) string {
	return ansiEscape.ReplaceAllString(line, "")
}
