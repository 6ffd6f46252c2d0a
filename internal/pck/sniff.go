package pck

import "bytes"

// SniffExtension guesses a file suffix from the payload's leading bytes.
// Unknown payloads yield "".
func SniffExtension(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("OggS")):
		if bytes.Contains(data[:min(len(data), 128)], []byte("OpusHead")) {
			return ".opus"
		}
		return ".ogg"
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WAVE")):
		return ".wav"
	default:
		return ""
	}
}
