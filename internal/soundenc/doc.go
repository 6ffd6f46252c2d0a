// Package soundenc turns mod audio files into payloads the game's sound
// archives accept.
//
// Encoding is delegated to external tools: ffmpeg converts anything that is
// not already WAV, then opusenc produces the Opus stream with LoopStart and
// LoopEnd comments taken from an optional ".loop" sidecar. Each request works
// in its own temporary directory, which is removed on every exit path.
package soundenc
