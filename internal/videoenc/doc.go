// Package videoenc re-encodes mod cutscenes into the Theora/Vorbis Ogg files
// the game plays.
//
// Encoding is delegated to ffmpeg. The output is scaled and letterboxed to
// 1280x720 at 29.97 fps with 48 kHz stereo audio, written inside a scratch
// directory under the work dir, and only copied over the game's .ogv once
// ffmpeg succeeds.
package videoenc
