// Package pck reads and writes the game's PCK sound archives.
//
// A PCK file is a name table ("Filename" section) followed by an index
// ("Pack" section) of absolute payload offsets and sizes, then the payloads
// themselves. Archives are loaded fully into memory; entries may be replaced
// with payloads of any size and the layout is recomputed on every write.
package pck
