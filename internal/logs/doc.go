// Package logs reads the furymod log file for the `furymod logs` command.
//
// Last returns the final lines with bounded memory, and Follow streams lines
// appended after a byte offset until the context ends. A missing log file is
// treated as empty so the command works before the first install.
package logs
