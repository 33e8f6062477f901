// Package logging provides opt-in file-based logging with rotation for seqprobe.
// When the --debug flag is set, comprehensive logs are written to ~/.seqprobe/logs/
// for debugging and troubleshooting.
//
// By default (without --debug), logging is minimal and goes to stderr only, so
// normal probe output stays clean for piping and JSON consumers.
package logging
