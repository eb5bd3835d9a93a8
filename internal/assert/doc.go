// Package assert holds precondition checks for the real-time signal path.
//
// Builds tagged "debug" panic on a violated precondition and run an output
// guard over processed blocks. Release builds compile every check to a no-op
// so the audio path never branches on diagnostics.
package assert
