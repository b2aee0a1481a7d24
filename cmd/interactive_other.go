//go:build !windows

package main

// enableVT is a no-op: ANSI sequences work on non-Windows terminals.
func enableVT() {}
