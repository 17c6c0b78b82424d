//go:build !windows
// +build !windows

package main

// enableVT is a no-op off Windows; ANSI sequences work natively.
func enableVT() {}
