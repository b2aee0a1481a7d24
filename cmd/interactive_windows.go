//go:build windows

package main

import (
	"os"

	"golang.org/x/sys/windows"
)

// enableVT turns on virtual terminal processing so arrow keys arrive as
// ANSI sequences and the list redraw escapes are honored.
func enableVT() {
	for _, h := range []struct {
		handle windows.Handle
		flag   uint32
	}{
		{windows.Handle(os.Stdin.Fd()), windows.ENABLE_VIRTUAL_TERMINAL_INPUT},
		{windows.Handle(os.Stdout.Fd()), windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING},
	} {
		var mode uint32
		if windows.GetConsoleMode(h.handle, &mode) == nil {
			windows.SetConsoleMode(h.handle, mode|h.flag)
		}
	}
}
