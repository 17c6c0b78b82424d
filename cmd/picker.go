package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/term"
)

// listShapefiles returns the names of the .shp files directly under dir.
func listShapefiles(dir string) []string {
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".shp") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files
}

// pickShapefile shows an arrow-key selection list of the .shp files under
// dir. It returns false when stdin is not a terminal, the directory has no
// shapefiles, or the user backs out.
func pickShapefile(dir string) (string, bool) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", false
	}

	files := listShapefiles(dir)
	if len(files) == 0 {
		return "", false
	}

	if runtime.GOOS == "windows" {
		enableVT()
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Println("(interactive selection not supported on this terminal)")
		return "", false
	}
	defer term.Restore(fd, oldState)

	reader := bufio.NewReader(os.Stdin)
	selected := 0

	redraw := func() {
		// Clear screen (ANSI reset to top + clear screen)
		fmt.Print("\033[H\033[2J")
		fmt.Print("Input Vector File:\r\n")
		for i, f := range files {
			prefix := "  "
			if i == selected {
				prefix = "> "
			}
			fmt.Print(prefix + f + "\r\n")
		}
		fmt.Print("(↑/↓ to navigate, Enter to select, Esc to cancel)\r\n")
	}

	redraw()

	for {
		b1, err := reader.ReadByte()
		if err != nil {
			return "", false
		}
		// Handle Windows console arrow sequences (0 or 224, then code)
		if b1 == 0 || b1 == 224 {
			b2, _ := reader.ReadByte()
			switch b2 {
			case 72: // up
				if selected > 0 {
					selected--
					redraw()
				}
			case 80: // down
				if selected < len(files)-1 {
					selected++
					redraw()
				}
			case 13: // Enter
				fmt.Print("\r\n")
				return files[selected], true
			}
			continue
		}

		switch b1 {
		case 27: // ESC or ANSI sequence
			if reader.Buffered() == 0 {
				// Bare ESC – back out
				fmt.Print("\r\n")
				return "", false
			}
			b2, _ := reader.ReadByte()
			if b2 != '[' {
				// Not a CSI sequence; ignore unknown combo
				continue
			}
			if reader.Buffered() == 0 {
				continue
			}
			b3, _ := reader.ReadByte()
			switch b3 {
			case 'A': // up
				if selected > 0 {
					selected--
					redraw()
				}
			case 'B': // down
				if selected < len(files)-1 {
					selected++
					redraw()
				}
			}
		case '\r', '\n': // Enter
			fmt.Print("\r\n")
			return files[selected], true
		case 3: // Ctrl-C
			fmt.Print("\r\n")
			return "", false

		default:
			// ignore other keys
		}
	}
}
