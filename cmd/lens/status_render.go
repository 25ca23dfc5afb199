package main

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
)

// colorizeStatus wraps the health status in green or red when the writer is
// a terminal. Piped output stays plain.
func colorizeStatus(writer io.Writer, status string) string {
	if !shouldColorize(writer) {
		return status
	}
	if status == "ok" {
		return ansiGreen + status + ansiReset
	}
	return ansiRed + status + ansiReset
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
