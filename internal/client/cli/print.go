package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	labelColor   = color.New(color.Bold)
)

func success(w io.Writer, format string, args ...any) {
	successColor.Fprintln(w, fmt.Sprintf(format, args...))
}

func warn(w io.Writer, format string, args ...any) {
	warnColor.Fprintln(w, fmt.Sprintf(format, args...))
}

func failure(w io.Writer, err error) {
	errorColor.Fprintln(w, "Error: "+err.Error())
}

func field(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "%s %v\n", labelColor.Sprintf("%-14s", label+":"), value)
}
