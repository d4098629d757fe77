package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	perrors "github.com/sambeau/tern/pkg/tern/errors"
)

// printError prints a Tern error with the offending source line and a caret.
// Anything else is printed as is.
func printError(w io.Writer, source string, err error) {
	var terr *perrors.TernError
	if !errors.As(err, &terr) {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}

	fmt.Fprintln(w, terr.PrettyString())
	printSourceContext(w, strings.Split(source, "\n"), terr.Line, terr.Column)
}

// printSourceContext prints the source line and error pointer
func printSourceContext(w io.Writer, lines []string, lineNum, colNum int) {
	if lineNum <= 0 || lineNum > len(lines) {
		return
	}

	sourceLine := []rune(lines[lineNum-1])

	// Calculate how many columns to trim from the left
	trimCount := 0
	for _, c := range sourceLine {
		if c == '\t' {
			trimCount += 8
		} else if c == ' ' {
			trimCount++
		} else {
			break
		}
	}

	trimmedLine := strings.TrimLeft(string(sourceLine), " \t")
	fmt.Fprintf(w, "    %s\n", trimmedLine)

	if colNum > 0 {
		// Visual column counts tabs as 8 spaces
		visualCol := 0
		for i := 0; i < colNum-1 && i < len(sourceLine); i++ {
			if sourceLine[i] == '\t' {
				visualCol += 8
			} else {
				visualCol++
			}
		}

		adjustedCol := max(visualCol-trimCount, 0)
		fmt.Fprintf(w, "    %s^\n", strings.Repeat(" ", adjustedCol))
	}
}
