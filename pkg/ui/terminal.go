package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Banner is printed at the start of a run
const Banner = `
  ┌─────────────────────────────────────┐
  │  pagescraper :: page/image fetcher  │
  └─────────────────────────────────────┘
`

var (
	out          io.Writer = os.Stdout
	colorEnabled           = detectColor(os.Stdout)
	quietMode    bool
)

// detectColor enables colour only on a terminal and when NO_COLOR is unset
func detectColor(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// SetOutput redirects console output, disabling colour unless w is a terminal
func SetOutput(w io.Writer) {
	out = w
	if f, ok := w.(*os.File); ok {
		colorEnabled = detectColor(f)
		return
	}
	colorEnabled = false
}

// SetNoColor forces plain output
func SetNoColor(noColor bool) {
	if noColor {
		colorEnabled = false
	}
}

// ColorEnabled reports whether ANSI colour is in use
func ColorEnabled() bool {
	return colorEnabled
}

// SetQuietMode suppresses banners and informational lines
func SetQuietMode(quiet bool) {
	quietMode = quiet
}

// IsQuietMode returns whether quiet mode is enabled
func IsQuietMode() bool {
	return quietMode
}

// Color functions for terminal output
var (
	Cyan    = colorize("\033[36m%s\033[0m")
	Yellow  = colorize("\033[33m%s\033[0m")
	Red     = colorize("\033[31m%s\033[0m")
	Green   = colorize("\033[32m%s\033[0m")
	Magenta = colorize("\033[35m%s\033[0m")
	Dim     = colorize("\033[2m%s\033[0m")
)

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		if !colorEnabled {
			return text
		}
		return fmt.Sprintf(colorString, text)
	}
}

// PrintBanner prints the banner unless quiet
func PrintBanner() {
	if quietMode {
		return
	}
	fmt.Fprint(out, Cyan(Banner))
}

// PrintError prints an error message in red. Errors are printed even when quiet.
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(out, Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(out, Red(msg))
	}
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	if quietMode {
		return
	}
	fmt.Fprintln(out, Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	if quietMode {
		return
	}
	fmt.Fprintf(out, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(out, Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(out, Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func PrintHighlight(msg string) {
	if quietMode {
		return
	}
	fmt.Fprintln(out, Magenta(msg))
}
