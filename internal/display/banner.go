package display

import (
	"fmt"
	"os"

	"github.com/backmassage/bgsub/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Magenta if colors are enabled.
func PrintBanner() {
	if term.Enabled() {
		fmt.Fprint(os.Stdout, term.Magenta)
	}
	fmt.Fprint(os.Stdout, ` _                     _
| |__   __ _ ___ _   _| |__
| '_ \ / _`+"`"+` / __| | | | '_ \
| |_) | (_| \__ \ |_| | |_) |
|_.__/ \__, |___/\__,_|_.__/
       |___/
`)
	if term.Enabled() {
		fmt.Fprintln(os.Stdout, term.NC)
	}
}
