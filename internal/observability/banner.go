package observability

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	colorReset    = "\033[0m"
	colorNeonCyan = "\033[96m"
)

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

// PrintBanner clears the screen and prints the startup banner centered on
// the terminal width.
func PrintBanner() {
	fmt.Print("\033[2J\033[H")

	banner := `
  __                __     ______
 / /_ ____ _ _____ / /__  / __/ /___  _      __
/ __// __ '// ___// //_/ / /_/ // _ \| | /| / /
/ /_ / /_/ /(__  )/ ,<   / __/ // (_) | |/ |/ /
\__/ \__,_//____//_/|_| /_/ /_/ \___/|__/|__/

     >> PLAN. DISPATCH. STREAM. <<
`

	width := termWidth()
	for _, l := range strings.Split(banner, "\n") {
		padding := (width - len(l)) / 2
		if padding < 0 {
			padding = 0
		}
		fmt.Printf("%s%s%s\n", strings.Repeat(" ", padding), colorNeonCyan+l, colorReset)
	}
}
