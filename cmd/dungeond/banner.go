package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/leonelquinteros/gotext"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ── Startup display helpers ────────────────────────────────────────

var (
	styleFrame   = color.Style{color.FgCyan, color.OpBold}
	styleSection = color.Style{color.FgYellow}
	styleSubtle  = color.Style{color.FgGray}
	styleValue   = color.Style{color.FgGreen}
	styleBold    = color.Style{color.OpBold}
)

// number formats counts with grouping separators.
var number = message.NewPrinter(language.English)

// setupConsole configures translations and disables colour when stdout is
// not a terminal.
func setupConsole(localeDir, lang string) {
	gotext.Configure(localeDir, lang, "default")
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.Disable()
	}
}

func printBanner(serverName string) {
	fmt.Println()
	styleFrame.Println("  ┌───────────────────────────────────────────┐")
	fmt.Printf("%s%s%s\n", styleFrame.Sprint("  │"), center(gotext.Get("Dungeon room tracker"), 43), styleFrame.Sprint("│"))
	styleFrame.Println("  └───────────────────────────────────────────┘")
	fmt.Println()
	fmt.Printf("  %s %s\n\n", styleBold.Sprint(gotext.Get("Server:")), serverName)
}

// displayWidth counts CJK characters as two columns.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r > 0x7F {
			w += 2
		} else {
			w++
		}
	}
	return w
}

func center(s string, width int) string {
	n := displayWidth(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

func printSection(title string) {
	lineLen := 46 - displayWidth(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	styleSection.Printf("  ── %s %s\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int64) {
	numStr := number.Sprintf("%d", count)
	dotsLen := 42 - displayWidth(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s %s %s\n", label, styleSubtle.Sprint(strings.Repeat("·", dotsLen)), styleValue.Sprint(numStr))
}

func printOK(msg string) {
	fmt.Printf("  %s %s\n", styleValue.Sprint("✓"), msg)
}

func printReady(msg string) {
	fmt.Printf("  %s %s\n", styleValue.Sprint("▶"), msg)
}
