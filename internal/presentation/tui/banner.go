package tui

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner with the running version.
func PrintBanner(version string) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Teal/Indigo)
	s1 := termenv.String("            _").Foreground(p.Color("#2dd4bf"))
	s2 := termenv.String("  _   _ ___| |__   ___ _ __").Foreground(p.Color("#22d3ee"))
	s3 := termenv.String(" | | | / __| '_ \\ / _ \\ '__|").Foreground(p.Color("#38bdf8"))
	s4 := termenv.String(" | |_| \\__ \\ | | |  __/ |").Foreground(p.Color("#60a5fa"))
	s5 := termenv.String("  \\__,_|___/_| |_|\\___|_|").Foreground(p.Color("#818cf8"))

	fmt.Println()
	fmt.Println(s1)
	fmt.Println(s2)
	fmt.Println(s3)
	fmt.Println(s4)
	fmt.Println(s5)
	fmt.Println()
	fmt.Println(termenv.String(fmt.Sprintf("  v%s", strings.TrimSpace(version))).Faint())
	fmt.Println()
}
