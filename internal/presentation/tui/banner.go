package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`  ____        _   _ __  __ _     `, "#818cf8"},
	{` | __ )      | | | |  \/  | |    `, "#a78bfa"},
	{` |  _ \ _____| | | | |\/| | |    `, "#c084fc"},
	{` | |_) |_____| |_| | |  | | |___ `, "#e879f9"},
	{` |____/       \___/|_|  |_|_____|`, "#f472b6"},
}

// PrintBanner writes the B-UML banner to w, colored when w supports it.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, out.String(line.text).Foreground(out.Color(line.color)))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("  domain modeling over MCP, v"+version).Faint())
	}
	fmt.Fprintln(w)
}
