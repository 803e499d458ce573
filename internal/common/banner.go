package common

import (
	"fmt"
	"io"
	"strings"

	"github.com/ternarybob/banner"
)

// PrintBanner writes the version banner to w.
func PrintBanner(w io.Writer, config *Config) {
	lineColor := banner.ColorCyan
	textColor := banner.ColorBold + banner.ColorWhite
	width := 56
	hr := lineColor + strings.Repeat("═", width) + banner.ColorReset

	art := []string{
		` 8888888888 8888888 888b    888`,
		` 888          888   8888b   888`,
		` 888          888   88888b  888`,
		` 8888888      888   888Y88b 888`,
		` 888          888   888 Y88b888`,
		` 888          888   888  Y88888`,
		` 888          888   888   Y8888`,
		` 888        8888888 888    Y888  apps`,
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
	for _, line := range art {
		fmt.Fprintf(w, "%s%s%s\n", textColor, line, banner.ColorReset)
	}
	fmt.Fprintf(w, "\n%s  Daily market data load & digest%s\n", textColor, banner.ColorReset)
	fmt.Fprintf(w, "\n%s\n\n", hr)

	kvPad := 14
	kvLines := [][2]string{
		{"Version", GetVersion()},
		{"Build", GetBuild()},
		{"Commit", GetGitCommit()},
	}
	if config != nil {
		kvLines = append(kvLines,
			[2]string{"Environment", config.Environment},
			[2]string{"Provider", config.Provider},
			[2]string{"Database", fmt.Sprintf("%s:%d/%s", config.Database.Host, config.Database.Port, config.Database.Name)},
		)
	}
	for _, kv := range kvLines {
		fmt.Fprintf(w, "%s  %-*s %s%s\n", textColor, kvPad, kv[0], kv[1], banner.ColorReset)
	}

	fmt.Fprintf(w, "\n%s\n\n", hr)
}
