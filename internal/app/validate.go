package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/config"
)

func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	path := fs.String("config", "config/apps.json", "Path to the scope configuration file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	scope, err := config.LoadScopeConfig(strings.TrimSpace(*path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "INVALID %s: %v\n", *path, err)
		return 1
	}

	pairs := len(scope.Apps) * len(scope.Countries)
	fmt.Printf(
		"ok: %s source=%s apps=%d countries=%d cohorts=%d scrape_delay=%ds\n",
		strings.TrimSpace(*path),
		scope.Source,
		len(scope.Apps),
		len(scope.Countries),
		pairs,
		scope.ScrapeDelaySeconds,
	)
	return 0
}
