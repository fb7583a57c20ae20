package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "validate":
		return runValidate(args[1:])
	case "scrape":
		return runScrape(args[1:])
	case "process":
		return runProcess(args[1:])
	case "upload":
		return runUpload(args[1:])
	case "run", "run-once":
		return runPipeline(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "reviews-pipeline CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  reviews-pipeline <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health    Verify database connectivity")
	fmt.Fprintln(os.Stderr, "  validate  Validate the scope configuration file")
	fmt.Fprintln(os.Stderr, "  scrape    Fetch raw reviews for every configured (app, country) pair")
	fmt.Fprintln(os.Stderr, "  process   Deduplicate and clean raw batches into store-ready records")
	fmt.Fprintln(os.Stderr, "  upload    Upsert processed records listed in the run manifest")
	fmt.Fprintln(os.Stderr, "  run       Scrape, process and upload in sequence")
	fmt.Fprintln(os.Stderr, "  run-once  Alias for run")
	fmt.Fprintln(os.Stderr, "  serve     Start the monitoring API")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"reviews-pipeline <command> -h\" for command-specific flags.")
}
