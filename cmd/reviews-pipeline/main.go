package main

import (
	"os"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
