package app

import (
	"path/filepath"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/config"
)

type dataPaths struct {
	Raw       string
	Processed string
	Metadata  string
}

func resolveDataPaths(cfg *config.Config) dataPaths {
	return dataPaths{
		Raw:       filepath.Join(cfg.DataDir, "raw"),
		Processed: filepath.Join(cfg.DataDir, "processed"),
		Metadata:  filepath.Join(cfg.DataDir, "metadata"),
	}
}
