package ownmapdal

import (
	"path/filepath"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
)

type PathsConfig struct {
	StylesDir       string
	RawDataFilesDir string
	TraceDir        string
}

// NewPathsConfig lays out the application directories under dataDir.
func NewPathsConfig(dataDir string) *PathsConfig {
	return &PathsConfig{
		StylesDir:       filepath.Join(dataDir, "styles"),
		RawDataFilesDir: filepath.Join(dataDir, "raw_data_files"),
		TraceDir:        filepath.Join(dataDir, "traces"),
	}
}

func (pc *PathsConfig) EnsurePaths(fs gofs.Fs) errorsx.Error {
	for _, dirPath := range []string{pc.StylesDir, pc.RawDataFilesDir, pc.TraceDir} {
		err := fs.MkdirAll(dirPath, 0755)
		if err != nil {
			return errorsx.Wrap(err, "dirPath", dirPath)
		}
	}

	return nil
}
