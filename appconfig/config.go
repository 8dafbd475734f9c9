package appconfig

import (
	"os"
	"time"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/goutil/userextra"
	"github.com/simon04/OpenCartonaut/ownmapdal"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDataDir         = "~/.local/share/opencartonaut"
	DefaultConfigFileName  = "config.yaml"
	DefaultPort            = 9000
	DefaultTileConcurrency = 4
	DefaultRequestTimeout  = 60 * time.Second
)

type Config struct {
	Addr        string `yaml:"addr"`
	OverpassURL string `yaml:"overpassUrl"`
	// DataDir holds uploaded data files and traces.
	DataDir   string   `yaml:"dataDir"`
	StylesDir string   `yaml:"stylesDir"`
	DataFiles []string `yaml:"dataFiles"`
	// WorkspaceDB is "postgresql://..." or "sqlite://...". Empty disables workspaces.
	WorkspaceDB     string        `yaml:"workspaceDb"`
	TileConcurrency uint          `yaml:"tileConcurrency"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
}

func Default() *Config {
	return &Config{
		Addr:            "localhost:9000",
		OverpassURL:     ownmapdal.DefaultOverpassInterpreterURL,
		DataDir:         DefaultDataDir,
		TileConcurrency: DefaultTileConcurrency,
		RequestTimeout:  DefaultRequestTimeout,
	}
}

// DefaultConfigFilePath is the config file in the default data directory.
func DefaultConfigFilePath() string {
	return DefaultDataDir + "/" + DefaultConfigFileName
}

// Load reads the YAML file at filePath over the defaults. A missing file gives the defaults.
func Load(fs gofs.Fs, filePath string) (*Config, errorsx.Error) {
	config := Default()

	expandedPath, err := userextra.ExpandUser(filePath)
	if err != nil {
		return nil, errorsx.Wrap(err, "filePath", filePath)
	}

	data, err := fs.ReadFile(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, config.normalise()
		}
		return nil, errorsx.Wrap(err, "filePath", expandedPath)
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, errorsx.Wrap(err, "filePath", expandedPath)
	}

	return config, config.normalise()
}

// normalise expands "~" in paths, fills derived defaults and validates the values.
func (c *Config) normalise() errorsx.Error {
	var err error

	c.DataDir, err = userextra.ExpandUser(c.DataDir)
	if err != nil {
		return errorsx.Wrap(err, "dataDir", c.DataDir)
	}

	if c.StylesDir == "" {
		c.StylesDir = ownmapdal.NewPathsConfig(c.DataDir).StylesDir
	}
	c.StylesDir, err = userextra.ExpandUser(c.StylesDir)
	if err != nil {
		return errorsx.Wrap(err, "stylesDir", c.StylesDir)
	}

	for i, dataFile := range c.DataFiles {
		c.DataFiles[i], err = userextra.ExpandUser(dataFile)
		if err != nil {
			return errorsx.Wrap(err, "dataFile", dataFile)
		}
	}

	return c.Validate()
}

func (c *Config) Validate() errorsx.Error {
	if c.Addr == "" {
		return errorsx.Errorf("no address to serve on")
	}

	if c.TileConcurrency == 0 {
		return errorsx.Errorf("tileConcurrency must be at least 1")
	}

	if c.RequestTimeout < 0 {
		return errorsx.Errorf("requestTimeout must not be negative, got %s", c.RequestTimeout)
	}

	if c.WorkspaceDB != "" {
		_, err := ownmapdal.ParseDBConnFilePath(c.WorkspaceDB)
		if err != nil {
			return errorsx.Wrap(err, "workspaceDb", c.WorkspaceDB)
		}
	}

	return nil
}

// PathsConfig lays out the application directories, with the configured styles directory.
func (c *Config) PathsConfig() *ownmapdal.PathsConfig {
	pathsConfig := ownmapdal.NewPathsConfig(c.DataDir)
	pathsConfig.StylesDir = c.StylesDir
	return pathsConfig
}
