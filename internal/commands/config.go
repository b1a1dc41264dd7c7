package commands

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/dreness/klproj/internal/convert"
	"github.com/dreness/klproj/internal/project"
)

// Config holds workspace-level conversion defaults, read from klproj.yml in
// the working directory when one exists. Flags override config, config
// overrides built-in defaults.
type Config struct {
	API    string
	Width  int
	Height int
	OutDir string
}

// LoadConfig reads klproj.yml from the working directory. A missing file is
// not an error; the zero Config means built-in defaults apply.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat("klproj.yml"); os.IsNotExist(err) {
		return &Config{}, nil
	}

	v := viper.New()
	v.SetConfigName("klproj")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvPrefix("KLPROJ")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read klproj.yml: %w", err)
	}

	return &Config{
		API:    v.GetString("convert.api"),
		Width:  v.GetInt("convert.width"),
		Height: v.GetInt("convert.height"),
		OutDir: v.GetString("convert.out"),
	}, nil
}

// convertOptions merges built-in defaults, config file values, and flag
// values into conversion options. Flag values win when non-zero.
func (c *Config) convertOptions(api string, width, height int) (convert.Options, error) {
	opts := convert.DefaultOptions()

	if c.API != "" {
		p, err := project.ParseProfile(c.API)
		if err != nil {
			return opts, fmt.Errorf("klproj.yml: %w", err)
		}
		opts.API = p
	}
	if c.Width > 0 {
		opts.Width = c.Width
	}
	if c.Height > 0 {
		opts.Height = c.Height
	}

	if api != "" {
		p, err := project.ParseProfile(api)
		if err != nil {
			return opts, err
		}
		opts.API = p
	}
	if width > 0 {
		opts.Width = width
	}
	if height > 0 {
		opts.Height = height
	}
	return opts, nil
}
