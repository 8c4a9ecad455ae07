// Package config loads runtime settings from an optional YAML file and
// PIC2ANY_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Workers bounds the conversion pool; clamped to 1..4 downstream.
	Workers int `yaml:"workers"`
	// OutputDirName names the directory created next to the first input
	// when no explicit output path is given.
	OutputDirName string `yaml:"output_dir"`
	// LogFile receives diagnostics when set; empty disables file logging.
	LogFile string `yaml:"log_file"`
}

func Default() Config {
	return Config{
		Workers:       4,
		OutputDirName: "pic",
	}
}

// Load reads path (if it exists) over the defaults, then applies
// environment overrides. A missing file is not an error; a malformed
// one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// defaults apply
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if v := os.Getenv("PIC2ANY_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("PIC2ANY_WORKERS: %w", err)
		}
		cfg.Workers = n
	}
	if v := os.Getenv("PIC2ANY_OUTPUT_DIR"); v != "" {
		cfg.OutputDirName = v
	}
	if v := os.Getenv("PIC2ANY_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.OutputDirName == "" {
		cfg.OutputDirName = Default().OutputDirName
	}
	return cfg, nil
}
