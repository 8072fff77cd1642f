package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FileConfig is the daemon startup configuration loaded from YAML
type FileConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Datasets DatasetsConfig `yaml:"datasets"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Listen string `yaml:"listen"`
}

type StorageConfig struct {
	// DataDir holds the bbolt store and persistent database files
	DataDir string `yaml:"data_dir"`
}

type DatasetsConfig struct {
	// Manifest points at an optional JSON manifest of datasets to attach
	// to embedded sessions at connect time
	Manifest string `yaml:"manifest"`
}

type LoggingConfig struct {
	// Level names the minimum severity to emit (debug, info, warn, error)
	Level          string `yaml:"level"`
	File           string `yaml:"file"`
	DisableConsole bool   `yaml:"disable_console"`
}

// LoadFile reads the daemon configuration from configPath, applying defaults
// and environment overrides. A missing file is not an error; the defaults
// stand on their own.
func LoadFile(configPath string) (*FileConfig, error) {
	fc := &FileConfig{
		Server: ServerConfig{
			Listen: ":8090",
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err == nil {
			if err := yaml.Unmarshal(data, fc); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	loadFromEnv(fc)

	if err := validate(fc); err != nil {
		return nil, err
	}

	return fc, nil
}

// Flatten maps the file configuration into runtime config keys
func (fc *FileConfig) Flatten() map[string]string {
	return map[string]string{
		"server.listen":           fc.Server.Listen,
		"storage.data_dir":        fc.Storage.DataDir,
		"datasets.manifest":       fc.Datasets.Manifest,
		"logging.level":           fc.Logging.Level,
		"logging.file":            fc.Logging.File,
		"logging.disable_console": strconv.FormatBool(fc.Logging.DisableConsole),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".duckui"
	}
	return filepath.Join(home, ".duckui")
}

func loadFromEnv(fc *FileConfig) {
	if listen := os.Getenv("DUCKUI_LISTEN"); listen != "" {
		fc.Server.Listen = listen
	}
	if dir := os.Getenv("DUCKUI_DATA_DIR"); dir != "" {
		fc.Storage.DataDir = dir
	}
	if manifest := os.Getenv("DUCKUI_DATASET_MANIFEST"); manifest != "" {
		fc.Datasets.Manifest = manifest
	}
	if level := os.Getenv("DUCKUI_LOG_LEVEL"); level != "" {
		fc.Logging.Level = level
	}
	if file := os.Getenv("DUCKUI_LOG_FILE"); file != "" {
		fc.Logging.File = file
	}
}

func validate(fc *FileConfig) error {
	if fc.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if fc.Storage.DataDir == "" {
		return fmt.Errorf("storage.data_dir is required")
	}
	return nil
}
