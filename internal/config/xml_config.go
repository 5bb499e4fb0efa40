// Package config provides XML-based configuration management for air-gapped
// deployment of the import backend.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"AASXViewer"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Import pipeline configuration
	Import ImportConfig `xml:"Import"`

	// Security configuration
	Security SecurityConfig `xml:"Security"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// StorageConfig contains content store settings
type StorageConfig struct {
	DataDirectory   string `xml:"DataDirectory"`
	UploadDirectory string `xml:"UploadDirectory"`
	TempDirectory   string `xml:"TempDirectory"`
	CatalogFile     string `xml:"CatalogFile"`
}

// ImportConfig contains import pipeline settings
type ImportConfig struct {
	JobTimeoutMinutes      int    `xml:"JobTimeoutMinutes"`
	CleanupIntervalMinutes int    `xml:"CleanupIntervalMinutes"`
	ClassifierRulesFile    string `xml:"ClassifierRulesFile"`
	DownloadTimeoutMinutes int    `xml:"DownloadTimeoutMinutes"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	AllowAssetDeletion bool   `xml:"AllowAssetDeletion"`
	AllowURLImport     bool   `xml:"AllowURLImport"`
	AllowedFileTypes   string `xml:"AllowedFileTypes"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	EnableRequestLogging bool `xml:"EnableRequestLogging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			BodyLimit:    "512M",
		},
		Storage: StorageConfig{
			DataDirectory:   "./data",
			UploadDirectory: "./data/uploads",
			TempDirectory:   "./data/temp",
			CatalogFile:     "./data/catalog.duckdb",
		},
		Import: ImportConfig{
			JobTimeoutMinutes:      60,
			CleanupIntervalMinutes: 5,
			ClassifierRulesFile:    "./data/defaults/classify.yaml",
			DownloadTimeoutMinutes: 10,
		},
		Security: SecurityConfig{
			AllowAssetDeletion: true,
			AllowURLImport:     true,
			AllowedFileTypes:   ".aasx,.zip",
		},
		Advanced: AdvancedConfig{
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from an XML file. A missing file yields the
// defaults and writes them out so deployments can edit them in place.
func LoadConfig(configPath string) (*AppConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			if writeErr := cfg.Save(configPath); writeErr != nil {
				fmt.Printf("Warning: could not write default config: %v\n", writeErr)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := xml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as indented XML.
func (c *AppConfig) Save(configPath string) error {
	data, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	return os.WriteFile(configPath, data, 0644)
}

// EnsureDirectories creates the configured data directories.
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadDirectory,
		c.Storage.TempDirectory,
		filepath.Dir(c.Storage.CatalogFile),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}
