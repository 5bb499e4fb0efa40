package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/aasx-viewer/backend/internal/api"
	"github.com/aasx-viewer/backend/internal/catalog"
	"github.com/aasx-viewer/backend/internal/classify"
	"github.com/aasx-viewer/backend/internal/config"
	"github.com/aasx-viewer/backend/internal/importer"
	"github.com/aasx-viewer/backend/internal/store"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	configPath := filepath.Join(exeDir, "AASXViewer.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	contentStore, err := store.NewContentStore(cfg.Storage.DataDirectory)
	if err != nil {
		fmt.Printf("Failed to initialize content store: %v\n", err)
		os.Exit(1)
	}

	assetCatalog, err := catalog.Open(cfg.Storage.CatalogFile)
	if err != nil {
		fmt.Printf("Failed to open asset catalog: %v\n", err)
		os.Exit(1)
	}
	defer assetCatalog.Close()

	classifier := classify.Default()
	if rules, err := classify.LoadRules(cfg.Import.ClassifierRulesFile); err == nil {
		classifier = classify.New(rules)
		fmt.Println("Classifier rules loaded from", cfg.Import.ClassifierRulesFile)
	} else if !os.IsNotExist(err) {
		fmt.Printf("Warning: could not load classifier rules: %v\n", err)
	}

	var allowedExts []string
	for _, ext := range strings.Split(cfg.Security.AllowedFileTypes, ",") {
		if ext = strings.ToLower(strings.TrimSpace(ext)); ext != "" {
			allowedExts = append(allowedExts, ext)
		}
	}

	importMgr := importer.NewManager(contentStore, assetCatalog, classifier, importer.Options{
		TempDir:           cfg.Storage.TempDirectory,
		DownloadTimeout:   time.Duration(cfg.Import.DownloadTimeoutMinutes) * time.Minute,
		AllowedExtensions: allowedExts,
	})

	// Background cleanup of finished import jobs
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Import.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			importMgr.CleanupOldJobs(time.Duration(cfg.Import.JobTimeoutMinutes) * time.Minute)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/progress") || path == "/api/health"
		},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 * 1024,
	}))
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	handlers := api.NewHandlers(&api.Dependencies{
		Manager:        importMgr,
		Content:        contentStore,
		Catalog:        assetCatalog,
		UploadDir:      cfg.Storage.UploadDirectory,
		AllowURLImport: cfg.Security.AllowURLImport,
		AllowDeletion:  cfg.Security.AllowAssetDeletion,
		Version:        Version,
	})
	api.RegisterRoutes(e, handlers)

	e.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeout) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeout) * time.Second

	addr := fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.Port)
	fmt.Printf("AASX viewer backend %s (built %s) listening on %s\n", Version, BuildTime, addr)
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		fmt.Printf("Server stopped: %v\n", err)
		os.Exit(1)
	}
}
