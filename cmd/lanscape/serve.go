package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"lanscape/internal/config"
	"lanscape/internal/core/metadata"
	"lanscape/internal/core/reliability"
	"lanscape/internal/core/scanmanager"
	"lanscape/internal/core/scanmodel"
	"lanscape/internal/core/scanner/servicescan"
	"lanscape/internal/httpapi"
	"lanscape/internal/pkg/logger"
	"lanscape/internal/portcatalog"
)

var (
	flagPort           int
	flagVendorFile     string
	flagCatalogFile    string
	flagPortCatalogDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP front end",
	Long: `serve starts LANscape's HTTP/JSON API: scan lifecycle, the
reliability queue, port-list CRUD, and subnet tools.

  lanscape serve --port 5000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&flagPort, "port", 5000, "HTTP listen port")
	serveCmd.Flags().StringVar(&flagVendorFile, "vendor-file", "./configs/mac_vendors.json", "MAC OUI vendor dataset path")
	serveCmd.Flags().StringVar(&flagCatalogFile, "service-catalog", "./configs/service_catalog.yaml", "service probe catalog path")
	serveCmd.Flags().StringVar(&flagPortCatalogDir, "port-catalog-dir", "./configs/port_lists", "named port-list storage directory")
}

func runServe(cmd *cobra.Command, args []string) error {
	if flagReloader {
		loader := config.NewLoader("configs", ".")
		appCfg, err := loader.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		watcher, err := config.NewWatcher(loader, onConfigReload, 200*time.Millisecond)
		if err != nil {
			logger.Warnf("config watcher disabled: %v", err)
		} else {
			defer watcher.Close()
		}
		if !cmd.Flags().Changed("port") {
			flagPort = appCfg.Port
		}
		if !cmd.Flags().Changed("port-catalog-dir") && appCfg.PortCatalogDir != "" {
			flagPortCatalogDir = appCfg.PortCatalogDir
		}
	}

	vendors, err := metadata.LoadVendorTable(flagVendorFile)
	if err != nil {
		logger.Warnf("vendor dataset unavailable (%v); manufacturer lookup disabled", err)
		vendors = metadata.NewVendorTable(nil)
	}

	svcCatalog, err := servicescan.LoadCatalog(flagCatalogFile)
	if err != nil {
		logger.Warnf("service catalog unavailable (%v); falling back to baseline probes only", err)
		svcCatalog = nil
	}

	portCatalog := portcatalog.New(flagPortCatalogDir)

	stats := scanmodel.Default()
	manager := scanmanager.New(vendors, portCatalog, svcCatalog, stats)
	queue := reliability.New(manager)

	ctx, cancel := context.WithCancel(context.Background())

	server := httpapi.New(manager, queue, portCatalog, func() {
		if !flagPersistent {
			cancel()
		}
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		pterm.Info.Println("shutting down...")
		cancel()
	}()

	addr := fmt.Sprintf(":%d", flagPort)
	pterm.Info.Printf("lanscape listening on %s\n", addr)
	return httpapi.Run(ctx, addr, server)
}

func onConfigReload(cfg *config.AppConfig) {
	if logger.LoggerInstance == nil {
		return
	}
	if err := logger.LoggerInstance.UpdateConfig(&cfg.Log); err != nil {
		logger.Warnf("failed to apply reloaded log config: %v", err)
	}
}
