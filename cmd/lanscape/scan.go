package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"lanscape/internal/config"
	"lanscape/internal/core/metadata"
	"lanscape/internal/core/scanmodel"
	"lanscape/internal/core/scanner"
	"lanscape/internal/core/scanner/servicescan"
	"lanscape/internal/pkg/logger"
	"lanscape/internal/portcatalog"
)

var (
	flagScanPortList  string
	flagScanNoPorts   bool
	flagScanNoService bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <subnet>",
	Short: "Run a single scan to completion",
	Long: `scan discovers live hosts on subnet, tests their ports, and
fingerprints services, printing progress and a final summary table.
It does not start the HTTP server.

  lanscape scan 192.168.1.0/24
  lanscape scan "10.0.0.1-10.0.0.50,10.0.1.0/28"`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&flagScanPortList, "port-list", "top_100", "named port list to scan")
	scanCmd.Flags().BoolVar(&flagScanNoPorts, "no-ports", false, "skip port scanning (liveness only)")
	scanCmd.Flags().BoolVar(&flagScanNoService, "no-services", false, "skip service fingerprinting")
	scanCmd.Flags().StringVar(&flagVendorFile, "vendor-file", "./configs/mac_vendors.json", "MAC OUI vendor dataset path")
	scanCmd.Flags().StringVar(&flagCatalogFile, "service-catalog", "./configs/service_catalog.yaml", "service probe catalog path")
	scanCmd.Flags().StringVar(&flagPortCatalogDir, "port-catalog-dir", "./configs/port_lists", "named port-list storage directory")
}

func runScan(cmd *cobra.Command, args []string) error {
	subnet := args[0]

	cfg := config.DefaultScanConfig()
	cfg.Subnet = subnet
	cfg.PortList = flagScanPortList
	cfg.TaskScanPorts = !flagScanNoPorts
	cfg.TaskScanPortServices = !flagScanNoService && !flagScanNoPorts

	vendors, err := metadata.LoadVendorTable(flagVendorFile)
	if err != nil {
		vendors = metadata.NewVendorTable(nil)
	}
	svcCatalog, err := servicescan.LoadCatalog(flagCatalogFile)
	if err != nil {
		svcCatalog = nil
	}
	portCatalog := portcatalog.New(flagPortCatalogDir)

	s, err := scanner.New(cfg, vendors, portCatalog, svcCatalog, scanmodel.Default())
	if err != nil {
		return err
	}

	pterm.Info.Printf("scanning %s (%d addresses)...\n", subnet, s.Results().DevicesTotal)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Start(context.Background())
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastPct := -1
	for {
		select {
		case <-done:
			printSummary(s)
			return nil
		case <-ticker.C:
			if pct := int(s.PercentComplete()); pct != lastPct {
				pterm.Info.Printf("%s: %d%% complete\n", s.Results().Stage(), pct)
				lastPct = pct
			}
		}
	}
}

func printSummary(s *scanner.Scanner) {
	exp := s.Results().ExportSnapshot()

	openPorts := 0
	for _, d := range exp.Devices {
		openPorts += len(d.Ports)
	}

	pterm.Success.Printf("scan %s complete in %s\n", exp.UID, exp.EndTime.Sub(exp.StartTime))

	tableData := pterm.TableData{{"IP", "Hostname", "MAC", "Vendor", "Open Ports", "Services"}}
	for _, d := range exp.Devices {
		hostname := ""
		if d.Hostname != nil {
			hostname = *d.Hostname
		}
		mac := ""
		if len(d.MACs) > 0 {
			mac = d.MACs[0]
		}
		vendor := ""
		if d.Manufacturer != nil {
			vendor = *d.Manufacturer
		}
		services := make([]string, 0, len(d.Services))
		for name := range d.Services {
			services = append(services, name)
		}
		tableData = append(tableData, []string{
			d.IP, hostname, mac, vendor,
			fmt.Sprintf("%d", len(d.Ports)),
			fmt.Sprintf("%v", services),
		})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(tableData).Render(); err != nil {
		logger.Warnf("failed to render summary table: %v", err)
	}

	pterm.Info.Printf("%d/%d hosts alive, %d open ports total\n", len(exp.Devices), exp.DevicesTotal, openPorts)
}
