// Command simrunner runs one simulation from a payload CSV and a
// network/fleet YAML config and writes the detail and summary reports,
// mirroring the teacher's CLI entry points' structured-logging setup
// while taking positional arguments per spec.md's CLI surface.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/Vin-it-9/Rockwell-Hackthon/internal/config"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/payload"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/report"
	"github.com/Vin-it-9/Rockwell-Hackthon/internal/simulation"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 6 {
		fmt.Fprintln(os.Stderr, "usage: simrunner payload_file config_file log_output detail_report summary_report")
		os.Exit(2)
	}
	payloadFile := os.Args[1]
	configFile := os.Args[2]
	logOutput := os.Args[3]
	detailReportPath := os.Args[4]
	summaryReportPath := os.Args[5]

	netCfg, err := config.LoadNetworkConfig(configFile)
	if err != nil {
		slog.Error("failed to load network config", "error", err)
		os.Exit(1)
	}
	net, fleet, err := config.BuildNetwork(netCfg)
	if err != nil {
		slog.Error("failed to build network", "error", err)
		os.Exit(1)
	}

	payloadsFile, err := os.Open(payloadFile)
	if err != nil {
		slog.Error("failed to open payload file", "error", err)
		os.Exit(1)
	}
	defer payloadsFile.Close()

	payloads, err := config.ParsePayloadCSV(payloadsFile, config.StationSet(netCfg))
	if err != nil {
		slog.Error("failed to parse payload csv", "error", err)
		os.Exit(1)
	}
	registry, err := payload.NewRegistry(payloads)
	if err != nil {
		slog.Error("failed to build payload registry", "error", err)
		os.Exit(1)
	}
	config.ValidateReachability(net, fleet, payloads)

	driver := simulation.New(net, fleet, registry)
	result, err := driver.Run(context.Background())
	if err != nil {
		slog.Error("simulation run failed", "error", err)
		os.Exit(1)
	}

	if err := writeLines(logOutput, result.ExecutionLog); err != nil {
		slog.Error("failed to write execution log", "error", err)
		os.Exit(1)
	}

	detailFile, err := os.Create(detailReportPath)
	if err != nil {
		slog.Error("failed to create detail report", "error", err)
		os.Exit(1)
	}
	defer detailFile.Close()
	if err := report.WriteDetail(detailFile, result.ExecutionLog); err != nil {
		slog.Error("failed to write detail report", "error", err)
		os.Exit(1)
	}

	summaryFile, err := os.Create(summaryReportPath)
	if err != nil {
		slog.Error("failed to create summary report", "error", err)
		os.Exit(1)
	}
	defer summaryFile.Close()
	if err := report.WriteSummary(summaryFile, result.Metrics, registry.Len(), result.Deadlocked); err != nil {
		slog.Error("failed to write summary report", "error", err)
		os.Exit(1)
	}

	if result.Deadlocked {
		slog.Warn("run ended in deadlock", "delivered_count", result.Metrics.DeliveredCount, "total_payloads", registry.Len())
	}
	os.Exit(0)
}

func writeLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return err
		}
	}
	return nil
}
