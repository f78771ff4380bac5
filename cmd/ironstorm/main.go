/*
Package main implements the ironstorm lookup server and CLI application.

ironstorm builds a read-only substring index over a candidate file and
serves lookups from it. Candidates are short texts (street names, titles)
assigned to coarse priority buckets; matches come back lowest bucket first
within microseconds, even when the index exceeds physical memory in paged
mode.

# Usage

Start the msgpack IPC server over a dataset:

	ironstorm -data streets.tsv

Build a paged index backed by a spill file for data sets larger than RAM:

	ironstorm -data streets.tsv -paged -pagedir /var/tmp

Run in CLI mode for interactive testing:

	ironstorm -data streets.tsv -c -limit 10

The dataset file holds one candidate per line as `text<TAB>bucket`. The
whole index is rebuilt on every start; there is no incremental update by
design.

# Configuration

Runtime configuration is managed through a TOML file with index, server
and CLI sections:

	[index]
	paged = false
	page_dir = ""

	[server]
	max_limit = 64
	min_pattern = 1
	max_pattern = 60
	cache_size = 512

The config file is created with defaults if it doesn't exist. Flags win
over config values.

# IPC Protocol

The server communicates via msgpack over stdin/stdout. See the server
package for the message catalogue. A query request:

	{"id": "req1", "q": "hero", "l": 10}

is answered with matches in bucket order and the lookup time in
microseconds:

	{"id": "req1", "m": [{"t": "Superhero Movie", "b": 0}], "c": 1, "t": 145}
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/forgemo/ironstorm-lookup/internal/cli"
	"github.com/forgemo/ironstorm-lookup/pkg/config"
	"github.com/forgemo/ironstorm-lookup/pkg/dataset"
	"github.com/forgemo/ironstorm-lookup/pkg/lookup"
	"github.com/forgemo/ironstorm-lookup/pkg/server"
)

const (
	Version = "1.0.0"
	AppName = "ironstorm"
	gh      = "https://github.com/forgemo/ironstorm-lookup"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires flags, config, dataset and table together and hands off to
// the server or the CLI loop. No lookup logic lives here.
func main() {
	sigHandler()
	defaults := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	dataFile := flag.String("data", "", "Dataset file with text<TAB>bucket lines")
	configPath := flag.String("config", "", "Path to config.toml (default: user config dir)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	paged := flag.Bool("paged", defaults.Index.Paged, "Back the index with a memory-mapped spill file")
	pageDir := flag.String("pagedir", defaults.Index.PageDir, "Directory for the spill file (default: OS temp dir)")
	limit := flag.Int("limit", defaults.CLI.DefaultLimit, "Number of matches to show in CLI mode")
	minPattern := flag.Int("pmin", defaults.CLI.DefaultMinLen, "Minimum pattern length in CLI mode")
	maxPattern := flag.Int("pmax", defaults.CLI.DefaultMaxLen, "Maximum pattern length in CLI mode")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}
	// Stdout carries the IPC protocol; all logging goes to stderr.
	log.SetOutput(os.Stderr)

	if *dataFile == "" {
		log.Fatal("No dataset given, use -data <file>")
	}

	cfgPath := config.GetActiveConfigPath(*configPath)
	appConfig, err := config.InitConfig(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *paged {
		appConfig.Index.Paged = true
	}
	if *pageDir != "" {
		appConfig.Index.PageDir = *pageDir
	}

	entries, err := dataset.LoadFile(*dataFile)
	if err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}

	log.Debugf("Building %d entries, paged=%v", len(entries), appConfig.Index.Paged)
	start := time.Now()
	table, err := lookup.BuildWithOptions(dataset.Items(entries), lookup.Options{
		Paged:   appConfig.Index.Paged,
		PageDir: appConfig.Index.PageDir,
	})
	if err != nil {
		log.Fatalf("Failed to build table: %v", err)
	}
	defer table.Close()
	log.Debugf("Build finished in %v", time.Since(start))

	if *cliMode {
		log.SetReportTimestamp(false)
		handler := cli.NewInputHandler(table, *minPattern, *maxPattern, *limit)
		if err := handler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	showStartupInfo(*dataFile, table)

	srv := server.NewServer(table, appConfig)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ ironstorm ] substring lookups for very large candidate sets")
	logger.Print("", "version", Version)
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dataFile string, table *lookup.Table) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("dataset: ( %s )", dataFile)
	log.Infof("items: %d, buckets: %d, mode: %s",
		table.Len(), table.BucketCount(), table.Mode())
	log.Info("status: ready")

	log.SetLevel(currentLevel)
}
