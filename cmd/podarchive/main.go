package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"podarchive/pkg/archive"
	"podarchive/pkg/batch"
	"podarchive/pkg/config"
	"podarchive/pkg/export"
	"podarchive/pkg/favorites"
	"podarchive/pkg/fetch"
	"podarchive/pkg/naming"
	"podarchive/pkg/pubdate"
	"podarchive/pkg/report"
	"podarchive/pkg/transcribe"
)

const version = "0.4.1"

const defaultConfigFile = "config.yaml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "download":
		runDownload(os.Args[2:])
	case "rename":
		runRename(os.Args[2:])
	case "export":
		runExport(os.Args[2:])
	case "transcribe":
		runTranscribe(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "version":
		fmt.Printf("podarchive %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printUsageTo(os.Stdout)
}

// printUsageTo writes usage information to the provided writer.
func printUsageTo(w io.Writer) {
	fmt.Fprintln(w, `podarchive - Podcast favorites archiver

Usage:
  podarchive <command> [options]

Commands:
  download    Archive favorited episodes not yet on disk
  rename      Migrate legacy-named archive files to the current scheme
  export      Export favorites from the app database to JSON
  transcribe  Generate text sidecars for archived audio
  validate    Validate configuration file
  version     Show version info

Run 'podarchive <command> -h' for command-specific help.`)
}

// loadConfig loads and parses the config file. An absent file at the default
// path is not an error: everything can be supplied via flags.
func loadConfig(path string) (*config.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == defaultConfigFile {
			return &config.AppConfig{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg config.AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

// setupLogger creates a configured logrus.Logger with the given log level.
func setupLogger(logLevelStr string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel)

	level, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'info'. Error: %v", logLevelStr, err)
	} else {
		log.SetLevel(level)
	}

	return log
}

// loadAndValidateConfig loads the config file, applies overrides, validates,
// and logs warnings.
func loadAndValidateConfig(configFile string, override func(*config.AppConfig), log *logrus.Logger) *config.AppConfig {
	appCfg, err := loadConfig(configFile)
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	if override != nil {
		override(appCfg)
	}

	warnings, err := appCfg.Validate()
	for _, w := range warnings {
		log.Warn(w)
	}
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	return appCfg
}

// signalContext returns a context cancelled on SIGINT/SIGTERM. A second
// signal forces exit.
func signalContext(log *logrus.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warnf("Received signal %v, finishing in-flight downloads...", sig)
		cancel()

		select {
		case sig = <-sigChan:
			log.Warnf("Received second signal %v, forcing exit.", sig)
			os.Exit(1)
		case <-time.After(60 * time.Second):
			log.Warn("Graceful shutdown period exceeded. Forcing exit.")
			os.Exit(1)
		}
	}()

	return ctx, cancel
}

// runDownload handles the download subcommand
func runDownload(args []string) {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	configFile := fs.String("config", defaultConfigFile, "Path to config file")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")
	archiveRoot := fs.String("archive", "", "Archive directory (overrides config)")
	inputFile := fs.String("input", "", "Exported favorites JSON file (overrides config)")
	metadataDB := fs.String("metadata-db", "", "App metadata database for published dates (overrides config)")
	order := fs.String("order", "", "Traversal order: forward or alternate (overrides config)")
	workers := fs.Int("workers", 0, "Concurrent downloads (overrides config)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: podarchive download [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  podarchive download -archive ~/Podcasts -input favorites.json\n")
		fmt.Fprintf(os.Stderr, "  podarchive download -order alternate -workers 4\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	log := setupLogger(*logLevel)
	appCfg := loadAndValidateConfig(*configFile, func(c *config.AppConfig) {
		if *archiveRoot != "" {
			c.ArchiveRoot = *archiveRoot
		}
		if *inputFile != "" {
			c.InputFile = *inputFile
		}
		if *metadataDB != "" {
			c.MetadataDBPath = *metadataDB
		}
		if *order != "" {
			c.TraversalOrder = *order
		}
		if *workers > 0 {
			c.Workers = *workers
		}
	}, log)

	if appCfg.ArchiveRoot == "" {
		log.Fatal("Archive directory is required (config archive_root or -archive)")
	}
	if appCfg.InputFile == "" {
		log.Fatal("Favorites file is required (config input_file or -input)")
	}

	traversal, err := batch.ParseOrder(appCfg.TraversalOrder)
	if err != nil {
		log.Fatalf("Invalid traversal order: %v", err)
	}

	logEntry := log.WithField("component", "download")

	episodes, err := favorites.Load(appCfg.InputFile, logEntry)
	if err != nil {
		log.Fatalf("Favorites error: %v", err)
	}

	resolver := pubdate.Open(appCfg.MetadataDBPath, logEntry)
	defer resolver.Close()

	builder := naming.NewBuilder(resolver)
	httpClient := fetch.NewClient(appCfg, logEntry)
	fetcher := fetch.NewFetcher(httpClient, appCfg, logEntry)
	downloader := fetch.NewDownloader(httpClient, fetcher, appCfg, logEntry)
	ledger := report.NewLedger()
	driver := batch.NewDriver(appCfg, builder, downloader, ledger, logEntry)

	ctx, cancel := signalContext(log)
	defer cancel()

	summary, err := driver.Run(ctx, episodes, traversal)
	if err != nil {
		log.Fatalf("Run error: %v", err)
	}

	fmt.Printf("Downloaded %d, skipped %d, failed %d of %d favorite(s).\n",
		summary.Downloaded, summary.Skipped, summary.Failed, len(episodes))
	if summary.MissingPublishedDates > 0 {
		fmt.Printf("Episodes without a resolvable published date: %d\n", summary.MissingPublishedDates)
	}
	for _, line := range ledger.Render() {
		fmt.Println(line)
	}

	if summary.Failed > 0 {
		os.Exit(1)
	}
}

// runRename handles the rename subcommand
func runRename(args []string) {
	fs := flag.NewFlagSet("rename", flag.ExitOnError)
	configFile := fs.String("config", defaultConfigFile, "Path to config file")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")
	archiveRoot := fs.String("archive", "", "Archive directory (overrides config)")
	inputFile := fs.String("input", "", "Exported favorites JSON file (overrides config)")
	metadataDB := fs.String("metadata-db", "", "App metadata database for published dates (overrides config)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: podarchive rename [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	log := setupLogger(*logLevel)
	appCfg := loadAndValidateConfig(*configFile, func(c *config.AppConfig) {
		if *archiveRoot != "" {
			c.ArchiveRoot = *archiveRoot
		}
		if *inputFile != "" {
			c.InputFile = *inputFile
		}
		if *metadataDB != "" {
			c.MetadataDBPath = *metadataDB
		}
	}, log)

	if appCfg.ArchiveRoot == "" {
		log.Fatal("Archive directory is required (config archive_root or -archive)")
	}
	if appCfg.InputFile == "" {
		log.Fatal("Favorites file is required (config input_file or -input)")
	}

	logEntry := log.WithField("component", "rename")

	episodes, err := favorites.Load(appCfg.InputFile, logEntry)
	if err != nil {
		log.Fatalf("Favorites error: %v", err)
	}

	resolver := pubdate.Open(appCfg.MetadataDBPath, logEntry)
	defer resolver.Close()
	builder := naming.NewBuilder(resolver)

	counts, err := archive.Migrate(episodes, appCfg.ArchiveRoot, builder, logEntry)
	if err != nil {
		log.Fatalf("Migration error: %v", err)
	}

	fmt.Printf("Renamed %d file(s); %d already renamed, %d not on disk, %d collision(s).\n",
		counts.Renamed, counts.AlreadyRenamed, counts.Missing, counts.Collisions)
	if counts.Collisions > 0 {
		os.Exit(1)
	}
}

// runExport handles the export subcommand
func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configFile := fs.String("config", defaultConfigFile, "Path to config file")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")
	dbPath := fs.String("db", "", "App database to export from (overrides config metadata_db)")
	outPath := fs.String("out", "favorites.json", "Output JSON file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: podarchive export [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  podarchive export -db app.sqlite -out favorites.json\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	log := setupLogger(*logLevel)
	appCfg := loadAndValidateConfig(*configFile, func(c *config.AppConfig) {
		if *dbPath != "" {
			c.MetadataDBPath = *dbPath
		}
	}, log)

	if appCfg.MetadataDBPath == "" {
		log.Fatal("App database is required (config metadata_db or -db)")
	}

	logEntry := log.WithField("component", "export")

	episodes, err := export.Favorites(appCfg.MetadataDBPath, logEntry)
	if err != nil {
		log.Fatalf("Export error: %v", err)
	}
	if err := export.WriteJSON(*outPath, episodes); err != nil {
		log.Fatalf("Export error: %v", err)
	}

	fmt.Printf("Wrote %d favorite(s) to %s\n", len(episodes), *outPath)
}

// runTranscribe handles the transcribe subcommand
func runTranscribe(args []string) {
	fs := flag.NewFlagSet("transcribe", flag.ExitOnError)
	configFile := fs.String("config", defaultConfigFile, "Path to config file")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")
	archiveRoot := fs.String("archive", "", "Archive directory (overrides config)")
	tool := fs.String("tool", "", "Speech-to-text executable (overrides config)")
	format := fs.String("format", "", "Sidecar format: txt, srt or vtt (overrides config)")
	overwrite := fs.Bool("overwrite", false, "Regenerate existing sidecars")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: podarchive transcribe [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  podarchive transcribe -archive ~/Podcasts -tool whisper -format srt\n")
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	log := setupLogger(*logLevel)
	appCfg := loadAndValidateConfig(*configFile, func(c *config.AppConfig) {
		if *archiveRoot != "" {
			c.ArchiveRoot = *archiveRoot
		}
		if *tool != "" {
			c.Transcribe.Tool = *tool
		}
		if *format != "" {
			c.Transcribe.Format = *format
		}
		if *overwrite {
			c.Transcribe.Overwrite = true
		}
	}, log)

	if appCfg.ArchiveRoot == "" {
		log.Fatal("Archive directory is required (config archive_root or -archive)")
	}
	if appCfg.Transcribe.Tool == "" {
		log.Fatal("Transcription tool is required (config transcribe.tool or -tool)")
	}

	logEntry := log.WithField("component", "transcribe")

	ctx, cancel := signalContext(log)
	defer cancel()

	counts, err := transcribe.Run(ctx, appCfg.ArchiveRoot, transcribe.Options{
		Tool:       appCfg.Transcribe.Tool,
		Format:     appCfg.Transcribe.Format,
		Extensions: appCfg.Transcribe.Extensions,
		Overwrite:  appCfg.Transcribe.Overwrite,
	}, logEntry)
	if err != nil {
		log.Fatalf("Transcription error: %v", err)
	}

	fmt.Printf("Transcribed %d file(s); %d skipped, %d failed.\n",
		counts.Transcribed, counts.Skipped, counts.Failed)
	if counts.Failed > 0 {
		os.Exit(1)
	}
}

// runValidate handles the validate subcommand
func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configFile := fs.String("config", defaultConfigFile, "Path to config file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: podarchive validate [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	os.Exit(doValidate(*configFile, os.Stdout, os.Stderr))
}

// doValidate performs validation and writes output to provided writers.
// Returns exit code (0 = success, 1 = error).
func doValidate(configPath string, stdout, stderr io.Writer) int {
	appCfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	warnings, err := appCfg.Validate()
	for _, w := range warnings {
		fmt.Fprintf(stdout, "WARN: %s\n", w)
	}
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "Configuration valid.")
	return 0
}
