package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/mkoster/diskview/internal/export"
	"github.com/mkoster/diskview/internal/image"
	"github.com/mkoster/diskview/internal/logger"
	"github.com/mkoster/diskview/internal/search"
	"github.com/mkoster/diskview/pkg/config"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	initConfig := flag.Bool("init-config", false, "Write the default configuration to diskview.yaml and exit")
	logLevel := flag.String("log-level", "", "Override configured log level (DEBUG, INFO, WARN, ERROR)")
	exportFormat := flag.String("export", "", "Write an export artifact (json, csv, xml, html); empty disables")
	outDir := flag.String("out", ".", "Directory for export artifacts")
	searchQuery := flag.String("search", "", "Search the reconstructed tree and print results")
	includeDeleted := flag.Bool("include-deleted", false, "Include deleted items in search results")
	analyze := flag.Bool("analyze", false, "Print duplicate, large, recent and deleted file reports")
	flag.Parse()

	if *initConfig {
		data, err := config.DumpDefault()
		if err != nil {
			log.Fatalf("Failed to render default config: %v", err)
		}
		if err := os.WriteFile("diskview.yaml", data, 0o644); err != nil {
			log.Fatalf("Failed to write diskview.yaml: %v", err)
		}
		fmt.Println("Wrote diskview.yaml")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	logger.SetLevel(cfg.Logging.Level)

	imagePath := flag.Arg(0)
	if imagePath == "" {
		fmt.Fprintln(os.Stderr, "usage: diskview [flags] <image file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	buf, err := os.ReadFile(imagePath)
	if err != nil {
		log.Fatalf("Failed to read image: %v", err)
	}
	logger.Info("loaded %s (%s)", imagePath, humanize.IBytes(uint64(len(buf))))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	parser := image.NewParser(image.ParserOptions{
		Limits: image.Limits{
			MaxTreeDepth:     cfg.Parser.MaxTreeDepth,
			MaxLeafEntries:   cfg.Parser.MaxLeafEntries,
			MaxChildPointers: cfg.Parser.MaxChildPointers,
			MaxScanEntries:   cfg.Parser.MaxScanEntries,
			MinEntryStep:     cfg.Parser.MinEntryStep,
			BlockBudget:      cfg.Parser.BlockBudget,
		},
		Progress: image.ProgressFunc(func(stage string, percent int) {
			logger.Info("[%3d%%] %s", percent, stage)
		}),
	})

	result, err := parser.Parse(ctx, buf)
	if err != nil {
		log.Fatalf("Parse failed: %v", err)
	}

	printSummary(result)

	idx := search.Build(result.Roots)
	engine := search.NewEngine(idx)

	if *searchQuery != "" {
		runSearch(engine, *searchQuery, *includeDeleted)
	}

	if *analyze {
		runAnalytics(engine, cfg.Search)
	}

	if *exportFormat != "" {
		opts := export.Options{
			Format:          export.Format(*exportFormat),
			IncludeMetadata: cfg.Export.IncludeMetadata,
			IncludeDeleted:  cfg.Export.IncludeDeleted,
			IncludeHashes:   cfg.Export.IncludeHashes,
			Flatten:         cfg.Export.Flatten,
			Prefix:          cfg.Export.Prefix,
		}
		artifact, err := export.Export(result.Roots, opts)
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}

		target := filepath.Join(*outDir, artifact.Filename)
		if err := os.WriteFile(target, artifact.Data, 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", target, err)
		}
		logger.Info("wrote %s (%s, %s)", target, artifact.MIMEType, humanize.IBytes(uint64(artifact.Size)))
	}
}

func printSummary(result *image.ParseResult) {
	geom := result.Geometry

	fmt.Println()
	fmt.Printf("Volume %s (block size %d, %d blocks)\n", geom.VolumeID, geom.BlockSize, geom.TotalBlocks)
	if result.Synthetic {
		fmt.Println("NOTE: input was not a recognized image; showing illustrative sample structure")
	}

	stats := result.Stats
	fmt.Printf("%d files, %d directories, %d deleted, %s total\n",
		stats.FileCount, stats.DirectoryCount, stats.DeletedCount, humanize.IBytes(stats.TotalSize))
	if stats.LargestFile != nil {
		fmt.Printf("largest file: %s (%s)\n", stats.LargestFile.Path, humanize.IBytes(stats.LargestFile.Size))
	}
	fmt.Println()
}

// runAnalytics prints the analytic reports using the configured thresholds.
func runAnalytics(engine *search.Engine, cfg config.SearchConfig) {
	if groups := engine.FindDuplicateFiles(); len(groups) > 0 {
		fmt.Printf("Duplicate files (%d groups):\n", len(groups))
		for _, group := range groups {
			fmt.Printf("  %s (%d copies)\n", group[0].Meta.MD5, len(group))
			for _, node := range group {
				fmt.Printf("    %s\n", node.Path)
			}
		}
		fmt.Println()
	}

	large := engine.FindLargeFiles(cfg.LargeFileThreshold)
	fmt.Printf("Files over %s: %d\n", humanize.IBytes(cfg.LargeFileThreshold), len(large))
	for _, node := range large {
		fmt.Printf("  %10s  %s\n", humanize.IBytes(node.Size), node.Path)
	}

	recent := engine.FindRecentFiles(cfg.RecentDays)
	fmt.Printf("Modified in the last %d days: %d\n", cfg.RecentDays, len(recent))
	for _, node := range recent {
		fmt.Printf("  %s  %s\n", node.ModifiedAt.Format("2006-01-02 15:04"), node.Path)
	}

	deleted := engine.FindDeletedFiles()
	fmt.Printf("Deleted items: %d\n", len(deleted))
	for _, node := range deleted {
		fmt.Printf("  %s\n", node.Path)
	}
	fmt.Println()
}

func runSearch(engine *search.Engine, query string, includeDeleted bool) {
	results := engine.Search(search.Options{
		Query:          query,
		SearchInPath:   true,
		IncludeDeleted: includeDeleted,
	})

	fmt.Printf("%d results for %q\n", len(results), query)
	const maxShown = 20
	for i, res := range results {
		if i == maxShown {
			fmt.Printf("... and %d more\n", len(results)-maxShown)
			break
		}
		marker := ""
		if res.Node.Meta != nil && res.Node.Meta.Deleted {
			marker = " [deleted]"
		}
		fmt.Printf("  %3d  %s%s\n", res.Score, res.Node.Path, marker)
	}
	fmt.Println()
}
