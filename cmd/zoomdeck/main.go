package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ivlev/zoomdeck/internal/chain"
	"github.com/ivlev/zoomdeck/internal/config"
	"github.com/ivlev/zoomdeck/internal/system"
)

// Set with -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[*] .env not found, using system environment variables")
	}

	deckPtr := flag.String("deck", "", "Deck file (default: the most recent deck in input/decks/)")
	slidePtr := flag.Int("slide", -1, "Source slide index, 0-based (default: the deck's current slide)")
	shapesPtr := flag.String("shapes", "", "Comma-separated shape IDs or names to zoom into (default: the deck's selection)")
	modePtr := flag.String("mode", "", "Zoom mode: multi or single (default from config)")
	outPtr := flag.String("out", "", "Output deck (default: output/<deck>_<timestamp>.yaml)")
	storyboardPtr := flag.String("storyboard", "", "Write the camera storyboard to this file, or \"auto\"")
	configPtr := flag.String("config", "zoomdeck.yaml", "Config file")
	statsPtr := flag.Bool("stats", false, "Print a performance report")
	batchPtr := flag.String("batch", "", "Process every deck in this directory")
	workersPtr := flag.Int("workers", 0, "Concurrent decks in batch mode (default from config)")
	rememberPtr := flag.Bool("remember", false, "Save the chosen mode to the config file")
	logFormatPtr := flag.String("log-format", "", "Log format: text or json (default from config)")
	keepMarkersPtr := flag.Bool("keep-markers", true, "Keep the marker rectangles on the source slide")
	revertPtr := flag.Bool("revert", false, "Undo partial changes when synthesis fails")
	ackPtr := flag.Bool("ack", false, "Append a hidden acknowledgement slide")

	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[!] %v", err)
	}

	// Flags given on the command line win over the file and the environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "mode":
			cfg.Mode = *modePtr
		case "workers":
			cfg.Workers = *workersPtr
		case "log-format":
			cfg.LogFormat = *logFormatPtr
		case "stats":
			cfg.ShowStats = *statsPtr
		case "keep-markers":
			cfg.KeepMarkers = *keepMarkersPtr
		case "revert":
			cfg.RevertOnFailure = *revertPtr
		case "ack":
			cfg.AddAckSlide = *ackPtr
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[!] Invalid configuration: %v", err)
	}
	mode, err := chain.ParseMode(cfg.Mode)
	if err != nil {
		log.Fatalf("[!] %v", err)
	}

	logger := newLogger(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(logger)

	if *rememberPtr {
		if err := cfg.Save(*configPtr); err != nil {
			log.Printf("[!] Could not save %s: %v", *configPtr, err)
		} else {
			fmt.Printf("[*] Mode %q saved to %s\n", cfg.Mode, *configPtr)
		}
	}

	for _, d := range []string{cfg.DecksDir, "output"} {
		os.MkdirAll(d, 0755)
	}

	job := jobOptions{
		Slide:      *slidePtr,
		Shapes:     splitList(*shapesPtr),
		Mode:       mode,
		Storyboard: *storyboardPtr,
		OutDir:     "output",
		Config:     cfg,
		Log:        logger,
	}

	start := time.Now()
	var results []deckResult

	if *batchPtr != "" {
		decks, err := system.ListDecks(*batchPtr)
		if err != nil {
			log.Fatalf("[!] %v", err)
		}
		system.RaiseFileLimit(uint64(4 * len(decks)))
		fmt.Printf("[*] Processing %d decks with %d workers...\n", len(decks), cfg.Workers)
		results = runBatch(context.Background(), decks, job)
	} else {
		deckPath := *deckPtr
		if deckPath == "" {
			deckPath, err = system.FindLatestDeck(cfg.DecksDir)
			if err != nil {
				log.Fatalf("[!] No deck given and none found: %v", err)
			}
			fmt.Printf("[*] Using the most recent deck: %s\n", deckPath)
		}
		job.Out = *outPtr
		res := processDeck(context.Background(), deckPath, job)
		results = []deckResult{res}
	}

	failed := 0
	report := system.Report{Build: buildVersion, Decks: len(results)}
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Printf("[!] %s: %v\n", r.Deck, r.Err)
			continue
		}
		report.Slides += r.Slides
		report.Removed += r.Removed
		fmt.Printf("[+++] %s -> %s (%d slides)\n", r.Deck, r.Out, r.Slides)
		if r.Storyboard != "" {
			fmt.Printf("[+++] Storyboard: %s\n", r.Storyboard)
		}
	}
	report.Failed = failed
	report.Total = time.Since(start)

	if cfg.ShowStats {
		if st, err := system.ProcessStats(); err == nil {
			report.Resource = st
		} else {
			log.Printf("[!] Could not read process stats: %v", err)
		}
		fmt.Print(report.String())
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func newLogger(format, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// defaultOut names the output deck after the input deck plus a timestamp.
func defaultOut(dir, deckPath string, now time.Time) string {
	base := filepath.Base(deckPath)
	name := strings.ReplaceAll(strings.TrimSuffix(base, filepath.Ext(base)), " ", "_")
	return filepath.Join(dir, fmt.Sprintf("%s_%s.yaml", name, now.Format("2006-01-02_15-04-05")))
}
