package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/zoomdeck/internal/chain"
	"github.com/ivlev/zoomdeck/internal/config"
	"github.com/ivlev/zoomdeck/internal/host"
	"github.com/ivlev/zoomdeck/internal/storyboard"
	"github.com/ivlev/zoomdeck/internal/synth"
)

type jobOptions struct {
	Slide  int
	Shapes []string
	Mode   chain.Mode
	// Out is the output path for a single deck; empty means a timestamped
	// file in OutDir.
	Out        string
	OutDir     string
	Storyboard string
	Config     config.Config
	Log        *slog.Logger
}

type deckResult struct {
	Deck       string
	Out        string
	Storyboard string
	Slides     int
	Removed    int
	Err        error
}

// runBatch synthesizes every deck concurrently. Each deck is loaded, edited
// and saved by one goroutine; a failed deck does not stop the others.
func runBatch(ctx context.Context, decks []string, job jobOptions) []deckResult {
	results := make([]deckResult, len(decks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(job.Config.Workers)
	for i, path := range decks {
		deckJob := job
		deckJob.Out = ""
		deckJob.Storyboard = batchStoryboardPath(job.Storyboard, path)
		g.Go(func() error {
			results[i] = processDeck(ctx, path, deckJob)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func processDeck(ctx context.Context, path string, job jobOptions) deckResult {
	res := deckResult{Deck: path}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	log := job.Log.With("deck", filepath.Base(path))

	deck, err := host.LoadDeck(path)
	if err != nil {
		res.Err = fmt.Errorf("load: %w", err)
		return res
	}

	if job.Slide >= 0 {
		if err := deck.GotoSlide(job.Slide); err != nil {
			res.Err = fmt.Errorf("slide %d: %w", job.Slide, err)
			return res
		}
	}
	if len(job.Shapes) > 0 {
		source, err := deck.CurrentSlide()
		if err != nil {
			res.Err = err
			return res
		}
		ids := make([]host.ShapeID, 0, len(job.Shapes))
		for _, ref := range job.Shapes {
			id, err := deck.ResolveShape(source, ref)
			if err != nil {
				res.Err = err
				return res
			}
			ids = append(ids, id)
		}
		deck.Select(ids...)
	}

	opts := synth.Options{
		KeepMarkers:     job.Config.KeepMarkers,
		RevertOnFailure: job.Config.RevertOnFailure,
		AddAckSlide:     job.Config.AddAckSlide,
	}
	out, err := synth.New(deck, opts, log).SynthesizeZoomNavigation(job.Mode)
	if err != nil {
		res.Err = err
		return res
	}
	res.Slides = len(out.Chain.Committed())
	res.Removed = out.Removed

	now := time.Now()
	res.Out = job.Out
	if res.Out == "" {
		res.Out = defaultOut(job.OutDir, path, now)
	}
	if err := host.SaveDeck(deck, res.Out); err != nil {
		res.Err = fmt.Errorf("save: %w", err)
		return res
	}

	if job.Storyboard != "" {
		sb, err := storyboard.FromDeck(deck, out.Chain, job.Config.StepDuration)
		if err != nil {
			res.Err = err
			return res
		}
		res.Storyboard = storyboardPath(job.Storyboard, res.Out)
		if err := storyboard.Write(sb, res.Storyboard); err != nil {
			res.Err = fmt.Errorf("storyboard: %w", err)
			return res
		}
	}
	return res
}

// storyboardPath resolves the -storyboard flag. "auto" places the storyboard
// next to the output deck.
func storyboardPath(flagValue, outDeck string) string {
	if flagValue == "auto" {
		return strings.TrimSuffix(outDeck, filepath.Ext(outDeck)) + "_storyboard.yaml"
	}
	return flagValue
}

// batchStoryboardPath suffixes a fixed storyboard name with the deck name so
// decks in one batch do not overwrite each other.
func batchStoryboardPath(flagValue, deck string) string {
	if flagValue == "" || flagValue == "auto" {
		return flagValue
	}
	ext := filepath.Ext(flagValue)
	base := strings.TrimSuffix(filepath.Base(deck), filepath.Ext(deck))
	return fmt.Sprintf("%s_%s%s", strings.TrimSuffix(flagValue, ext), base, ext)
}
