package naming

import (
	zerrors "github.com/ivlev/zoomdeck/internal/errors"
)

// SlideDeck is the part of the host document the cleanup scan needs.
type SlideDeck interface {
	SlideCount() int
	SlideNameAt(index int) (string, error)
	DeleteSlideAt(index int) error
}

// FindAndRemoveStaleChain deletes the generated slides that follow the source
// slide at sourceIndex. Chains are always emitted contiguously right after
// their root, so the scan stops at the first slide that is not a generated
// artifact. Nothing is removed unless the source is a synthesis root.
// It returns the number of deleted slides.
func FindAndRemoveStaleChain(deck SlideDeck, sourceIndex int) (int, error) {
	name, err := deck.SlideNameAt(sourceIndex)
	if err != nil {
		return 0, zerrors.NewStaleChainRemovalError(sourceIndex, err)
	}
	if !IsSynthesisRoot(name) {
		return 0, nil
	}

	removed := 0
	next := sourceIndex + 1
	for next < deck.SlideCount() {
		name, err := deck.SlideNameAt(next)
		if err != nil {
			return removed, zerrors.NewStaleChainRemovalError(next, err)
		}
		if !MatchesGeneratedArtifact(name) {
			break
		}
		// Deleting shifts the following slide into next.
		if err := deck.DeleteSlideAt(next); err != nil {
			return removed, zerrors.NewStaleChainRemovalError(next, err)
		}
		removed++
	}
	return removed, nil
}
