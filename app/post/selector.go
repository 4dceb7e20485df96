package post

import (
	"math/rand"

	"github.com/dkovalev/autoinstapost/app/database"
	"github.com/dkovalev/autoinstapost/app/drive"
)

const (
	// DefaultPickCount is how many photos a scheduled run draws.
	DefaultPickCount = 3

	// MaxCarouselPhotos is the publishing target's per-post photo limit.
	MaxCarouselPhotos = 10
)

// EligiblePool filters out photos that were already published (marked) or
// are sitting in the pending queue (excluded). Order of the input is kept,
// and nothing is consumed.
func EligiblePool(photos []drive.Photo, marked, excluded []string) []drive.Photo {
	skip := make(map[string]bool, len(marked)+len(excluded))
	for _, id := range marked {
		skip[id] = true
	}
	for _, id := range excluded {
		skip[id] = true
	}

	pool := make([]drive.Photo, 0, len(photos))
	for _, photo := range photos {
		if !skip[photo.ID] {
			pool = append(pool, photo)
		}
	}
	return pool
}

// SelectCandidates draws up to pickCount distinct photos from the eligible
// pool uniformly at random without replacement. The result order is the
// publish order, first photo is the cover. An empty pool yields an empty
// result; the caller treats that as a skipped run, not an error.
func SelectCandidates(photos []drive.Photo, marked, excluded []string, pickCount int, rng *rand.Rand) []drive.Photo {
	pool := EligiblePool(photos, marked, excluded)
	if len(pool) == 0 {
		return nil
	}

	if pickCount <= 0 {
		pickCount = DefaultPickCount
	}
	if pickCount > MaxCarouselPhotos {
		pickCount = MaxCarouselPhotos
	}
	if pickCount > len(pool) {
		pickCount = len(pool)
	}

	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	return pool[:pickCount]
}

// PendingFileIDs collects every photo id referenced by the pending queue, so
// queued-but-undecided photos are not drawn again.
func PendingFileIDs(posts []database.PendingPost) []string {
	var all []string
	for _, post := range posts {
		all = append(all, post.FileIDs...)
	}
	return all
}
