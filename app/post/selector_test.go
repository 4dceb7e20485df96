package post

import (
	"math/rand"
	"testing"

	"github.com/dkovalev/autoinstapost/app/database"
	"github.com/dkovalev/autoinstapost/app/drive"
)

func photoSet(ids ...string) []drive.Photo {
	photos := make([]drive.Photo, 0, len(ids))
	for _, id := range ids {
		photos = append(photos, drive.Photo{ID: id, Name: id + ".jpg"})
	}
	return photos
}

func TestEligiblePool(t *testing.T) {
	photos := photoSet("a", "b", "c", "d", "e")

	pool := EligiblePool(photos, []string{"b", "d"}, []string{"e"})
	if len(pool) != 2 {
		t.Fatalf("Expected 2 eligible photos, got %d", len(pool))
	}
	if pool[0].ID != "a" || pool[1].ID != "c" {
		t.Errorf("Expected [a c] in input order, got %v", pool)
	}
}

func TestSelectCandidatesBound(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name      string
		photos    []drive.Photo
		marked    []string
		pickCount int
		expected  int
	}{
		{"pool larger than pick", photoSet("a", "b", "c", "d", "e"), nil, 3, 3},
		{"pool smaller than pick", photoSet("a", "b"), nil, 3, 2},
		{"everything marked", photoSet("a", "b"), []string{"a", "b"}, 3, 0},
		{"empty folder", nil, nil, 3, 0},
		{"zero pick uses default", photoSet("a", "b", "c", "d", "e"), nil, 0, 3},
		{"pick capped at carousel limit", photoSet("a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"), nil, 12, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected := SelectCandidates(tt.photos, tt.marked, nil, tt.pickCount, rng)
			if len(selected) != tt.expected {
				t.Errorf("Expected %d photos, got %d", tt.expected, len(selected))
			}
		})
	}
}

func TestSelectCandidatesNeverReturnsMarked(t *testing.T) {
	photos := photoSet("a", "b", "c", "d", "e", "f")
	marked := []string{"a", "c"}
	excluded := []string{"e"}

	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		selected := SelectCandidates(photos, marked, excluded, 3, rng)

		for _, photo := range selected {
			for _, id := range marked {
				if photo.ID == id {
					t.Errorf("Seed %d: selected marked photo %s", seed, id)
				}
			}
			for _, id := range excluded {
				if photo.ID == id {
					t.Errorf("Seed %d: selected excluded photo %s", seed, id)
				}
			}
		}
	}
}

func TestSelectCandidatesDistinct(t *testing.T) {
	photos := photoSet("a", "b", "c", "d", "e")
	rng := rand.New(rand.NewSource(42))

	selected := SelectCandidates(photos, nil, nil, 5, rng)
	seen := map[string]bool{}
	for _, photo := range selected {
		if seen[photo.ID] {
			t.Errorf("Photo %s selected twice", photo.ID)
		}
		seen[photo.ID] = true
	}
}

func TestSelectCandidatesDeterministicWithSeed(t *testing.T) {
	photos := photoSet("a", "b", "c", "d", "e", "f", "g")

	first := SelectCandidates(photos, nil, nil, 3, rand.New(rand.NewSource(7)))
	second := SelectCandidates(photoSet("a", "b", "c", "d", "e", "f", "g"), nil, nil, 3, rand.New(rand.NewSource(7)))

	if len(first) != len(second) {
		t.Fatalf("Expected equal lengths, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("Expected identical draws for identical seeds, got %v and %v", first, second)
		}
	}
}

func TestPendingFileIDs(t *testing.T) {
	posts := []database.PendingPost{
		{ID: "p1", FileIDs: []string{"a", "b"}},
		{ID: "p2", FileIDs: []string{"c"}},
	}

	ids := PendingFileIDs(posts)
	if len(ids) != 3 {
		t.Fatalf("Expected 3 ids, got %d: %v", len(ids), ids)
	}
	if ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("Expected [a b c], got %v", ids)
	}
}
