package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func keepSet(names ...string) map[string]struct{} {
	keep := make(map[string]struct{}, len(names))
	for _, name := range names {
		keep[name] = struct{}{}
	}

	return keep
}

func TestComputeKeepSet(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	deltas := []Delta{
		{Window: 24 * time.Hour, Resolution: 24 * time.Hour},
		{Window: 7 * 24 * time.Hour, Resolution: 24 * time.Hour},
	}

	backups := map[string]time.Time{
		"a": now,                            // 0h, first tier, bucket 0
		"b": now.Add(-12 * time.Hour),       // 12h, loses bucket 0 to a
		"c": now.Add(-42 * time.Hour),       // 42h, second tier, bucket 1
		"d": now.Add(-96 * time.Hour),       // 96h, second tier, bucket 4
		"e": now.Add(-8 * 24 * time.Hour),   // 192h, past the last window
	}

	keep := ComputeKeepSet(backups, deltas, now)

	assert.Equal(t, keepSet("a", "c", "d"), keep)
}

func TestComputeKeepSet_EmptyDeltasKeepsEverything(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	backups := map[string]time.Time{
		"a": now,
		"b": now.Add(-400 * 24 * time.Hour),
	}

	keep := ComputeKeepSet(backups, nil, now)

	assert.Equal(t, keepSet("a", "b"), keep)
}

func TestComputeKeepSet_NewestSurvivesBeyondAllWindows(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	deltas := []Delta{
		{Window: time.Hour, Resolution: time.Hour},
		{Window: 24 * time.Hour, Resolution: 24 * time.Hour},
	}

	// everything is ancient, only the newest one stays
	backups := map[string]time.Time{
		"old":   now.Add(-30 * 24 * time.Hour),
		"older": now.Add(-60 * 24 * time.Hour),
	}

	keep := ComputeKeepSet(backups, deltas, now)

	assert.Equal(t, keepSet("old"), keep)
}

func TestComputeKeepSet_OnePerBucket(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	deltas := []Delta{
		{Window: 24 * time.Hour, Resolution: 24 * time.Hour},
		{Window: 7 * 24 * time.Hour, Resolution: 24 * time.Hour},
	}

	// all three land in bucket 1 of the second tier
	backups := map[string]time.Time{
		"newest": now.Add(-25 * time.Hour),
		"middle": now.Add(-30 * time.Hour),
		"oldest": now.Add(-47 * time.Hour),
	}

	keep := ComputeKeepSet(backups, deltas, now)

	assert.Equal(t, keepSet("newest"), keep)
}

func TestComputeKeepSet_FutureBackupsShareBucketZero(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	deltas := []Delta{
		{Window: 24 * time.Hour, Resolution: 24 * time.Hour},
		{Window: 7 * 24 * time.Hour, Resolution: 24 * time.Hour},
	}

	// a clock skewed host produced a backup from the future
	backups := map[string]time.Time{
		"future":  now.Add(3 * time.Hour),
		"current": now,
	}

	keep := ComputeKeepSet(backups, deltas, now)

	assert.Equal(t, keepSet("future"), keep)
}

func TestComputeKeepSet_Empty(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	deltas := []Delta{
		{Window: 24 * time.Hour, Resolution: 24 * time.Hour},
		{Window: 7 * 24 * time.Hour, Resolution: 24 * time.Hour},
	}

	keep := ComputeKeepSet(map[string]time.Time{}, deltas, now)

	assert.Empty(t, keep)
}

func TestComputeKeepSet_WindowBoundaryIsInclusive(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	deltas := []Delta{
		{Window: 24 * time.Hour, Resolution: 24 * time.Hour},
		{Window: 7 * 24 * time.Hour, Resolution: 24 * time.Hour},
	}

	// exactly 7 days old still belongs to the second tier
	backups := map[string]time.Time{
		"a":    now,
		"edge": now.Add(-7 * 24 * time.Hour),
	}

	keep := ComputeKeepSet(backups, deltas, now)

	assert.Equal(t, keepSet("a", "edge"), keep)
}
