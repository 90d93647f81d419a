package domain

import (
	"sort"
	"time"
)

// Backup is one archive that belongs to a job: its archive name and the
// creation time recovered from that name.
type Backup struct {
	Name string
	Time time.Time
}

// SortedBackups orders a backup set newest first. Ties on the timestamp are
// broken by name, ascending, so processing order is deterministic.
func SortedBackups(backups map[string]time.Time) []Backup {
	sorted := make([]Backup, 0, len(backups))
	for name, ts := range backups {
		sorted = append(sorted, Backup{Name: name, Time: ts})
	}

	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Time.Equal(sorted[j].Time) {
			return sorted[i].Time.After(sorted[j].Time)
		}

		return sorted[i].Name < sorted[j].Name
	})

	return sorted
}
