package domain

import "time"

// ComputeKeepSet decides which backups of a job survive.
//
// Backups are walked newest first. Each backup lands in the first tier whose
// window still covers its age and claims that tier's bucket, age divided by
// the tier's resolution. The first backup to claim a bucket is kept, every
// later (older) one competing for the same bucket is dropped. A backup older
// than every window has expired.
//
//	age:    0h   12h         42h                 96h                  192h
//	        A    B           C                   D                    E
//	tier 0: [0 ........ 1d]
//	tier 1: [0 ............................................. 7d]
//	bucket:  #0   #0          #1                  #4                  -
//	         ^    dropped     ^                   ^                   expired
//
// Two guarantees hold regardless of tier configuration: an empty tier list
// keeps everything, and the newest backup is always kept, even when it is
// older than every window.
func ComputeKeepSet(backups map[string]time.Time, deltas []Delta, now time.Time) map[string]struct{} {
	keep := make(map[string]struct{}, len(backups))

	if len(deltas) == 0 {
		for name := range backups {
			keep[name] = struct{}{}
		}

		return keep
	}

	type slot struct {
		tier   int
		bucket int64
	}
	taken := make(map[slot]struct{})

	for i, backup := range SortedBackups(backups) {
		age := now.Sub(backup.Time)

		tier := -1
		for t, delta := range deltas {
			if age <= delta.Window {
				tier = t
				break
			}
		}

		if tier < 0 {
			if i == 0 {
				keep[backup.Name] = struct{}{}
			}
			continue
		}

		// backups from the future compete for the first bucket
		s := slot{tier: tier}
		if age > 0 {
			s.bucket = int64(age / deltas[tier].Resolution)
		}

		if _, ok := taken[s]; ok {
			continue
		}

		taken[s] = struct{}{}
		keep[backup.Name] = struct{}{}
	}

	return keep
}
