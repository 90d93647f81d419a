package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnakeCase(t *testing.T) {
	cases := map[string]string{
		"Id":         "id",
		"Job":        "job",
		"DryRun":     "dry_run",
		"CreatedAt":  "created_at",
		"JobID":      "job_id",
		"HTTPServer": "http_server",
		"already":    "already",
		"":           "",
	}

	for in, want := range cases {
		assert.Equal(t, want, SnakeCase(in), in)
	}
}
