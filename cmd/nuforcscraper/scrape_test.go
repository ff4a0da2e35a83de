package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagOverridesOnlyChangedFlags(t *testing.T) {
	t.Cleanup(func() {
		logLevel, logFormat = "", ""
	})

	require.NoError(t, scrapeCmd.Flags().Parse([]string{
		"--max-pages", "3",
		"--settle-delay", "500ms",
		"--headless=false",
		"--output", "out.tsv",
	}))
	logLevel = "debug"

	flags := flagOverrides(scrapeCmd)

	assert.Equal(t, map[string]interface{}{
		"max-pages":    3,
		"settle-delay": 500 * time.Millisecond,
		"headless":     false,
		"output":       "out.tsv",
		"log-level":    "debug",
	}, flags)
}
