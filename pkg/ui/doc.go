// Package ui prints human-facing progress and summaries for the CLI.
//
// Colors are off when stdout is not a terminal and can be turned off with
// SetColor. Quiet mode drops everything but errors.
package ui
