// Package export accumulates Records across pages and writes them to a
// delimited file once the traversal is over.
//
// Writes go to a temporary file in the destination directory that is renamed
// over the target, so a failed flush never leaves a truncated export behind.
// An optional JSON summary sidecar records how the run went.
package export
