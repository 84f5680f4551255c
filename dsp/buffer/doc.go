// Package buffer provides the fixed-capacity sample ring used by streaming
// feature pipelines, plus a reusable float64 buffer type and pool for
// allocation-friendly processing. Analysis functions accept raw []float64;
// Buffer is an optional convenience that helps callers manage allocation and
// reuse in hot paths.
package buffer
