// Package cache provides a two-level cache for segmented documents. It
// includes an in-memory LRU cache (L1) and a persistent, zstd-compressed
// disk cache (L2), so reopening an unchanged document skips segmentation.
package cache
