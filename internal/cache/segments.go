package cache

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/docreader/tts"
)

// SegmentCache is a tts.Segmenter that remembers results by content hash,
// first in memory and then, when configured, on disk.
type SegmentCache struct {
	segmenter tts.Segmenter
	memory    *MemoryCache
	disk      *DiskCache
	logger    *log.Logger
}

// NewSegmentCache wraps segmenter with a cache built from cfg.
func NewSegmentCache(segmenter tts.Segmenter, cfg CacheConfig, logger *log.Logger) (*SegmentCache, error) {
	if segmenter == nil {
		return nil, errors.New("cache: nil segmenter")
	}
	if logger == nil {
		logger = log.Default().WithPrefix("cache")
	}

	memory, err := NewMemoryCache(cfg.MemoryEntries)
	if err != nil {
		return nil, fmt.Errorf("memory cache: %w", err)
	}

	sc := &SegmentCache{
		segmenter: segmenter,
		memory:    memory,
		logger:    logger,
	}

	if cfg.DiskPath != "" {
		sc.disk, err = NewDiskCache(cfg.DiskPath, cfg.DiskCapacity, cfg.CompressionLevel)
		if err != nil {
			return nil, fmt.Errorf("disk cache: %w", err)
		}
	}

	return sc, nil
}

// Segment implements tts.Segmenter.
func (sc *SegmentCache) Segment(text string) []string {
	key := ContentKey(text)

	if sentences, ok := sc.memory.Get(key); ok {
		sc.logger.Debug("segment cache hit", "level", CacheLevelL1, "sentences", len(sentences))
		return sentences
	}

	if sc.disk != nil {
		if sentences, ok := sc.disk.Get(key); ok {
			sc.logger.Debug("segment cache hit", "level", CacheLevelL2, "sentences", len(sentences))
			sc.memory.Put(key, sentences)
			return sentences
		}
	}

	sentences := sc.segmenter.Segment(text)
	sc.memory.Put(key, sentences)
	if sc.disk != nil {
		if err := sc.disk.Put(key, sentences); err != nil {
			sc.logger.Warn("could not persist sentences", "error", err)
		}
	}
	return sentences
}

// Stats returns statistics for each configured level.
func (sc *SegmentCache) Stats() map[CacheLevel]CacheStats {
	stats := map[CacheLevel]CacheStats{CacheLevelL1: sc.memory.Stats()}
	if sc.disk != nil {
		stats[CacheLevelL2] = sc.disk.Stats()
	}
	return stats
}

// Clear empties every level.
func (sc *SegmentCache) Clear() error {
	sc.memory.Clear()
	if sc.disk != nil {
		return sc.disk.Clear()
	}
	return nil
}

// Close persists the disk index.
func (sc *SegmentCache) Close() error {
	if sc.disk != nil {
		return sc.disk.Close()
	}
	return nil
}
