package stats

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/alexivanou/cityweather/internal/presenter"
)

type Stats struct {
	Timestamp time.Time          `json:"timestamp"`
	Memory    MemoryStats        `json:"memory"`
	Lookups   presenter.Counters `json:"lookups"`
	Catalog   CatalogStats       `json:"catalog"`
	Runtime   RuntimeStats       `json:"runtime"`
}

type MemoryStats struct {
	Alloc        uint64 `json:"alloc"`
	TotalAlloc   uint64 `json:"total_alloc"`
	Sys          uint64 `json:"sys"`
	NumGC        uint32 `json:"num_gc"`
	HeapAlloc    uint64 `json:"heap_alloc"`
	HeapInuse    uint64 `json:"heap_inuse"`
	HeapReleased uint64 `json:"heap_released"`
}

type CatalogStats struct {
	Cities int64  `json:"cities"`
	Error  string `json:"error,omitempty"`
}

type RuntimeStats struct {
	NumGoroutines int   `json:"num_goroutines"`
	NumCPU        int   `json:"num_cpu"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// CounterSource reports lookup totals
type CounterSource interface {
	Counters() presenter.Counters
}

// CatalogSource reports the size of the city catalog
type CatalogSource interface {
	CatalogSize(ctx context.Context) (int64, error)
}

type Collector struct {
	lookups    CounterSource
	catalog    CatalogSource
	startTime  time.Time
	cachedMem  *MemoryStats
	cacheTime  time.Time
	cacheMutex sync.RWMutex
}

var (
	memStatsCacheDuration = 5 * time.Second
)

func NewCollector(lookups CounterSource, catalog CatalogSource) *Collector {
	return &Collector{
		lookups:   lookups,
		catalog:   catalog,
		startTime: time.Now(),
	}
}

// Collect never fails on a catalog error; it is reported inside the result
func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Timestamp: time.Now(),
	}

	stats.Memory = c.collectMemoryStats()
	if c.lookups != nil {
		stats.Lookups = c.lookups.Counters()
	}
	stats.Catalog = c.collectCatalogStats(ctx)
	stats.Runtime = c.collectRuntimeStats()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (c *Collector) collectMemoryStats() MemoryStats {
	c.cacheMutex.RLock()
	if c.cachedMem != nil && time.Since(c.cacheTime) < memStatsCacheDuration {
		mem := *c.cachedMem
		c.cacheMutex.RUnlock()
		return mem
	}
	c.cacheMutex.RUnlock()

	c.cacheMutex.Lock()
	defer c.cacheMutex.Unlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mem := MemoryStats{
		Alloc:        m.Alloc,
		TotalAlloc:   m.TotalAlloc,
		Sys:          m.Sys,
		NumGC:        m.NumGC,
		HeapAlloc:    m.HeapAlloc,
		HeapInuse:    m.HeapInuse,
		HeapReleased: m.HeapReleased,
	}

	c.cachedMem = &mem
	c.cacheTime = time.Now()

	return mem
}

func (c *Collector) collectCatalogStats(ctx context.Context) CatalogStats {
	if c.catalog == nil {
		return CatalogStats{}
	}
	count, err := c.catalog.CatalogSize(ctx)
	if err != nil {
		return CatalogStats{Error: err.Error()}
	}
	return CatalogStats{Cities: count}
}

func (c *Collector) collectRuntimeStats() RuntimeStats {
	uptime := time.Since(c.startTime).Seconds()
	return RuntimeStats{
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		UptimeSeconds: int64(uptime),
	}
}
