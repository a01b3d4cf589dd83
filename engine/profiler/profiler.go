// Package profiler reports frame rate, memory and procedural batch occupancy at a fixed interval.
package profiler

import (
	"fmt"
	"log"
	"runtime"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural"
)

// BatchSample is a snapshot of one pass taken after its Execute.
type BatchSample struct {
	Pass      string
	Instances int
	Packed    int
	Discarded int
	// Occupancy is the fill ratio of the fullest of the pass buffers, in [0, 1].
	Occupancy float64
}

// Sample builds a BatchSample from a pass's accumulator and last flush.
//
// Parameters:
//   - p: the pass to sample
//
// Returns:
//   - BatchSample: the snapshot
func Sample(p procedural.Pass) BatchSample {
	acc := p.Accumulator()
	last := p.LastFlush()

	occupancy := 0.0
	for _, fill := range [][2]int{
		{acc.VertexBuffer().WriteOffset(), acc.VertexBuffer().Capacity()},
		{acc.IndexBuffer().WriteOffset(), acc.IndexBuffer().Capacity()},
		{acc.InstanceBuffer().WriteOffset(), acc.InstanceBuffer().Capacity()},
	} {
		if fill[1] > 0 {
			occupancy = max(occupancy, float64(fill[0])/float64(fill[1]))
		}
	}

	return BatchSample{
		Pass:      p.Name(),
		Instances: acc.InstanceCount(),
		Packed:    last.Packed,
		Discarded: last.Discarded,
		Occupancy: occupancy,
	}
}

// profiler is the implementation of the Profiler interface.
type profiler struct {
	logger         *log.Logger
	now            func() time.Time
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	// batches holds the latest sample per pass, in first-observed order.
	batches     []BatchSample
	batchIndex  map[string]int
	discarded   map[string]int
	lastSummary string
}

// Profiler tracks frame rate, memory and batch statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler interface {
	// Observe records the latest batch sample of a pass. Discarded counts accumulate until the next report.
	//
	// Parameters:
	//   - sample: the batch sample
	Observe(sample BatchSample)

	// Tick should be called once per frame to track frame timing.
	// Logs performance statistics when the update interval has elapsed.
	//
	// Returns:
	//   - bool: true if stats were logged this tick, false otherwise
	Tick() bool

	// Summary returns the most recent report line, or an empty string before the first report.
	Summary() string
}

var _ Profiler = &profiler{}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) Profiler {
	p := &profiler{
		logger:         log.Default(),
		now:            time.Now,
		updateInterval: time.Second,
		batchIndex:     make(map[string]int),
		discarded:      make(map[string]int),
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

func (p *profiler) Observe(sample BatchSample) {
	i, ok := p.batchIndex[sample.Pass]
	if !ok {
		i = len(p.batches)
		p.batchIndex[sample.Pass] = i
		p.batches = append(p.batches, sample)
	}
	p.batches[i] = sample
	p.discarded[sample.Pass] += sample.Discarded
}

func (p *profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs)",
		fps, allocMB, allocRateMB, gcCount-p.lastGCCount, lastPauseUs)
	for _, b := range p.batches {
		fmt.Fprintf(&sb, " | %s: %d inst, %.1f%% full, %d dropped",
			b.Pass, b.Instances, b.Occupancy*100, p.discarded[b.Pass])
	}
	p.lastSummary = sb.String()
	p.logger.Printf("[Profiler] %s", p.lastSummary)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	clear(p.discarded)
	return true
}

func (p *profiler) Summary() string {
	return p.lastSummary
}
