package profiler

import (
	"log"
	"runtime"
	"time"
)

// Profiler tracks frame rate, frame time, and memory statistics for
// performance monitoring. Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	// Per-frame render timing, accumulated between log lines.
	frameStart time.Time
	frameTotal time.Duration
	frameMax   time.Duration
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		frameCount:     0,
		lastTime:       time.Now(),
		updateInterval: time.Second,
		memStats:       runtime.MemStats{},
	}
}

// BeginFrame marks the start of the render work for the current frame.
// Pair with EndFrame around the per-frame render call.
func (p *Profiler) BeginFrame() {
	p.frameStart = time.Now()
}

// EndFrame records the render duration of the current frame and logs
// performance statistics when the update interval has elapsed.
// Statistics include: FPS, average and worst render time, heap usage,
// allocation rate, GC count/pause times, total memory.
//
// Returns:
//   - bool: true if stats were logged this frame, false otherwise
func (p *Profiler) EndFrame() bool {
	if !p.frameStart.IsZero() {
		frameTime := time.Since(p.frameStart)
		p.frameTotal += frameTime
		if frameTime > p.frameMax {
			p.frameMax = frameTime
		}
	}

	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed >= p.updateInterval {
		fps := float64(p.frameCount) / elapsed.Seconds()
		avgFrameMs := p.frameTotal.Seconds() * 1000 / float64(p.frameCount)
		maxFrameMs := p.frameMax.Seconds() * 1000

		runtime.ReadMemStats(&p.memStats)
		// Alloc: Bytes of allocated heap objects (live memory)
		// TotalAlloc: Cumulative bytes allocated for heap objects (increases forever, tracks churn)
		// Sys: Total bytes of memory obtained from the OS (actual process footprint)
		allocMB := float64(p.memStats.Alloc) / 1024 / 1024
		sysMB := float64(p.memStats.Sys) / 1024 / 1024

		// Calculate allocation rate (MB/sec)
		allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
		allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

		// Calculate GC pause stats (last pause and max recent pause)
		gcCount := p.memStats.NumGC
		var lastPauseUs, maxPauseUs uint64
		if gcCount > 0 {
			// PauseNs is a circular buffer of last 256 GC pauses
			lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

			// Find max pause since last log line
			startIdx := p.lastGCCount
			if gcCount-startIdx > 256 {
				startIdx = gcCount - 256
			}
			for i := startIdx; i < gcCount; i++ {
				pause := p.memStats.PauseNs[i%256] / 1000
				if pause > maxPauseUs {
					maxPauseUs = pause
				}
			}
		}

		log.Printf("[Profiler] FPS: %.2f | Render: %.2f ms avg, %.2f ms max | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
			fps, avgFrameMs, maxFrameMs, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)

		p.frameCount = 0
		p.frameTotal = 0
		p.frameMax = 0
		p.lastTime = currentTime
		p.lastGCCount = gcCount
		p.lastTotalAlloc = p.memStats.TotalAlloc
		return true
	}

	return false
}
