package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"

	"wedding-gallery/internal/logging"
)

// DefaultHeapRatio is the share of the container limit handed to the Go heap.
// The remainder covers decoded image buffers outside the heap and stacks.
const DefaultHeapRatio = 0.85

// Limit describes how the process memory limit was chosen.
type Limit struct {
	Source    string // "GOMEMLIMIT", "MEMORY_LIMIT" or "none"
	Container int64
	Heap      int64
	Ratio     float64
}

// Configured reports whether a heap limit is in effect.
func (l Limit) Configured() bool {
	return l.Heap > 0
}

// ConfigureFromEnv applies a soft heap limit derived from the environment.
// GOMEMLIMIT wins when present; otherwise MEMORY_LIMIT (bytes, usually
// injected through the Kubernetes Downward API) is scaled by MEMORY_RATIO.
// Call it before the server starts allocating.
func ConfigureFromEnv() Limit {
	if raw := os.Getenv("GOMEMLIMIT"); raw != "" {
		lim := Limit{Source: "GOMEMLIMIT"}
		if current := debug.SetMemoryLimit(-1); current > 0 && current < math.MaxInt64 {
			lim.Heap = current
		}
		logging.Info("GOMEMLIMIT set via environment: %s", raw)
		return lim
	}

	raw := os.Getenv("MEMORY_LIMIT")
	if raw == "" {
		logging.Debug("MEMORY_LIMIT not set, leaving GOMEMLIMIT unset")
		return Limit{Source: "none"}
	}
	container, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || container <= 0 {
		logging.Warn("Ignoring invalid MEMORY_LIMIT %q", raw)
		return Limit{Source: "none"}
	}

	ratio := heapRatio(os.Getenv("MEMORY_RATIO"))
	heap := int64(float64(container) * ratio)
	debug.SetMemoryLimit(heap)

	logging.Info("Configured GOMEMLIMIT: %s (%.0f%% of %s)", formatBytes(heap), ratio*100, formatBytes(container))
	return Limit{Source: "MEMORY_LIMIT", Container: container, Heap: heap, Ratio: ratio}
}

func heapRatio(raw string) float64 {
	if raw == "" {
		return DefaultHeapRatio
	}
	r, err := strconv.ParseFloat(raw, 64)
	if err != nil || r <= 0 || r > 1 {
		logging.Warn("Ignoring MEMORY_RATIO %q, using %.2f", raw, DefaultHeapRatio)
		return DefaultHeapRatio
	}
	return r
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
