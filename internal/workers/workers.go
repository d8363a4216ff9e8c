package workers

import (
	"os"
	"runtime"
	"strconv"
)

// OverrideEnv names the environment variable that pins the worker count.
const OverrideEnv = "GALLERY_WORKERS"

// Count sizes a worker pool from GOMAXPROCS, which already reflects
// container CPU limits.
//
// multiplier is 1.0 for CPU-bound work (image decoding) and 2.0 for
// network-bound work (URL resolution against the Directory). limit caps
// the result; 0 means no cap. GALLERY_WORKERS overrides the computed
// value but is still capped by limit.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(OverrideEnv); override != "" {
		if n, err := strconv.Atoi(override); err == nil && n > 0 {
			return capAt(n, limit)
		}
	}

	n := int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	if n < 1 {
		n = 1
	}
	return capAt(n, limit)
}

// ForCPU sizes a pool for decode/resize work.
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO sizes a pool for outbound requests.
func ForIO(limit int) int {
	return Count(2.0, limit)
}

func capAt(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}
