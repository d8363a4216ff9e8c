package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	t.Setenv(OverrideEnv, "")
	procs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		want       int
	}{
		{"cpu bound", 1.0, 0, procs},
		{"io bound", 2.0, 0, procs * 2},
		{"capped", 2.0, 1, 1},
		{"never below one", 0.0001, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Count(tt.multiplier, tt.limit); got != tt.want {
				t.Errorf("Count(%v, %d) = %d, want %d", tt.multiplier, tt.limit, got, tt.want)
			}
		})
	}
}

func TestCountOverride(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		limit int
		want  int
	}{
		{"override", "7", 0, 7},
		{"override capped", "7", 3, 3},
		{"zero ignored", "0", 0, runtime.GOMAXPROCS(0)},
		{"garbage ignored", "many", 0, runtime.GOMAXPROCS(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(OverrideEnv, tt.env)
			if got := Count(1.0, tt.limit); got != tt.want {
				t.Errorf("Count() with %s=%q = %d, want %d", OverrideEnv, tt.env, got, tt.want)
			}
		})
	}
}

func TestForCPUAndForIO(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	if got, want := ForCPU(0), runtime.GOMAXPROCS(0); got != want {
		t.Errorf("ForCPU(0) = %d, want %d", got, want)
	}
	if got := ForIO(0); got != ForCPU(0)*2 {
		t.Errorf("ForIO(0) = %d, want twice ForCPU", got)
	}
	if got := ForIO(1); got != 1 {
		t.Errorf("ForIO(1) = %d, want 1", got)
	}
}
