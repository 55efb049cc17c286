package topology

import (
	"os"
	"strconv"
)

// envOverrides maps environment variables consulted once at Env
// construction to the field they override. Modeled as a table even though
// today there is only one entry.
var envOverrides = []struct {
	envVar string
	apply  func(available int, raw string) (int, bool)
}{
	{
		envVar: "RMP_NUM_THREADS",
		apply: func(available int, raw string) (int, bool) {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return available, false
			}
			return n, true
		},
	},
}

// resolveMaxThreads reads the worker-count override from the environment.
// Missing, unparseable, or sub-1 values fall back to available, which is
// itself then clamped to at least 1.
func resolveMaxThreads(available int) int {
	max := available
	for _, o := range envOverrides {
		if raw, ok := os.LookupEnv(o.envVar); ok {
			if v, applied := o.apply(available, raw); applied {
				max = v
			}
		}
	}
	if max < 1 {
		max = 1
	}
	return max
}
