//go:build !linux && !darwin

package sampling

import "time"

// cpuTime has no portable implementation on this platform; workload
// classification falls back to treating every sampled call as
// io_bound, which is the same conservative default the original
// implementation uses when resource.getrusage is unavailable.
func cpuTime() time.Duration {
	return 0
}
