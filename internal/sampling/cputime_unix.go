//go:build linux || darwin

package sampling

import (
	"syscall"
	"time"
)

// cpuTime returns the process's cumulative user+system CPU time,
// used to compute the CPU-time-to-wall-time ratio that classifies a
// workload as CPU-bound, mixed, or I/O-bound.
func cpuTime() time.Duration {
	var ru syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	user := time.Duration(ru.Utime.Sec)*time.Second + time.Duration(ru.Utime.Usec)*time.Microsecond
	sys := time.Duration(ru.Stime.Sec)*time.Second + time.Duration(ru.Stime.Usec)*time.Microsecond
	return user + sys
}
