// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for CPU affinity. Platform-specific implementations are located
// in separate files (affinity_linux.go, affinity_stub.go) guarded by build tags.

package affinity

import (
	"fmt"
	"runtime"
)

// PinCurrentThread locks the calling goroutine to its OS thread and pins
// that thread to cpuID. The lock is never released, so call it from the
// goroutine that will run the event loop. A negative cpuID is a no-op.
func PinCurrentThread(cpuID int) error {
	if cpuID < 0 {
		return nil
	}
	if cpuID >= runtime.NumCPU() {
		return fmt.Errorf("affinity: cpu %d out of range (have %d)", cpuID, runtime.NumCPU())
	}
	runtime.LockOSThread()
	return setAffinityPlatform(cpuID)
}
