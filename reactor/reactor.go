// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral defaults for the readiness reactor.

package reactor

// DefaultMaxEvents is the number of readiness events collected per Wait when
// the caller does not choose one.
const DefaultMaxEvents = 1024

func eventCapacity(maxEvents int) int {
	if maxEvents <= 0 {
		return DefaultMaxEvents
	}
	return maxEvents
}
