// File: api/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Readiness-notification contract used by the relay event loop.
// Isolates the loop from any single platform's multiplexing API.

package api

// Token identifies a descriptor registered with a Poller. Tokens are small,
// dense and reused after the descriptor is deregistered.
type Token uint32

// ListenerToken is reserved for the listening socket and is never handed out
// to a client connection.
const ListenerToken Token = 0

// Event is one readiness notification returned by Poller.Wait.
type Event struct {
	Token    Token
	Readable bool // data (or a pending connection) can be read
	Hangup   bool // peer hung up or the descriptor is in an error state
}

// Poller is a level-triggered readiness notifier.
type Poller interface {
	// Register starts read-readiness notification for fd under token.
	Register(fd int, token Token) error

	// Deregister stops notification for fd.
	Deregister(fd int) error

	// Wait blocks until at least one registered descriptor is ready or the
	// timeout expires, filling events. timeoutMs < 0 blocks indefinitely.
	// An interrupted wait reports zero events and no error.
	Wait(events []Event, timeoutMs int) (int, error)

	// Close releases the underlying notification handle.
	Close() error
}
