// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package relay implements the broadcast chat relay: a single-threaded,
// readiness-driven event loop that accepts stream connections, extracts
// complete frames from each connection's receive buffer and rebroadcasts
// every frame, verbatim, to every live connection at the end of each cycle.
//
// A Relay is not safe for concurrent use. One goroutine owns it and calls
// Run (or Cycle); only SetMaxFramePayload may be called from elsewhere.
package relay
