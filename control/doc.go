// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, hot-reload and runtime metrics for the relay.
//
// Provides:
//   - YAML configuration with defaults and validation
//   - A file watcher that re-applies mutable settings on change
//   - A concurrent-safe metrics snapshot published by the event loop
package control
