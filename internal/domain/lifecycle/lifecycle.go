// Package lifecycle holds shared constants for process start and stop hooks.
package lifecycle

import "time"

// DefaultTimeout bounds every fx start/stop hook (DB ping, HTTP shutdown).
const DefaultTimeout = 10 * time.Second
