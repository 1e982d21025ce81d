package entity

import (
	"time"
)

// DesktopConnection is the persisted relay endpoint. Exactly one active
// connection is supported at a time; reconnection reuses the stored URL.
type DesktopConnection struct {
	URL           string
	LastConnected time.Time
	Name          string
}
