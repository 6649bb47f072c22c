package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConnectionStatus represents the lifecycle state of an aggregator connection
type ConnectionStatus string

const (
	ConnectionStatusActive      ConnectionStatus = "active"
	ConnectionStatusNeedsReauth ConnectionStatus = "needs_reauth"
	ConnectionStatusError       ConnectionStatus = "error"
)

// Connection represents one link to an open-banking aggregator.
// Status, LastSyncAt and LastSyncError are mutated only by the sync
// orchestrator; AccessURL is an opaque secret and must never be logged.
type Connection struct {
	ID            uuid.UUID
	Provider      string
	AccessURL     string
	Status        ConnectionStatus
	LastSyncAt    *time.Time
	LastSyncError *string
}

// NeverSynced reports whether this connection has completed a sync before.
// First syncs use a wider lookback window.
func (c *Connection) NeverSynced() bool {
	return c.LastSyncAt == nil
}
