// Copyright (c) Big Cabal 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"

	"github.com/bigcabalworks/sitebatch/internal/site"
)

// EventType represents the type of progress event.
type EventType int

const (
	// EventSiteStarted indicates the engine has switched to a site and is
	// about to run the operation.
	EventSiteStarted EventType = iota
	// EventSiteCompleted indicates the operation for a site succeeded and
	// the previous context was restored.
	EventSiteCompleted
	// EventSiteFailed indicates the operation for a site failed.
	EventSiteFailed
	// EventSiteCanceled indicates the batch was cancelled before or during
	// the site's operation.
	EventSiteCanceled
	// EventBatchCompleted indicates the batch reached its end.
	EventBatchCompleted
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventSiteStarted:
		return "started"
	case EventSiteCompleted:
		return "completed"
	case EventSiteFailed:
		return "failed"
	case EventSiteCanceled:
		return "canceled"
	case EventBatchCompleted:
		return "batch-completed"
	default:
		return "unknown"
	}
}

// Event is one real-time update from batch execution.
type Event struct {
	SiteID    site.ID   // Site the event refers to; None for batch-level events
	Index     int       // Position of the site in the batch input (0-based)
	Total     int       // Number of sites in the batch
	Type      EventType // What happened
	Timestamp time.Time // When it happened
	Err       error     // Error for EventSiteFailed
}

// Reporter is the interface for delivering progress events.
type Reporter interface {
	// Report sends a progress event. Implementations must be non-blocking
	// and tolerate a receiver that is not listening.
	Report(event Event)
	// Close signals that no more events will be sent and releases resources.
	Close()
}

// Listener receives events from a ChannelReporter.
type Listener interface {
	OnEvent(event Event)
}
