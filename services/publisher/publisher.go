package publisher

import (
	"context"
	"encoding/json"
	"time"

	"sjsage522/listingtracker/internal/listing"
)

// Topics events are published under
const (
	TopicNew      = "new"
	TopicSold     = "sold"
	TopicDelisted = "delisted"
)

// Publisher represents a service for publishing messages
type Publisher interface {
	// Publish appends a message to the stream for topic
	Publish(ctx context.Context, topic string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams(ctx context.Context) error

	// Close closes the publisher connection
	Close() error
}

// ListingEvent is the payload of every stream message
type ListingEvent struct {
	Type      string    `json:"type"`
	RunID     string    `json:"run_id"`
	At        time.Time `json:"at"`
	ID        string    `json:"id"`
	PortalID  *string   `json:"portal_id,omitempty"`
	Address   string    `json:"address"`
	Price     string    `json:"price,omitempty"`
	Beds      *int      `json:"beds,omitempty"`
	Baths     *int      `json:"baths,omitempty"`
	Agent     *string   `json:"estate_agent,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	County    *string   `json:"county,omitempty"`
	Listed    bool      `json:"currently_listed"`
	Sold      bool      `json:"sold"`
}

// NewListingEvent builds the event for rec
func NewListingEvent(topic, runID string, at time.Time, rec listing.Record) ListingEvent {
	ev := ListingEvent{
		Type:      topic,
		RunID:     runID,
		At:        at,
		ID:        rec.ID,
		PortalID:  rec.PortalID,
		Address:   rec.Address,
		Beds:      rec.Beds,
		Baths:     rec.Baths,
		Agent:     rec.EstateAgent,
		Longitude: rec.Longitude,
		Latitude:  rec.Latitude,
		County:    rec.Geo.County,
		Listed:    rec.CurrentlyListed,
		Sold:      rec.Sold,
	}
	if rec.Price != nil {
		ev.Price = rec.Price.String()
	}
	return ev
}

// Marshal encodes the event as JSON
func (e ListingEvent) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// NopPublisher drops everything; used when no broker is configured
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, []byte) error { return nil }
func (NopPublisher) TrimStreams(context.Context) error             { return nil }
func (NopPublisher) Close() error                                  { return nil }
