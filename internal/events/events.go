// README: Dispatch event subjects, payloads and the NATS publisher.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"fleetdispatch/internal/logger"
	"fleetdispatch/internal/types"
)

const (
	DispatchAssigned    = "dispatch.assigned"
	DispatchUnassigned  = "dispatch.unassigned"
	DispatchConflicts   = "dispatch.conflicts"
	DispatchRunFinished = "dispatch.autoassign.finished"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data any) error
	Close() error
}

// Envelope wraps every payload so consumers can deduplicate on EventID.
type Envelope struct {
	EventID    string    `json:"event_id"`
	Subject    string    `json:"subject"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func NewEnvelope(subject string, data any) Envelope {
	return Envelope{
		EventID:    uuid.NewString(),
		Subject:    subject,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(conn *nats.Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, data any) error {
	payload, err := json.Marshal(NewEnvelope(subject, data))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	logger.DebugContext(ctx, "publishing event", "subject", subject, "bytes", len(payload))
	return p.conn.Publish(subject, payload)
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// Noop drops events; used when no NATS URL is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error {
	return nil
}

func (Noop) Close() error {
	return nil
}

type AssignedEvent struct {
	BookingID  types.ID `json:"booking_id"`
	DriverID   types.ID `json:"driver_id"`
	DriverName string   `json:"driver_name"`
	Source     string   `json:"source"`
	RunID      string   `json:"run_id,omitempty"`
	Forced     bool     `json:"forced,omitempty"`
}

type UnassignedEvent struct {
	BookingID types.ID `json:"booking_id"`
	DriverID  types.ID `json:"driver_id,omitempty"`
	Reason    string   `json:"reason"`
}

type ConflictsEvent struct {
	Date        string     `json:"date"`
	Messages    []string   `json:"messages"`
	ConflictIDs []types.ID `json:"conflict_ids"`
}

type RunFinishedEvent struct {
	RunID      string     `json:"run_id"`
	Date       string     `json:"date"`
	Assigned   int        `json:"assigned"`
	Unassigned []types.ID `json:"unassigned"`
	Released   []types.ID `json:"released"`
}
