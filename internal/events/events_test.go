package events

import (
	"context"
	"encoding/json"
	"testing"
)

func TestNewEnvelope(t *testing.T) {
	a := NewEnvelope(DispatchAssigned, AssignedEvent{BookingID: "b1", DriverID: "d1", Source: "manual"})
	b := NewEnvelope(DispatchAssigned, AssignedEvent{BookingID: "b1", DriverID: "d1", Source: "manual"})
	if a.EventID == "" || a.EventID == b.EventID {
		t.Fatalf("event ids should be unique, got %q and %q", a.EventID, b.EventID)
	}
	raw, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Subject string         `json:"subject"`
		Data    map[string]any `json:"data"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Subject != "dispatch.assigned" || decoded.Data["booking_id"] != "b1" {
		t.Fatalf("unexpected envelope: %s", raw)
	}
	if _, ok := decoded.Data["run_id"]; ok {
		t.Fatal("empty run_id should be omitted")
	}
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	if err := p.Publish(context.Background(), DispatchConflicts, nil); err != nil {
		t.Fatalf("noop publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("noop close: %v", err)
	}
}
