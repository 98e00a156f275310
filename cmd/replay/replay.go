package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"fleetdispatch/internal/modules/scheduling"
	"fleetdispatch/internal/types"
)

type Output struct {
	Before   scheduling.ConflictReport `json:"before"`
	Released []types.ID                `json:"released"`
	Plan     scheduling.Plan           `json:"plan"`
	After    scheduling.ConflictReport `json:"after"`
}

func readSnapshot(path string) (scheduling.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scheduling.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var snap scheduling.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return scheduling.Snapshot{}, fmt.Errorf("parse snapshot: %w", err)
	}
	return snap, nil
}

// Replay scans snap, optionally releases blocking conflicts and plans the
// unassigned bookings. An empty date replays every booking in the file.
func Replay(e *scheduling.Engine, snap scheduling.Snapshot, date string, release bool) Output {
	if date != "" {
		snap = onDate(snap, date)
	}
	out := Output{Released: []types.ID{}}
	out.Before = e.DetectScheduleConflicts(snap.Bookings)
	if release {
		out.Released = append(out.Released, out.Before.ConflictIDs...)
		snap = snap.Release(out.Released)
	}
	out.Plan = e.Plan(snap, e.AutoAssignQueue(snap, out.Released))
	out.After = e.DetectScheduleConflicts(out.Plan.Snapshot.Bookings)
	return out
}

func onDate(snap scheduling.Snapshot, date string) scheduling.Snapshot {
	out := snap
	out.Shifts = nil
	out.Bookings = nil
	for _, s := range snap.Shifts {
		if scheduling.CalendarDate(s.Date) == date {
			out.Shifts = append(out.Shifts, s)
		}
	}
	for _, b := range snap.Bookings {
		if scheduling.CalendarDate(b.PickupDate) == date {
			out.Bookings = append(out.Bookings, b)
		}
	}
	return out
}

func (o Output) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(o)
}

func (o Output) WriteText(w io.Writer) {
	fmt.Fprintln(w, "== Conflicts before ==")
	writeMessages(w, o.Before.Messages)
	if len(o.Released) > 0 {
		fmt.Fprintf(w, "\nReleased: %v\n", o.Released)
	}
	fmt.Fprintln(w, "\n== Plan ==")
	for _, a := range o.Plan.Assignments {
		fmt.Fprintf(w, "%s -> %s (%s) reposition=%dmin load=%d\n", a.BookingID, a.DriverID, a.DriverName, a.RepositionMinutes, a.DayLoad)
	}
	for _, id := range o.Plan.Unassigned {
		fmt.Fprintf(w, "%s -> no driver\n", id)
	}
	fmt.Fprintln(w, "\n== Conflicts after ==")
	writeMessages(w, o.After.Messages)
	fmt.Fprintf(w, "\nASSIGNED=%d UNASSIGNED=%d CONFLICTS=%d\n", len(o.Plan.Assignments), len(o.Plan.Unassigned), len(o.After.ConflictIDs))
}

func writeMessages(w io.Writer, msgs []string) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "none")
		return
	}
	for _, m := range msgs {
		fmt.Fprintln(w, m)
	}
}
