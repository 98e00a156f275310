// README: Dispatch service; runs the scheduling engine over stored days and persists its decisions.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fleetdispatch/internal/config"
	"fleetdispatch/internal/events"
	"fleetdispatch/internal/logger"
	"fleetdispatch/internal/modules/booking"
	"fleetdispatch/internal/modules/scheduling"
	"fleetdispatch/internal/types"
)

const dateLayout = "2006-01-02"

type Store interface {
	Get(ctx context.Context, id types.ID) (*booking.Record, error)
	LoadDay(ctx context.Context, date string) (booking.Day, error)
	ChangeDriver(ctx context.Context, change booking.DriverChange) error
}

type RouteSource interface {
	Table() scheduling.RouteTable
}

type Service struct {
	store  Store
	routes RouteSource
	locker Locker
	events events.Publisher
	policy scheduling.Policy
	cfg    config.DispatchConfig
	now    func() time.Time
}

// NewService wires the dispatch service. routes and publisher may be nil.
func NewService(store Store, routes RouteSource, locker Locker, publisher events.Publisher, policy scheduling.Policy, cfg config.DispatchConfig) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &Service{
		store:  store,
		routes: routes,
		locker: locker,
		events: publisher,
		policy: policy,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Engine returns an engine over the current route table.
func (s *Service) Engine() *scheduling.Engine {
	p := s.policy
	if s.routes != nil {
		p.Routes = s.routes.Table()
	}
	return scheduling.NewEngine(p)
}

func (s *Service) Availability(ctx context.Context, bookingID, driverID types.ID) (*AvailabilityResult, error) {
	day, rec, err := s.bookingDay(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	d, ok := findDriver(day.Snapshot.Drivers, driverID)
	if !ok {
		return nil, ErrDriverNotFound
	}
	e := s.Engine()
	snap := day.Snapshot
	var shiftRef *scheduling.Shift
	if sh, ok := e.ShiftFor(d.ID, rec.PickupDate, snap.Shifts); ok {
		shiftRef = &sh
	}
	v := e.VehicleFor(d, shiftRef, snap.Vehicles)
	return &AvailabilityResult{
		BookingID:         bookingID,
		DriverID:          driverID,
		Available:         e.IsDriverAvailable(d, v, rec.Booking, snap.Bookings, snap.Shifts),
		RepositionMinutes: e.RepositionTime(d.ID, rec.Booking, snap.Bookings),
		DayLoad:           e.DayLoad(d.ID, rec.Booking, snap.Bookings),
	}, nil
}

func (s *Service) Suggest(ctx context.Context, bookingID types.ID) (*Suggestion, error) {
	day, rec, err := s.bookingDay(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.suggest(rec.Booking, day.Snapshot), nil
}

// SuggestFor ranks drivers for b over a caller-supplied snapshot without touching storage.
func (s *Service) SuggestFor(b scheduling.Booking, snap scheduling.Snapshot) *Suggestion {
	return s.suggest(b, snap)
}

func (s *Service) suggest(b scheduling.Booking, snap scheduling.Snapshot) *Suggestion {
	b.DriverID = nil
	ranked := s.Engine().RankDrivers(b, snap.Drivers, snap.Bookings, snap.Vehicles, snap.Shifts)
	out := &Suggestion{BookingID: b.ID, Candidates: ranked}
	if out.Candidates == nil {
		out.Candidates = []scheduling.Candidate{}
	}
	if len(ranked) > 0 {
		d := ranked[0].Driver
		out.Driver = &d
	}
	return out
}

// Assign puts cmd.DriverID on the booking. When the driver's resulting schedule
// has warnings or conflicts around this booking, or the driver would not be
// available for it, nothing is written unless cmd.Force is set.
func (s *Service) Assign(ctx context.Context, cmd AssignCommand) (*AssignResult, error) {
	if cmd.BookingID == "" || cmd.DriverID == "" {
		return nil, ErrBadRequest
	}
	day, rec, err := s.bookingDay(ctx, cmd.BookingID)
	if err != nil {
		return nil, err
	}
	if !rec.Status.Active() {
		return nil, booking.ErrInvalidState
	}
	d, ok := findDriver(day.Snapshot.Drivers, cmd.DriverID)
	if !ok {
		return nil, ErrDriverNotFound
	}

	e := s.Engine()
	snap := day.Snapshot
	var shiftRef *scheduling.Shift
	if sh, ok := e.ShiftFor(d.ID, rec.PickupDate, snap.Shifts); ok {
		shiftRef = &sh
	}
	available := e.IsDriverAvailable(d, e.VehicleFor(d, shiftRef, snap.Vehicles), rec.Booking, snap.Bookings, snap.Shifts)

	hypothetical := snap.Assign(rec.Booking, scheduling.Assignment{BookingID: rec.ID, DriverID: d.ID, DriverName: d.Name})
	report := involving(e.DetectScheduleConflicts(driverBookings(hypothetical.Bookings, d.ID)), rec.ID)

	res := &AssignResult{
		BookingID: rec.ID,
		DriverID:  d.ID,
		Available: available,
		Messages:  report.Messages,
		Findings:  report.Findings,
	}
	if !available {
		res.Messages = append([]string{fmt.Sprintf("WARNING %s: not available for this booking (shift, vehicle or schedule)", d.Name)}, res.Messages...)
	}
	if len(res.Messages) > 0 && !cmd.Force {
		return res, ErrNeedsConfirmation
	}

	err = s.store.ChangeDriver(ctx, booking.DriverChange{
		Current:    rec,
		ToDriver:   types.IDPtr(d.ID),
		DriverName: d.Name,
		Source:     booking.SourceManual,
	})
	if err != nil {
		return nil, err
	}
	res.Committed = true
	logger.InfoContext(ctx, "booking assigned", "booking_id", rec.ID, "driver_id", d.ID, "forced", cmd.Force && len(res.Messages) > 0)
	s.publish(ctx, events.DispatchAssigned, events.AssignedEvent{
		BookingID:  rec.ID,
		DriverID:   d.ID,
		DriverName: d.Name,
		Source:     booking.SourceManual,
		Forced:     cmd.Force && len(res.Messages) > 0,
	})
	return res, nil
}

// Unassign clears the booking's driver. Unassigned bookings are left as they are.
func (s *Service) Unassign(ctx context.Context, bookingID types.ID) error {
	rec, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	if rec.DriverID == nil {
		return nil
	}
	if err := s.store.ChangeDriver(ctx, booking.DriverChange{Current: *rec, Source: booking.SourceManual}); err != nil {
		return err
	}
	logger.InfoContext(ctx, "booking unassigned", "booking_id", rec.ID, "driver_id", *rec.DriverID)
	s.publish(ctx, events.DispatchUnassigned, events.UnassignedEvent{BookingID: rec.ID, DriverID: *rec.DriverID, Reason: booking.SourceManual})
	return nil
}

// BulkUnassign releases every assigned booking of date that can still be moved.
func (s *Service) BulkUnassign(ctx context.Context, date string) (*BulkUnassignResult, error) {
	if !validDate(date) {
		return nil, ErrBadRequest
	}
	unlock, err := s.lock(ctx, date)
	if err != nil {
		return nil, err
	}
	defer unlock()

	day, err := s.store.LoadDay(ctx, date)
	if err != nil {
		return nil, err
	}
	res := &BulkUnassignResult{Date: date, Unassigned: []types.ID{}, Skipped: []types.ID{}}
	for _, b := range day.Snapshot.Bookings {
		if b.DriverID == nil || !b.Status.Active() {
			continue
		}
		rec, _ := day.Record(b.ID)
		err := s.store.ChangeDriver(ctx, booking.DriverChange{Current: rec, Source: booking.SourceBulk})
		if errors.Is(err, booking.ErrInvalidState) || errors.Is(err, booking.ErrConflict) {
			res.Skipped = append(res.Skipped, b.ID)
			continue
		}
		if err != nil {
			return nil, err
		}
		res.Unassigned = append(res.Unassigned, b.ID)
		s.publish(ctx, events.DispatchUnassigned, events.UnassignedEvent{BookingID: b.ID, DriverID: *b.DriverID, Reason: booking.SourceBulk})
	}
	logger.InfoContext(ctx, "bulk unassign finished", "date", date, "unassigned", len(res.Unassigned), "skipped", len(res.Skipped))
	return res, nil
}

func (s *Service) Conflicts(ctx context.Context, date string) (scheduling.ConflictReport, error) {
	if !validDate(date) {
		return scheduling.ConflictReport{}, ErrBadRequest
	}
	day, err := s.store.LoadDay(ctx, date)
	if err != nil {
		return scheduling.ConflictReport{}, err
	}
	return s.Engine().DetectScheduleConflicts(day.Snapshot.Bookings), nil
}

// AutoAssignDay places every unassigned booking of the date, one at a time in
// pickup order. Each decision is written before the next booking is evaluated
// and only written decisions are visible to later steps.
func (s *Service) AutoAssignDay(ctx context.Context, cmd AutoAssignCommand) (*AutoAssignResult, error) {
	if !validDate(cmd.Date) {
		return nil, ErrBadRequest
	}
	unlock, err := s.lock(ctx, cmd.Date)
	if err != nil {
		return nil, err
	}
	defer unlock()

	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	day, err := s.store.LoadDay(ctx, cmd.Date)
	if err != nil {
		return nil, err
	}
	e := s.Engine()
	snap := day.Snapshot
	versions := make(map[types.ID]int, len(day.Versions))
	for id, v := range day.Versions {
		versions[id] = v
	}

	res := &AutoAssignResult{
		RunID:       runID,
		Date:        cmd.Date,
		Released:    []types.ID{},
		Assignments: []scheduling.Assignment{},
		Unassigned:  []types.ID{},
	}

	if cmd.ReleaseConflicts {
		for _, id := range e.DetectScheduleConflicts(snap.Bookings).ConflictIDs {
			b, ok := snap.Booking(id)
			if !ok {
				continue
			}
			rec := booking.Record{Booking: b, StatusVersion: versions[id]}
			err := s.store.ChangeDriver(ctx, booking.DriverChange{Current: rec, Source: booking.SourceRelease, RunID: runID})
			if err != nil {
				if errors.Is(err, booking.ErrInvalidState) || errors.Is(err, booking.ErrConflict) {
					logger.WarnContext(ctx, "conflicting booking kept", "booking_id", id, "error", err)
					continue
				}
				return nil, err
			}
			versions[id]++
			snap = snap.Release([]types.ID{id})
			res.Released = append(res.Released, id)
			s.publish(ctx, events.DispatchUnassigned, events.UnassignedEvent{BookingID: id, DriverID: derefID(b.DriverID), Reason: booking.SourceRelease})
		}
	}

	for _, id := range e.AutoAssignQueue(snap, res.Released) {
		b, ok := snap.Booking(id)
		if !ok {
			continue
		}
		if !scheduling.CanTransition(b.Status, scheduling.StatusPending) {
			res.Unassigned = append(res.Unassigned, id)
			continue
		}
		step := e.Step(snap, b)
		if step.Assignment == nil {
			res.Unassigned = append(res.Unassigned, id)
			continue
		}
		a := *step.Assignment
		err := s.store.ChangeDriver(ctx, booking.DriverChange{
			Current:    booking.Record{Booking: b, StatusVersion: versions[id]},
			ToDriver:   types.IDPtr(a.DriverID),
			DriverName: a.DriverName,
			Source:     booking.SourceAutoAssign,
			RunID:      runID,
		})
		if err != nil {
			if errors.Is(err, booking.ErrInvalidState) || errors.Is(err, booking.ErrConflict) {
				logger.WarnContext(ctx, "assignment not written", "booking_id", id, "driver_id", a.DriverID, "error", err)
				res.Unassigned = append(res.Unassigned, id)
				continue
			}
			return nil, err
		}
		versions[id]++
		snap = step.Snapshot
		res.Assignments = append(res.Assignments, a)
		s.publish(ctx, events.DispatchAssigned, events.AssignedEvent{
			BookingID:  id,
			DriverID:   a.DriverID,
			DriverName: a.DriverName,
			Source:     booking.SourceAutoAssign,
			RunID:      runID,
		})
	}

	res.Report = e.DetectScheduleConflicts(snap.Bookings)
	logger.InfoContext(ctx, "auto-assign finished",
		"date", cmd.Date,
		"released", len(res.Released),
		"assigned", len(res.Assignments),
		"unassigned", len(res.Unassigned),
	)
	s.publish(ctx, events.DispatchRunFinished, events.RunFinishedEvent{
		RunID:      runID,
		Date:       cmd.Date,
		Assigned:   len(res.Assignments),
		Unassigned: res.Unassigned,
		Released:   res.Released,
	})
	return res, nil
}

// RunConflictAudit scans today's schedule every interval and reports blocking conflicts.
func (s *Service) RunConflictAudit(ctx context.Context) {
	if s.cfg.AuditTickSeconds <= 0 {
		return
	}
	ticker := time.NewTicker(time.Duration(s.cfg.AuditTickSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.AuditToday(ctx); err != nil {
				logger.ErrorContext(ctx, "conflict audit failed", "error", err)
			}
		}
	}
}

func (s *Service) AuditToday(ctx context.Context) (scheduling.ConflictReport, error) {
	date := s.now().In(s.policy.Location).Format(dateLayout)
	report, err := s.Conflicts(ctx, date)
	if err != nil {
		return report, err
	}
	if report.HasBlocking() {
		logger.WarnContext(ctx, "blocking schedule conflicts", "date", date, "conflict_ids", report.ConflictIDs)
		s.publish(ctx, events.DispatchConflicts, events.ConflictsEvent{
			Date:        date,
			Messages:    report.Messages,
			ConflictIDs: report.ConflictIDs,
		})
	}
	return report, nil
}

func (s *Service) bookingDay(ctx context.Context, id types.ID) (booking.Day, booking.Record, error) {
	if id == "" {
		return booking.Day{}, booking.Record{}, ErrBadRequest
	}
	stored, err := s.store.Get(ctx, id)
	if err != nil {
		return booking.Day{}, booking.Record{}, err
	}
	day, err := s.store.LoadDay(ctx, scheduling.CalendarDate(stored.PickupDate))
	if err != nil {
		return booking.Day{}, booking.Record{}, err
	}
	rec, ok := day.Record(id)
	if !ok {
		// Only possible when the booking moved between the two reads.
		return booking.Day{}, booking.Record{}, booking.ErrConflict
	}
	return day, rec, nil
}

func (s *Service) lock(ctx context.Context, date string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	unlock, ok, err := s.locker.Acquire(ctx, lockKey(date), s.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire dispatch lock: %w", err)
	}
	if !ok {
		return nil, ErrBusy
	}
	return func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			logger.WarnContext(ctx, "release dispatch lock", "date", date, "error", err)
		}
	}, nil
}

func (s *Service) publish(ctx context.Context, subject string, data any) {
	if err := s.events.Publish(ctx, subject, data); err != nil {
		logger.WarnContext(ctx, "publish event", "subject", subject, "error", err)
	}
}

func findDriver(drivers []scheduling.Driver, id types.ID) (scheduling.Driver, bool) {
	for _, d := range drivers {
		if d.ID == id {
			return d, true
		}
	}
	return scheduling.Driver{}, false
}

func driverBookings(bookings []scheduling.Booking, driverID types.ID) []scheduling.Booking {
	var out []scheduling.Booking
	for _, b := range bookings {
		if b.AssignedTo(driverID) {
			out = append(out, b)
		}
	}
	return out
}

// involving keeps the findings that touch booking id on either side of the hand-over.
func involving(r scheduling.ConflictReport, id types.ID) scheduling.ConflictReport {
	out := scheduling.ConflictReport{Messages: []string{}, ConflictIDs: []types.ID{}, Findings: []scheduling.Finding{}}
	seen := make(map[types.ID]bool)
	for _, f := range r.Findings {
		if f.BookingID != id && f.PreviousID != id {
			continue
		}
		out.Findings = append(out.Findings, f)
		out.Messages = append(out.Messages, f.Message)
		if f.Severity == scheduling.SeverityConflict && !seen[f.BookingID] {
			seen[f.BookingID] = true
			out.ConflictIDs = append(out.ConflictIDs, f.BookingID)
		}
	}
	return out
}

func validDate(date string) bool {
	_, err := time.Parse(dateLayout, date)
	return err == nil
}

func derefID(id *types.ID) types.ID {
	if id == nil {
		return ""
	}
	return *id
}
