package dispatch

import (
	"context"
	"sync"
	"time"

	"fleetdispatch/internal/modules/booking"
	"fleetdispatch/internal/modules/scheduling"
	"fleetdispatch/internal/types"
)

const testDate = "2025-06-01"

type memStore struct {
	mu       sync.Mutex
	snap     scheduling.Snapshot
	versions map[types.ID]int
	failOn   map[types.ID]error
	changes  []booking.DriverChange
}

func newMemStore(snap scheduling.Snapshot) *memStore {
	return &memStore{snap: snap, versions: map[types.ID]int{}, failOn: map[types.ID]error{}}
}

func (m *memStore) Get(_ context.Context, id types.ID) (*booking.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.snap.Booking(id)
	if !ok {
		return nil, booking.ErrNotFound
	}
	return &booking.Record{Booking: b, StatusVersion: m.versions[id]}, nil
}

func (m *memStore) LoadDay(_ context.Context, date string) (booking.Day, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	day := booking.Day{Date: date, Versions: map[types.ID]int{}}
	day.Snapshot.Drivers = append(day.Snapshot.Drivers, m.snap.Drivers...)
	day.Snapshot.Vehicles = append(day.Snapshot.Vehicles, m.snap.Vehicles...)
	for _, s := range m.snap.Shifts {
		if scheduling.CalendarDate(s.Date) == date {
			day.Snapshot.Shifts = append(day.Snapshot.Shifts, s)
		}
	}
	for _, b := range m.snap.Bookings {
		if scheduling.CalendarDate(b.PickupDate) == date {
			day.Snapshot.Bookings = append(day.Snapshot.Bookings, b)
			day.Versions[b.ID] = m.versions[b.ID]
		}
	}
	return day, nil
}

func (m *memStore) ChangeDriver(_ context.Context, change booking.DriverChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !scheduling.CanTransition(change.Current.Status, scheduling.StatusPending) {
		return booking.ErrInvalidState
	}
	if err := m.failOn[change.Current.ID]; err != nil {
		return err
	}
	stored, ok := m.snap.Booking(change.Current.ID)
	if !ok {
		return booking.ErrNotFound
	}
	if stored.Status != change.Current.Status || m.versions[stored.ID] != change.Current.StatusVersion {
		return booking.ErrConflict
	}
	if change.ToDriver == nil {
		m.snap = m.snap.Release([]types.ID{stored.ID})
	} else {
		m.snap = m.snap.Assign(stored, scheduling.Assignment{BookingID: stored.ID, DriverID: *change.ToDriver, DriverName: change.DriverName})
	}
	m.versions[stored.ID]++
	m.changes = append(m.changes, change)
	return nil
}

func (m *memStore) booking(id types.ID) scheduling.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, _ := m.snap.Booking(id)
	return b
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *memLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return nil, false, nil
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}, true, nil
}

type published struct {
	subject string
	data    any
}

type memPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *memPublisher) Publish(_ context.Context, subject string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{subject: subject, data: data})
	return nil
}

func (p *memPublisher) Close() error { return nil }

func (p *memPublisher) count(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.subject == subject {
			n++
		}
	}
	return n
}

func newBooking(id types.ID, pickup, origin, destination string) scheduling.Booking {
	return scheduling.Booking{
		ID:          id,
		PickupDate:  testDate,
		PickupTime:  pickup,
		Origin:      origin,
		Destination: destination,
		PaxCount:    1,
		Status:      scheduling.StatusConfirmed,
	}
}

func assignedTo(b scheduling.Booking, driverID types.ID, name string) scheduling.Booking {
	b.DriverID = types.IDPtr(driverID)
	b.DriverName = name
	return b
}

func newDriver(id types.ID, name string) scheduling.Driver {
	return scheduling.Driver{ID: id, Name: name, Status: scheduling.DriverWorking}
}

func dayShift(driverID types.ID) scheduling.Shift {
	hours := "06:00-22:00"
	return scheduling.Shift{DriverID: driverID, Date: testDate, Type: "M1", Hours: &hours}
}
