// README: Booking store backed by PostgreSQL; day snapshots and optimistic driver updates.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fleetdispatch/internal/modules/scheduling"
	"fleetdispatch/internal/types"
)

const bookingColumns = `
    id, to_char(pickup_date, 'YYYY-MM-DD'), pickup_time, origin, destination,
    pax_count, vehicle_class, status, driver_id, driver_name, status_version`

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Record, error) {
	row := s.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, string(id))
	r, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadDay reads the whole roster plus the shifts and bookings of date (YYYY-MM-DD).
func (s *Store) LoadDay(ctx context.Context, date string) (Day, error) {
	day := Day{Date: date, Versions: map[types.ID]int{}}

	drivers, err := s.drivers(ctx)
	if err != nil {
		return Day{}, fmt.Errorf("load drivers: %w", err)
	}
	vehicles, err := s.vehicles(ctx)
	if err != nil {
		return Day{}, fmt.Errorf("load vehicles: %w", err)
	}
	shifts, err := s.shifts(ctx, date)
	if err != nil {
		return Day{}, fmt.Errorf("load shifts: %w", err)
	}

	rows, err := s.db.Query(ctx, `
        SELECT `+bookingColumns+`
        FROM bookings
        WHERE pickup_date = to_date($1, 'YYYY-MM-DD')
        ORDER BY pickup_time, id`, date)
	if err != nil {
		return Day{}, fmt.Errorf("load bookings: %w", err)
	}
	defer rows.Close()
	var bookings []scheduling.Booking
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return Day{}, err
		}
		bookings = append(bookings, r.Booking)
		day.Versions[r.ID] = r.StatusVersion
	}
	if err := rows.Err(); err != nil {
		return Day{}, err
	}

	day.Snapshot = scheduling.Snapshot{
		Drivers:  drivers,
		Vehicles: vehicles,
		Shifts:   shifts,
		Bookings: bookings,
	}
	return day, nil
}

// UpdateDriver moves a booking to change.ToDriver and status to, guarded by the
// version the caller read. It reports false when the row changed in between.
func (s *Store) UpdateDriver(ctx context.Context, change DriverChange, to scheduling.Status) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        UPDATE bookings
        SET driver_id = $1,
            driver_name = $2,
            status = $3,
            status_version = status_version + 1,
            updated_at = NOW()
        WHERE id = $4 AND status = $5 AND status_version = $6`,
		toStringPtr(change.ToDriver),
		change.DriverName,
		string(to),
		string(change.Current.ID),
		string(change.Current.Status),
		change.Current.StatusVersion,
	)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, nil
	}

	ev := Event{
		BookingID:  change.Current.ID,
		FromDriver: change.Current.DriverID,
		ToDriver:   change.ToDriver,
		FromStatus: change.Current.Status,
		ToStatus:   to,
		Source:     change.Source,
		RunID:      change.RunID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := appendEvent(ctx, tx, ev); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func appendEvent(ctx context.Context, tx pgx.Tx, e Event) error {
	var runID *string
	if e.RunID != "" {
		runID = &e.RunID
	}
	_, err := tx.Exec(ctx, `
        INSERT INTO booking_assignment_events (
            booking_id, from_driver, to_driver, from_status, to_status, source, run_id, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(e.BookingID),
		toStringPtr(e.FromDriver),
		toStringPtr(e.ToDriver),
		string(e.FromStatus),
		string(e.ToStatus),
		e.Source,
		runID,
		e.CreatedAt,
	)
	return err
}

func (s *Store) drivers(ctx context.Context) ([]scheduling.Driver, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, current_status, plate FROM drivers ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []scheduling.Driver
	for rows.Next() {
		var id, name, status string
		var plate *string
		if err := rows.Scan(&id, &name, &status, &plate); err != nil {
			return nil, err
		}
		out = append(out, scheduling.Driver{
			ID:     types.ID(id),
			Name:   name,
			Status: scheduling.DriverStatus(status),
			Plate:  plate,
		})
	}
	return out, rows.Err()
}

func (s *Store) vehicles(ctx context.Context) ([]scheduling.Vehicle, error) {
	rows, err := s.db.Query(ctx, `SELECT id, plate, capacity, category FROM vehicles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []scheduling.Vehicle
	for rows.Next() {
		var id, plate, category string
		var capacity int
		if err := rows.Scan(&id, &plate, &capacity, &category); err != nil {
			return nil, err
		}
		out = append(out, scheduling.Vehicle{
			ID:       types.ID(id),
			Plate:    plate,
			Capacity: capacity,
			Category: scheduling.VehicleClass(category),
		})
	}
	return out, rows.Err()
}

func (s *Store) shifts(ctx context.Context, date string) ([]scheduling.Shift, error) {
	rows, err := s.db.Query(ctx, `
        SELECT driver_id, to_char(shift_date, 'YYYY-MM-DD'), shift_type, hours, vehicle_id
        FROM shifts
        WHERE shift_date = to_date($1, 'YYYY-MM-DD')`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []scheduling.Shift
	for rows.Next() {
		var driverID, shiftDate, shiftType string
		var hours, vehicleID *string
		if err := rows.Scan(&driverID, &shiftDate, &shiftType, &hours, &vehicleID); err != nil {
			return nil, err
		}
		sh := scheduling.Shift{
			DriverID: types.ID(driverID),
			Date:     shiftDate,
			Type:     shiftType,
			Hours:    hours,
		}
		if vehicleID != nil {
			sh.VehicleID = types.IDPtr(types.ID(*vehicleID))
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	var id, status, class string
	var driverID *string
	err := row.Scan(
		&id, &r.PickupDate, &r.PickupTime, &r.Origin, &r.Destination,
		&r.PaxCount, &class, &status, &driverID, &r.DriverName, &r.StatusVersion,
	)
	if err != nil {
		return Record{}, err
	}
	r.ID = types.ID(id)
	r.Status = scheduling.Status(status)
	r.VehicleClass = scheduling.VehicleClass(class)
	if driverID != nil {
		r.DriverID = types.IDPtr(types.ID(*driverID))
	}
	return r, nil
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
