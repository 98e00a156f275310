// README: Booking service guards driver changes with the lifecycle table and optimistic versions.
package booking

import (
	"context"

	"fleetdispatch/internal/modules/scheduling"
	"fleetdispatch/internal/types"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Record, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) LoadDay(ctx context.Context, date string) (Day, error) {
	return s.store.LoadDay(ctx, date)
}

// ChangeDriver assigns or releases a booking. Either way the booking returns to
// Pending, so bookings already on the road cannot be moved.
func (s *Service) ChangeDriver(ctx context.Context, change DriverChange) error {
	if !scheduling.CanTransition(change.Current.Status, scheduling.StatusPending) {
		return ErrInvalidState
	}
	if change.ToDriver == nil {
		change.DriverName = ""
	}
	ok, err := s.store.UpdateDriver(ctx, change, scheduling.StatusPending)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}
