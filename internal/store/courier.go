package store

import (
	"context"

	"craftmarket/internal/models"
)

const courierColumns = "id, custom_order_id, address, pickup_time, status, created_at, updated_at"

func (s *Store) CreateCourierRequest(ctx context.Context, r *models.CourierRequest) error {
	now := s.Now()
	r.Status = models.CourierRequested
	id, err := s.insert(ctx, `INSERT INTO courier_requests (custom_order_id, address, pickup_time, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`, r.CustomOrderID, r.Address, r.PickupTime.UTC(), r.Status, now, now)
	if err != nil {
		return err
	}
	r.ID, r.CreatedAt, r.UpdatedAt = id, now, now
	return nil
}

func (s *Store) GetCourierRequest(ctx context.Context, id int64) (models.CourierRequest, error) {
	var r models.CourierRequest
	err := s.get(ctx, &r, "SELECT "+courierColumns+" FROM courier_requests WHERE id = $1", id)
	return r, err
}

// GetActiveCourierRequest returns the custom order's non-cancelled request.
func (s *Store) GetActiveCourierRequest(ctx context.Context, customOrderID int64) (models.CourierRequest, error) {
	var r models.CourierRequest
	err := s.get(ctx, &r, "SELECT "+courierColumns+" FROM courier_requests WHERE custom_order_id = $1 AND status <> $2 ORDER BY id DESC LIMIT 1",
		customOrderID, models.CourierCancelled)
	return r, err
}

func (s *Store) TransitionCourierRequest(ctx context.Context, id int64, from, to models.CourierStatus) error {
	return s.execCAS(ctx, "UPDATE courier_requests SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4",
		to, s.Now(), id, from)
}
