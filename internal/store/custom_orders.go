package store

import (
	"context"
	"time"

	"craftmarket/internal/models"
	"craftmarket/internal/money"
)

const customOrderColumns = `id, user_id, seller_id, description, image_url, status, negotiation_status, initial_price,
proposed_price, agreed_price, payment_status, snap_token, payment_reference, paid_at, created_at, updated_at`

var createCustomOrderQuery = `INSERT INTO custom_orders (user_id, seller_id, description, image_url, status, negotiation_status, payment_status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`

func (s *Store) CreateCustomOrder(ctx context.Context, o *models.CustomOrder) error {
	now := s.Now()
	id, err := s.insert(ctx, createCustomOrderQuery, o.UserID, o.SellerID, o.Description, o.ImageURL,
		o.Status, o.NegotiationStatus, o.PaymentStatus, now, now)
	if err != nil {
		return err
	}
	o.ID, o.CreatedAt, o.UpdatedAt = id, now, now
	return nil
}

func (s *Store) GetCustomOrder(ctx context.Context, id int64) (models.CustomOrder, error) {
	var o models.CustomOrder
	err := s.get(ctx, &o, "SELECT "+customOrderColumns+" FROM custom_orders WHERE id = $1", id)
	return o, err
}

type partiesRow struct {
	BuyerID      int64  `db:"buyer_id"`
	SellerUserID int64  `db:"seller_user_id"`
	StoreName    string `db:"store_name"`
}

// GetCustomOrderParties resolves the buyer and the seller's user account.
func (s *Store) GetCustomOrderParties(ctx context.Context, id int64) (models.CustomOrderParties, error) {
	var row partiesRow
	err := s.get(ctx, &row, `SELECT co.user_id AS buyer_id, s.user_id AS seller_user_id, s.store_name
FROM custom_orders co JOIN sellers s ON s.id = co.seller_id WHERE co.id = $1`, id)
	return models.CustomOrderParties(row), err
}

func (s *Store) ListCustomOrdersByUser(ctx context.Context, userID int64) ([]models.CustomOrder, error) {
	out := []models.CustomOrder{}
	err := s.selectAll(ctx, &out, "SELECT "+customOrderColumns+" FROM custom_orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC", userID)
	return out, err
}

func (s *Store) ListCustomOrdersBySeller(ctx context.Context, sellerID int64) ([]models.CustomOrder, error) {
	out := []models.CustomOrder{}
	err := s.selectAll(ctx, &out, "SELECT "+customOrderColumns+" FROM custom_orders WHERE seller_id = $1 ORDER BY created_at DESC, id DESC", sellerID)
	return out, err
}

// TransitionCustomOrder moves status from -> to, failing with ErrStale when the
// row is no longer in from.
func (s *Store) TransitionCustomOrder(ctx context.Context, id int64, from, to models.CustomOrderStatus) error {
	return s.execCAS(ctx, "UPDATE custom_orders SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4",
		to, s.Now(), id, from)
}

// ApplySellerProposal records a seller offer and moves the order to negotiating.
func (s *Store) ApplySellerProposal(ctx context.Context, id int64, from models.CustomOrderStatus, price money.Amount) error {
	return s.execCAS(ctx, `UPDATE custom_orders SET
initial_price = COALESCE(initial_price, $1), negotiation_status = $2, status = $3, updated_at = $4
WHERE id = $5 AND status = $6 AND negotiation_status <> $7`,
		price, models.NegotiationSellerProposed, models.CustomOrderNegotiating, s.Now(), id, from, models.NegotiationAgreed)
}

func (s *Store) ApplyBuyerCounter(ctx context.Context, id int64, price money.Amount) error {
	return s.execCAS(ctx, `UPDATE custom_orders SET proposed_price = $1, negotiation_status = $2, updated_at = $3
WHERE id = $4 AND status = $5 AND negotiation_status <> $6`,
		price, models.NegotiationBuyerCountered, s.Now(), id, models.CustomOrderNegotiating, models.NegotiationAgreed)
}

// ApplyAgreement freezes the agreed price and moves the order to payment_pending.
func (s *Store) ApplyAgreement(ctx context.Context, id int64, price money.Amount) error {
	return s.execCAS(ctx, `UPDATE custom_orders SET agreed_price = $1, negotiation_status = $2, status = $3, updated_at = $4
WHERE id = $5 AND status = $6 AND negotiation_status <> $7`,
		price, models.NegotiationAgreed, models.CustomOrderPaymentPending, s.Now(), id, models.CustomOrderNegotiating, models.NegotiationAgreed)
}

// SetCustomOrderPaymentToken stores a freshly created gateway transaction.
func (s *Store) SetCustomOrderPaymentToken(ctx context.Context, id int64, token, reference string) error {
	return s.execCAS(ctx, `UPDATE custom_orders SET snap_token = $1, payment_reference = $2, payment_status = $3, status = $4, updated_at = $5
WHERE id = $6 AND payment_status <> $7`,
		token, reference, models.PaymentPending, models.CustomOrderPaymentPending, s.Now(), id, models.PaymentPaid)
}

// ApplyPaymentResult writes a mapped gateway status. paidAt is only set when
// moving into paid; a paid row is never downgraded.
func (s *Store) ApplyPaymentResult(ctx context.Context, id int64, status models.CustomOrderStatus, payment models.PaymentStatus, paidAt *time.Time) error {
	return s.execCAS(ctx, `UPDATE custom_orders SET payment_status = $1, status = $2, paid_at = COALESCE(paid_at, $3), updated_at = $4
WHERE id = $5 AND payment_status <> $6`,
		payment, status, paidAt, s.Now(), id, models.PaymentPaid)
}
