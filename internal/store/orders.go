package store

import (
	"context"

	"craftmarket/internal/models"
)

const orderColumns = "id, user_id, seller_id, total_amount, status, payment_status, snap_token, request_title, description, category, order_date, updated_at"

var createOrderQuery = `INSERT INTO orders (user_id, seller_id, total_amount, status, payment_status, request_title, description, category, order_date, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`

var createOrderItemQuery = `INSERT INTO order_items (order_id, product_id, quantity, price) VALUES ($1, $2, $3, $4) RETURNING id`

// CreateOrder inserts the order and its item snapshots.
func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	return s.Transact(ctx, func(ctx context.Context) error {
		now := s.Now()
		id, err := s.insert(ctx, createOrderQuery, o.UserID, o.SellerID, o.TotalAmount, o.Status, o.PaymentStatus,
			o.RequestTitle, o.Description, o.Category, now, now)
		if err != nil {
			return err
		}
		o.ID, o.OrderDate, o.UpdatedAt = id, now, now

		for i := range o.Items {
			item := &o.Items[i]
			item.OrderID = id
			itemID, err := s.insert(ctx, createOrderItemQuery, id, item.ProductID, item.Quantity, item.Price)
			if err != nil {
				return err
			}
			item.ID = itemID
		}
		return nil
	})
}

func (s *Store) GetOrder(ctx context.Context, id int64) (models.Order, error) {
	var o models.Order
	if err := s.get(ctx, &o, "SELECT "+orderColumns+" FROM orders WHERE id = $1", id); err != nil {
		return o, err
	}
	items, err := s.orderItems(ctx, []int64{id})
	if err != nil {
		return o, err
	}
	o.Items = items[id]
	if o.Items == nil {
		o.Items = []models.OrderItem{}
	}
	return o, nil
}

func (s *Store) ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.listOrders(ctx, "SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY order_date DESC, id DESC", userID)
}

func (s *Store) ListOrdersBySeller(ctx context.Context, sellerID int64) ([]models.Order, error) {
	return s.listOrders(ctx, "SELECT "+orderColumns+" FROM orders WHERE seller_id = $1 ORDER BY order_date DESC, id DESC", sellerID)
}

func (s *Store) listOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	orders := []models.Order{}
	if err := s.selectAll(ctx, &orders, query, args...); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	items, err := s.orderItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
		if orders[i].Items == nil {
			orders[i].Items = []models.OrderItem{}
		}
	}
	return orders, nil
}

func (s *Store) orderItems(ctx context.Context, orderIDs []int64) (map[int64][]models.OrderItem, error) {
	query, args, err := in(`SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.price, p.name AS product_name, p.image_url
FROM order_items oi JOIN products p ON p.id = oi.product_id
WHERE oi.order_id IN (?) ORDER BY oi.id`, orderIDs)
	if err != nil {
		return nil, err
	}
	var rows []models.OrderItem
	if err := s.selectAll(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make(map[int64][]models.OrderItem, len(orderIDs))
	for _, item := range rows {
		out[item.OrderID] = append(out[item.OrderID], item)
	}
	return out, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	return s.execCAS(ctx, "UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3", status, s.Now(), id)
}

func (s *Store) SetOrderSnapToken(ctx context.Context, id int64, token string) error {
	return s.execCAS(ctx, "UPDATE orders SET snap_token = $1, payment_status = $2, updated_at = $3 WHERE id = $4 AND payment_status <> $5",
		token, models.OrderPaymentPending, s.Now(), id, models.OrderPaid)
}

// UpdateOrderPaymentStatus records a gateway result. A paid order stays paid.
func (s *Store) UpdateOrderPaymentStatus(ctx context.Context, id int64, status models.OrderPaymentStatus) error {
	n, err := s.exec(ctx, "UPDATE orders SET payment_status = $1, updated_at = $2 WHERE id = $3 AND payment_status <> $4",
		status, s.Now(), id, models.OrderPaid)
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := s.GetOrder(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
