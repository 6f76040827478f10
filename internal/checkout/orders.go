package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"craftmarket/internal/apperr"
	"craftmarket/internal/logging"
	"craftmarket/internal/models"
	"craftmarket/internal/money"
	"craftmarket/internal/payment"
	"craftmarket/internal/store"
)

const (
	orderRequestTitle = "Product Order"
	orderDescription  = "Order from marketplace"
	orderCategory     = "product_order"
)

type Service struct {
	store         *store.Store
	gateway       payment.Gateway
	currency      money.Currency
	paymentExpiry time.Duration
}

func NewService(st *store.Store, gateway payment.Gateway, currency money.Currency, paymentExpiry time.Duration) *Service {
	return &Service{store: st, gateway: gateway, currency: currency, paymentExpiry: paymentExpiry}
}

type LineInput struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// ProductNotFoundError reports an order line that references no product.
type ProductNotFoundError struct {
	ProductID int64
}

func (e ProductNotFoundError) Error() string {
	return fmt.Sprintf("product with ID %d not found", e.ProductID)
}

// CreateOrders splits the lines by seller and creates one order per seller.
// Either every order is created or none is.
func (s *Service) CreateOrders(ctx context.Context, buyerID int64, lines []LineInput) ([]models.Order, error) {
	var orders []models.Order
	err := s.store.Transact(ctx, func(ctx context.Context) error {
		var err error
		orders, err = s.createOrders(ctx, buyerID, lines)
		return err
	})
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("orders created", slog.Int64(logging.KeyUserID, buyerID), slog.Int("count", len(orders)))
	return orders, nil
}

// Checkout orders everything in the cart and empties it in the same
// transaction.
func (s *Service) Checkout(ctx context.Context, buyerID int64) ([]models.Order, error) {
	var orders []models.Order
	err := s.store.Transact(ctx, func(ctx context.Context) error {
		cart, err := s.store.ListCart(ctx, buyerID)
		if err != nil {
			return err
		}
		lines := make([]LineInput, 0, len(cart))
		for _, item := range cart {
			lines = append(lines, LineInput{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		if orders, err = s.createOrders(ctx, buyerID, lines); err != nil {
			return err
		}
		_, err = s.store.ClearCart(ctx, buyerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("cart checked out", slog.Int64(logging.KeyUserID, buyerID), slog.Int("count", len(orders)))
	return orders, nil
}

func (s *Service) createOrders(ctx context.Context, buyerID int64, lines []LineInput) ([]models.Order, error) {
	if len(lines) == 0 {
		return nil, apperr.Validation("order must have at least one item")
	}
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, apperr.Validation("quantity must be at least 1")
		}
		ids = append(ids, line.ProductID)
	}

	products, err := s.store.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	var sellerOrder []int64
	bySeller := make(map[int64]*models.Order)
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, ProductNotFoundError{ProductID: line.ProductID}
		}
		order, ok := bySeller[product.SellerID]
		if !ok {
			order = &models.Order{
				UserID:        buyerID,
				SellerID:      product.SellerID,
				Status:        models.OrderPending,
				PaymentStatus: models.OrderUnpaid,
				RequestTitle:  orderRequestTitle,
				Description:   orderDescription,
				Category:      orderCategory,
			}
			bySeller[product.SellerID] = order
			sellerOrder = append(sellerOrder, product.SellerID)
		}
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   product.ID,
			Quantity:    line.Quantity,
			Price:       product.Price,
			ProductName: product.Name,
			ImageURL:    product.ImageURL,
		})
		order.TotalAmount = order.TotalAmount.Add(product.Price.Mul(line.Quantity))
	}

	orders := make([]models.Order, 0, len(sellerOrder))
	for _, sellerID := range sellerOrder {
		order := bySeller[sellerID]
		if err := s.store.CreateOrder(ctx, order); err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

func (s *Service) GetForUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return s.store.ListOrdersByUser(ctx, userID)
}

func (s *Service) GetForSeller(ctx context.Context, sellerUserID int64) ([]models.Order, error) {
	seller, err := s.store.GetSellerByUserID(ctx, sellerUserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("seller profile not found")
	}
	if err != nil {
		return nil, err
	}
	return s.store.ListOrdersBySeller(ctx, seller.ID)
}

// UpdateStatus lets the receiving seller move an order between its statuses.
func (s *Service) UpdateStatus(ctx context.Context, sellerUserID, orderID int64, status models.OrderStatus) (models.Order, error) {
	if !status.Valid() {
		return models.Order{}, apperr.Validation("invalid order status %q", status)
	}
	order, err := s.ownedBySeller(ctx, sellerUserID, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if err := s.store.UpdateOrderStatus(ctx, order.ID, status); err != nil {
		return models.Order{}, err
	}
	return s.store.GetOrder(ctx, order.ID)
}

func (s *Service) ownedBySeller(ctx context.Context, sellerUserID, orderID int64) (models.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Order{}, apperr.Forbidden("you do not have permission to modify this order")
	}
	if err != nil {
		return models.Order{}, err
	}
	seller, err := s.store.GetSellerByUserID(ctx, sellerUserID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && seller.ID != order.SellerID) {
		return models.Order{}, apperr.Forbidden("you do not have permission to modify this order")
	}
	return order, err
}
