package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"brickpress/internal/util"
	"brickpress/pkg/domain"
	"brickpress/pkg/printshop"
)

// OrderInput is a print order request.
type OrderInput struct {
	ProductID    string          `json:"productId"`
	GenerationID string          `json:"generationId,omitempty"`
	Shipping     domain.Shipping `json:"shipping"`
}

// PlaceOrder records a mock order. No payment is taken.
func (a *App) PlaceOrder(ctx context.Context, user domain.User, in OrderInput) (domain.Order, error) {
	product, total, err := printshop.Quote(in.ProductID)
	if err != nil {
		return domain.Order{}, err
	}
	shipping, err := printshop.NormalizeShipping(in.Shipping)
	if err != nil {
		return domain.Order{}, err
	}
	generationID := strings.TrimSpace(in.GenerationID)
	if generationID != "" {
		if err := a.checkOwnsGeneration(ctx, user.ID, generationID); err != nil {
			return domain.Order{}, err
		}
	}
	order := domain.Order{
		ID:           uuid.NewString(),
		OwnerID:      user.ID,
		ProductID:    product.ID,
		GenerationID: generationID,
		Shipping:     shipping,
		TotalCents:   total,
		Status:       domain.OrderPlaced,
		CreatedAt:    a.now(),
	}
	if err := a.store.CreateOrder(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	util.LoggerFromContext(ctx).Info("order placed", "order_id", order.ID, "product_id", product.ID, "total", printshop.FormatPrice(total))
	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (a *App) ListOrders(ctx context.Context, user domain.User) ([]domain.Order, error) {
	return a.store.ListOrdersByOwner(ctx, user.ID)
}

func (a *App) checkOwnsGeneration(ctx context.Context, userID, generationID string) error {
	gen, ok, err := a.store.GetGeneration(ctx, generationID)
	if err != nil {
		return fmt.Errorf("fetch generation: %w", err)
	}
	if !ok || gen.OwnerID != userID {
		return ErrUnknownGeneration
	}
	return nil
}
