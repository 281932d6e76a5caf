// Package tracker answers "where is my order" across departments without
// touching any order state. Results are cached briefly in Redis because the
// showroom floor polls it aggressively.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/craftline-erp/craftline/internal/production"
	"github.com/craftline-erp/craftline/internal/sales"
	"github.com/craftline-erp/craftline/internal/shared"
)

// ProductionPort searches production orders.
type ProductionPort interface {
	Search(ctx context.Context, term string) ([]production.Order, error)
}

// SalesPort searches sales orders.
type SalesPort interface {
	Search(ctx context.Context, term string) ([]sales.Order, error)
}

// Result is one order as seen from the outside. CurrentDepartment names the
// department holding the order right now, derived from its state.
type Result struct {
	Kind              string    `json:"kind"`
	OrderNumber       string    `json:"orderNumber"`
	ProductName       string    `json:"productName,omitempty"`
	CustomerName      string    `json:"customerName,omitempty"`
	CurrentDepartment string    `json:"currentDepartment"`
	Status            string    `json:"status"`
	PaymentStatus     string    `json:"paymentStatus,omitempty"`
	DeliveryType      string    `json:"deliveryType,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Service serves read-only status queries.
type Service struct {
	logger     *slog.Logger
	production ProductionPort
	sales      SalesPort
	cache      *redis.Client
	ttl        time.Duration
}

// NewService constructs tracker service. cache may be nil; lookups then go
// straight to the repositories every time.
func NewService(logger *slog.Logger, prod ProductionPort, sal SalesPort, cache *redis.Client, ttl time.Duration) *Service {
	return &Service{logger: logger, production: prod, sales: sal, cache: cache, ttl: ttl}
}

// Search returns the matching orders of both pipelines. A cache hit skips
// the repositories entirely; cache failures degrade to a direct query.
func (s *Service) Search(ctx context.Context, term string) ([]Result, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("tracker: search term required: %w", shared.ErrValidation)
	}
	key := cacheKey(term)
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			var cached []Result
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
			s.logger.Warn("tracker cache entry corrupt", slog.String("key", key))
		case err != redis.Nil:
			s.logger.Warn("tracker cache read failed", slog.Any("error", err))
		}
	}

	results, err := s.collect(ctx, term)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if raw, err := json.Marshal(results); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
				s.logger.Warn("tracker cache write failed", slog.Any("error", err))
			}
		}
	}
	return results, nil
}

func (s *Service) collect(ctx context.Context, term string) ([]Result, error) {
	results := make([]Result, 0, 8)
	prodOrders, err := s.production.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	for _, o := range prodOrders {
		results = append(results, Result{
			Kind:              "production",
			OrderNumber:       o.Number,
			ProductName:       o.ProductName,
			CurrentDepartment: productionDepartment(o),
			Status:            string(o.Status),
			UpdatedAt:         o.UpdatedAt,
		})
	}
	salesOrders, err := s.sales.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	for _, o := range salesOrders {
		results = append(results, Result{
			Kind:              "sales",
			OrderNumber:       o.OrderNumber,
			CustomerName:      o.CustomerName,
			CurrentDepartment: salesDepartment(o),
			Status:            string(o.OrderStatus),
			PaymentStatus:     string(o.PaymentStatus),
			DeliveryType:      string(o.DeliveryType),
			UpdatedAt:         o.UpdatedAt,
		})
	}
	return results, nil
}

// productionDepartment names who holds a production order: materials are
// Purchase's problem until allocation, the workshop owns it while building,
// and a completed build sits with the Showroom.
func productionDepartment(o production.Order) string {
	switch o.Status {
	case production.StatusInProduction:
		return "Assembly"
	case production.StatusCompleted:
		return "Showroom"
	default:
		return "Purchase"
	}
}

// salesDepartment names who holds a sales order. The handoff marker wins
// over everything else; a gated order sits with Transport and a payment
// under review with Finance.
func salesDepartment(o sales.Order) string {
	switch {
	case o.AfterSalesStatus == sales.AfterSalesSentToDispatch:
		return "Dispatch"
	case o.OrderStatus == sales.StatusPendingTransportApproval:
		return "Transport"
	case o.PaymentStatus == sales.PaymentPendingFinanceApproval:
		return "Finance"
	default:
		return "Sales"
	}
}

func cacheKey(term string) string {
	return "tracker:search:" + strings.ToLower(term)
}
