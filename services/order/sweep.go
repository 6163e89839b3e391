// File: services/order/sweep.go
package order

import (
	"context"
	"time"

	"wellvix/config"
	"wellvix/models"
	"wellvix/utils"

	"go.uber.org/zap"
)

const sweepBatchSize = 200

// SweepAutoComplete approves every order still sitting in delivered once
// its review window has elapsed. Each order is re-fetched and approved
// through the normal completion path, so a client approval or revision
// racing the sweep simply wins.
func (s *DefaultOrderService) SweepAutoComplete(ctx context.Context) ([]models.SweepResult, error) {
	logger := utils.GetLogger().Named("OrderSweep")

	days := config.AppConfig.ReviewWindowDays
	if days <= 0 {
		days = 7
	}
	cutoff := s.now().UTC().AddDate(0, 0, -days)

	due, err := s.OrderRepo.ListDeliveredBefore(ctx, cutoff, sweepBatchSize)
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return nil, nil
	}
	logger.Info("auto-completion sweep started",
		zap.Int("candidates", len(due)), zap.Time("cutoff", cutoff))

	results := make([]models.SweepResult, 0, len(due))
	for _, candidate := range due {
		res := models.SweepResult{OrderID: candidate.ID}

		// Re-fetch: the candidate list may be minutes stale by now.
		o, err := s.OrderRepo.GetByID(ctx, candidate.ID)
		if err != nil {
			res.Error = err.Error()
			results = append(results, res)
			continue
		}
		if o.Status != models.OrderStatusDelivered {
			continue
		}
		if o.DeliveredAt != nil && o.DeliveredAt.After(cutoff) {
			continue
		}

		if _, err := s.approve(ctx, o, true); err != nil {
			logger.Warn("auto-completion failed",
				zap.String("order_id", o.ID), zap.Error(err))
			res.Error = err.Error()
		} else {
			res.OK = true
		}
		results = append(results, res)
	}

	logger.Info("auto-completion sweep finished", zap.Int("processed", len(results)))
	return results, nil
}

// ReviewDeadline reports when a delivered order will auto-complete, for
// API responses. Zero time if the order is not delivered.
func ReviewDeadline(o *models.Order) time.Time {
	if o.Status != models.OrderStatusDelivered || o.DeliveredAt == nil {
		return time.Time{}
	}
	days := config.AppConfig.ReviewWindowDays
	if days <= 0 {
		days = 7
	}
	return o.DeliveredAt.AddDate(0, 0, days)
}
