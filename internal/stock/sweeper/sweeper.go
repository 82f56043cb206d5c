package sweeper

import (
	"context"
	"time"

	"github.com/classmart/inventory-service/internal/stock"
	"github.com/classmart/inventory-service/pkg/logger"
	"go.uber.org/zap"
)

// Sweeper periodically releases reservations whose TTL has lapsed, so
// abandoned carts and crashed business transactions cannot hold stock forever.
type Sweeper struct {
	engine   stock.UseCase
	interval time.Duration
	logger   logger.ZapLogger
}

func NewSweeper(engine stock.UseCase, interval time.Duration, log logger.ZapLogger) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		engine:   engine,
		interval: interval,
		logger:   log,
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("starting reservation sweeper", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping reservation sweeper")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass. Exported so operators can trigger it out of cycle.
func (s *Sweeper) Sweep(ctx context.Context) {
	swept, err := s.engine.ReleaseExpired(ctx, time.Now())
	if err != nil {
		s.logger.Error("reservation sweep failed", zap.Error(err))
		return
	}
	if swept > 0 {
		s.logger.Info("reservation sweep done", zap.Int("released", swept))
	}
}
