package sweeper

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/classmart/inventory-service/internal/model"
	"github.com/classmart/inventory-service/internal/stock/dto"
	"github.com/classmart/inventory-service/pkg/logger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type sweepCounter struct {
	calls int32
	err   error
}

func (s *sweepCounter) ReleaseExpired(context.Context, time.Time) (int, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return 0, s.err
	}
	return 1, nil
}

func (s *sweepCounter) CheckAvailability(context.Context, model.StockKey, float64) (bool, error) {
	return true, nil
}
func (s *sweepCounter) Reserve(context.Context, *dto.ReserveInput) error { return nil }
func (s *sweepCounter) Deduct(context.Context, *dto.DeductInput) (*model.StockMovement, error) {
	return nil, nil
}
func (s *sweepCounter) Release(context.Context, *dto.ReleaseInput) error { return nil }
func (s *sweepCounter) Balance(context.Context, model.StockKey) (*dto.Balance, error) {
	return &dto.Balance{}, nil
}
func (s *sweepCounter) History(context.Context, *dto.MovementFilters) ([]model.StockMovement, int, error) {
	return nil, 0, nil
}
func (s *sweepCounter) ListLowStock(context.Context, string, string, int, int) ([]model.StockLevel, int, error) {
	return nil, 0, nil
}
func (s *sweepCounter) Adjust(context.Context, *dto.AdjustInput) (*model.StockMovement, error) {
	return nil, nil
}
func (s *sweepCounter) Transfer(context.Context, *dto.TransferInput) error { return nil }

func TestSweepRunsOnePass(t *testing.T) {
	engine := &sweepCounter{}
	s := NewSweeper(engine, time.Minute, logger.NewNop())

	s.Sweep(context.Background())
	assert.Equal(t, int32(1), atomic.LoadInt32(&engine.calls))
}

func TestSweepSurvivesEngineError(t *testing.T) {
	engine := &sweepCounter{err: errors.New("db down")}
	s := NewSweeper(engine, time.Minute, logger.NewNop())

	s.Sweep(context.Background())
	s.Sweep(context.Background())
	assert.Equal(t, int32(2), atomic.LoadInt32(&engine.calls))
}

func TestStartTicksUntilCancelled(t *testing.T) {
	engine := &sweepCounter{}
	s := NewSweeper(engine, 5*time.Millisecond, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done

	assert.Greater(t, atomic.LoadInt32(&engine.calls), int32(0))
}
