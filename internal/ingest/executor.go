package ingest

import (
	"context"

	"github.com/NaePawat/zentry-backend-challenge/internal/model"
	"github.com/NaePawat/zentry-backend-challenge/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultConcurrency  = 20
	DefaultSubBatchSize = 1000
)

type HandlerFunc func(ctx context.Context, e model.Event) error

// Executor processes events in sequential sub-batches, capping in-flight
// handler invocations. Order within a sub-batch is unspecified; one event's
// failure is logged and never aborts its siblings.
type Executor struct {
	concurrency  int
	subBatchSize int
	log          *zap.Logger
}

func NewExecutor(concurrency, subBatchSize int) *Executor {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if subBatchSize <= 0 {
		subBatchSize = DefaultSubBatchSize
	}
	return &Executor{
		concurrency:  concurrency,
		subBatchSize: subBatchSize,
		log:          logger.Logger(),
	}
}

func (ex *Executor) Run(ctx context.Context, events []model.Event, handler HandlerFunc) {
	for start := 0; start < len(events); start += ex.subBatchSize {
		end := start + ex.subBatchSize
		if end > len(events) {
			end = len(events)
		}

		g := new(errgroup.Group)
		g.SetLimit(ex.concurrency)
		for _, e := range events[start:end] {
			e := e
			g.Go(func() error {
				if err := handler(ctx, e); err != nil {
					ex.log.Warn("event dropped",
						zap.String("type", string(e.Type)), zap.Error(err))
				}
				return nil
			})
		}
		// Handler errors never reach the group, so this only synchronizes.
		_ = g.Wait()
	}
}
