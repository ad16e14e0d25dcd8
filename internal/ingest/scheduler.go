package ingest

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/NaePawat/zentry-backend-challenge/internal/model"
	"github.com/NaePawat/zentry-backend-challenge/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// EventSource yields one lazily-generated batch of typed events per call.
// It guarantees neither username uniqueness nor referential validity.
type EventSource interface {
	NextBatch(count int) []model.Event
}

// Publisher receives per-tick summaries; the ws feed implements it.
type Publisher interface {
	Publish(s TickSummary)
}

type TickSummary struct {
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration_ns"`
	Total      int           `json:"total"`
	Registers  int           `json:"registers"`
	Referrals  int           `json:"referrals"`
	FriendAdds int           `json:"friend_adds"`
	Unfriends  int           `json:"unfriends"`
}

type Config struct {
	IntervalSeconds  int `yaml:"intervalSeconds"`
	EventsPerTick    int `yaml:"eventsPerTick"`
	Concurrency      int `yaml:"concurrency"`
	SubBatchSize     int `yaml:"subBatchSize"`
	MaxReferralDepth int `yaml:"maxReferralDepth"`
}

// Scheduler drives the pipeline on a fixed cadence. Register events complete
// before any dependent kind starts; the three dependent kinds then run
// concurrently with each other. A tick that fires while the previous one is
// still in flight is skipped.
type Scheduler struct {
	cfg      Config
	source   EventSource
	pipeline *Pipeline
	executor *Executor
	pub      Publisher
	cron     *cron.Cron
	inFlight atomic.Bool
	log      *zap.Logger
}

func NewScheduler(cfg Config, source EventSource, pipeline *Pipeline, executor *Executor, pub Publisher) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		source:   source,
		pipeline: pipeline,
		executor: executor,
		pub:      pub,
		log:      logger.Logger(),
	}
}

func (s *Scheduler) Start() error {
	s.cron = cron.New(cron.WithSeconds())
	spec := fmt.Sprintf("*/%d * * * * *", s.cfg.IntervalSeconds)
	_, err := s.cron.AddFunc(spec, s.tick)
	if err != nil {
		return fmt.Errorf("failed to schedule tick: %w", err)
	}
	s.cron.Start()
	s.log.Info("scheduler started",
		zap.Int("interval_seconds", s.cfg.IntervalSeconds),
		zap.Int("events_per_tick", s.cfg.EventsPerTick))
	return nil
}

// Stop waits for an in-flight tick to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Scheduler) tick() {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.log.Warn("previous tick still in flight, skipping")
		return
	}
	defer s.inFlight.Store(false)

	s.RunOnce(context.Background())
}

// RunOnce pulls one generation of events and runs it to completion. Exposed
// separately from the cron wiring so a batch can be driven directly.
func (s *Scheduler) RunOnce(ctx context.Context) TickSummary {
	events := s.source.NextBatch(s.cfg.EventsPerTick)
	start := time.Now()

	registers, referrals, addFriends, unfriends := partitionEvents(events)

	// Registrations first: the other kinds depend on user existence.
	s.executor.Run(ctx, registers, s.pipeline.RegisterUser)

	g := new(errgroup.Group)
	g.Go(func() error {
		s.executor.Run(ctx, referrals, s.pipeline.ReferUser)
		return nil
	})
	g.Go(func() error {
		s.executor.Run(ctx, addFriends, s.pipeline.AddFriend)
		return nil
	})
	g.Go(func() error {
		s.executor.Run(ctx, unfriends, s.pipeline.Unfriend)
		return nil
	})
	_ = g.Wait()

	summary := TickSummary{
		StartedAt:  start.UTC(),
		Duration:   time.Since(start),
		Total:      len(events),
		Registers:  len(registers),
		Referrals:  len(referrals),
		FriendAdds: len(addFriends),
		Unfriends:  len(unfriends),
	}

	s.log.Info("tick complete",
		zap.Int("total", summary.Total),
		zap.Int("registers", summary.Registers),
		zap.Int("referrals", summary.Referrals),
		zap.Int("friend_adds", summary.FriendAdds),
		zap.Int("unfriends", summary.Unfriends),
		zap.Duration("duration", summary.Duration))

	if s.pub != nil {
		s.pub.Publish(summary)
	}
	return summary
}

func partitionEvents(events []model.Event) (registers, referrals, addFriends, unfriends []model.Event) {
	for _, e := range events {
		switch e.Type {
		case model.EventRegister:
			registers = append(registers, e)
		case model.EventReferral:
			referrals = append(referrals, e)
		case model.EventAddFriend:
			addFriends = append(addFriends, e)
		case model.EventUnfriend:
			unfriends = append(unfriends, e)
		}
	}
	return registers, referrals, addFriends, unfriends
}
