package service

import (
	"context"
	"fmt"
	"time"

	"github.com/NaePawat/zentry-backend-challenge/internal/model"
	"github.com/NaePawat/zentry-backend-challenge/internal/repository"

	"github.com/google/uuid"
)

const leaderboardLimit = 10

// LeaderboardService answers time-ranged leaderboard queries from the
// append-only activity log rather than the cached aggregate columns; the
// cached values only decide the display order of the winners.
type LeaderboardService struct {
	repo GraphReader
}

func NewLeaderboardService(repo GraphReader) *LeaderboardService {
	return &LeaderboardService{
		repo: repo,
	}
}

func (s *LeaderboardService) GetActivityLog(ctx context.Context) ([]model.ActivityLogEntry, error) {
	logs, err := s.repo.ListActivityLog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity log: %w", err)
	}
	return logs, nil
}

func (s *LeaderboardService) GetNetworkStrengthLeaderboard(ctx context.Context, from, to time.Time) ([]model.User, error) {
	return s.leaderboard(ctx, from, to, "", repository.OrderByNetworkStrength)
}

func (s *LeaderboardService) GetReferralPointsLeaderboard(ctx context.Context, from, to time.Time) ([]model.User, error) {
	return s.leaderboard(ctx, from, to, model.ReasonReferral, repository.OrderByReferralPoints)
}

func (s *LeaderboardService) leaderboard(ctx context.Context, from, to time.Time, reason model.LogReason, orderBy string) ([]model.User, error) {
	if from.After(to) {
		return nil, ErrInvalidTimeRange
	}

	sums, err := s.repo.SumActivityByUser(ctx, from, to, reason, leaderboardLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate activity: %w", err)
	}

	ids := make([]uuid.UUID, len(sums))
	for i, sum := range sums {
		ids[i] = sum.UserID
	}

	users, err := s.repo.GetUsersByIDs(ctx, ids, orderBy)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve leaderboard users: %w", err)
	}
	return users, nil
}
