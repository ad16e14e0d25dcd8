package service

import (
	"context"
	"errors"
	"time"

	"github.com/NaePawat/zentry-backend-challenge/internal/model"
	"github.com/NaePawat/zentry-backend-challenge/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidTimeRange  = errors.New("'from' is later than 'to' date")
	ErrInvalidPagination = errors.New("page and limit must be positive")
)

type Service struct {
	*UserService
	*LeaderboardService
}

func NewService(userService *UserService, leaderboardService *LeaderboardService) *Service {
	return &Service{
		UserService:        userService,
		LeaderboardService: leaderboardService,
	}
}

type UserServiceI interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetProfile(ctx context.Context, username string) (*model.UserProfile, error)
	GetFriends(ctx context.Context, username string, from, to time.Time, page, limit int) (*model.FriendPage, error)
	GetTopInfluentialFriends(ctx context.Context, username string) ([]model.InfluentialFriend, error)
	GetReferrals(ctx context.Context, username string, from, to time.Time) (*model.ReferralPage, error)
}

type LeaderboardServiceI interface {
	GetActivityLog(ctx context.Context) ([]model.ActivityLogEntry, error)
	GetNetworkStrengthLeaderboard(ctx context.Context, from, to time.Time) ([]model.User, error)
	GetReferralPointsLeaderboard(ctx context.Context, from, to time.Time) ([]model.User, error)
}

// GraphReader is the read-side slice of the store the services consume.
// Implemented by *repository.Repository.
type GraphReader interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUsersByIDs(ctx context.Context, ids []uuid.UUID, orderBy string) ([]model.User, error)
	GetTopUsersByIDs(ctx context.Context, ids []uuid.UUID, limit int) ([]model.User, error)
	ListFriendships(ctx context.Context, userID uuid.UUID, from, to time.Time, offset, limit int) ([]model.Friendship, error)
	CountFriendships(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error)
	GetReferralByReferred(ctx context.Context, referredID uuid.UUID) (*model.Referral, error)
	ListReferralsByReferrer(ctx context.Context, referrerID uuid.UUID, from, to time.Time) ([]model.Referral, error)
	CountReferralsByReferrer(ctx context.Context, referrerID uuid.UUID, from, to time.Time) (int, error)
	ListActivityLog(ctx context.Context) ([]model.ActivityLogEntry, error)
	SumActivityByUser(ctx context.Context, from, to time.Time, reason model.LogReason, limit int) ([]repository.UserActivitySum, error)
}
