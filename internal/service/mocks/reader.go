package mocks

import (
	"context"
	"time"

	"github.com/NaePawat/zentry-backend-challenge/internal/model"
	"github.com/NaePawat/zentry-backend-challenge/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockGraphReader struct {
	mock.Mock
}

func (m *MockGraphReader) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockGraphReader) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockGraphReader) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockGraphReader) GetUsersByIDs(ctx context.Context, ids []uuid.UUID, orderBy string) ([]model.User, error) {
	args := m.Called(ctx, ids, orderBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockGraphReader) GetTopUsersByIDs(ctx context.Context, ids []uuid.UUID, limit int) ([]model.User, error) {
	args := m.Called(ctx, ids, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockGraphReader) ListFriendships(ctx context.Context, userID uuid.UUID, from, to time.Time, offset, limit int) ([]model.Friendship, error) {
	args := m.Called(ctx, userID, from, to, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Friendship), args.Error(1)
}

func (m *MockGraphReader) CountFriendships(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockGraphReader) GetReferralByReferred(ctx context.Context, referredID uuid.UUID) (*model.Referral, error) {
	args := m.Called(ctx, referredID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Referral), args.Error(1)
}

func (m *MockGraphReader) ListReferralsByReferrer(ctx context.Context, referrerID uuid.UUID, from, to time.Time) ([]model.Referral, error) {
	args := m.Called(ctx, referrerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Referral), args.Error(1)
}

func (m *MockGraphReader) CountReferralsByReferrer(ctx context.Context, referrerID uuid.UUID, from, to time.Time) (int, error) {
	args := m.Called(ctx, referrerID, from, to)
	return args.Int(0), args.Error(1)
}

func (m *MockGraphReader) ListActivityLog(ctx context.Context) ([]model.ActivityLogEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ActivityLogEntry), args.Error(1)
}

func (m *MockGraphReader) SumActivityByUser(ctx context.Context, from, to time.Time, reason model.LogReason, limit int) ([]repository.UserActivitySum, error) {
	args := m.Called(ctx, from, to, reason, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.UserActivitySum), args.Error(1)
}
