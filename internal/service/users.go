package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NaePawat/zentry-backend-challenge/internal/model"
	"github.com/NaePawat/zentry-backend-challenge/internal/repository"

	"github.com/google/uuid"
)

const topInfluentialLimit = 3

type UserService struct {
	repo GraphReader
}

func NewUserService(repo GraphReader) *UserService {
	return &UserService{
		repo: repo,
	}
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetProfile assembles the user row together with friends, referrer and
// outgoing referrals.
func (s *UserService) GetProfile(ctx context.Context, username string) (*model.UserProfile, error) {
	user, err := s.getUser(ctx, username)
	if err != nil {
		return nil, err
	}

	friendships, err := s.repo.ListFriendships(ctx, user.ID, time.Time{}, time.Time{}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}

	friends, err := s.resolveFriends(ctx, user.ID, friendships)
	if err != nil {
		return nil, err
	}

	var referredBy *model.Referrer
	ref, err := s.repo.GetReferralByReferred(ctx, user.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to get referrer: %w", err)
	}
	if err == nil {
		refUser, err := s.repo.GetUserByID(ctx, ref.ReferrerID)
		if err != nil {
			return nil, fmt.Errorf("failed to get referrer user: %w", err)
		}
		referredBy = &model.Referrer{
			ID:        refUser.ID,
			Username:  refUser.Username,
			CreatedAt: refUser.CreatedAt,
		}
	}

	referralList, err := s.repo.ListReferralsByReferrer(ctx, user.ID, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}

	referrals, err := s.resolveReferrals(ctx, referralList)
	if err != nil {
		return nil, err
	}

	return &model.UserProfile{
		User:       *user,
		Friends:    friends,
		ReferredBy: referredBy,
		Referrals:  referrals,
	}, nil
}

// GetFriends returns one page of the user's friends created within the range.
// Page and limit must both be positive; the page math depends on it.
func (s *UserService) GetFriends(ctx context.Context, username string, from, to time.Time, page, limit int) (*model.FriendPage, error) {
	if from.After(to) {
		return nil, ErrInvalidTimeRange
	}
	if page < 1 || limit < 1 {
		return nil, ErrInvalidPagination
	}

	user, err := s.getUser(ctx, username)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountFriendships(ctx, user.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count friendships: %w", err)
	}

	friendships, err := s.repo.ListFriendships(ctx, user.ID, from, to, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}

	friends, err := s.resolveFriends(ctx, user.ID, friendships)
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit

	return &model.FriendPage{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalFriends: total,
		Friends:      friends,
	}, nil
}

// GetTopInfluentialFriends returns the user's three friends with the highest
// network strength.
func (s *UserService) GetTopInfluentialFriends(ctx context.Context, username string) ([]model.InfluentialFriend, error) {
	user, err := s.getUser(ctx, username)
	if err != nil {
		return nil, err
	}

	friendships, err := s.repo.ListFriendships(ctx, user.ID, time.Time{}, time.Time{}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}

	friendIDs := make([]uuid.UUID, len(friendships))
	for i, f := range friendships {
		friendIDs[i] = otherSide(user.ID, f)
	}

	topFriends, err := s.repo.GetTopUsersByIDs(ctx, friendIDs, topInfluentialLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top friends: %w", err)
	}

	list := make([]model.InfluentialFriend, len(topFriends))
	for i, friend := range topFriends {
		list[i] = model.InfluentialFriend{
			ID:              friend.ID,
			Username:        friend.Username,
			NetworkStrength: friend.NetworkStrength,
			CreatedAt:       friend.CreatedAt,
		}
	}
	return list, nil
}

// GetReferrals returns the user's outgoing referrals created within the range.
func (s *UserService) GetReferrals(ctx context.Context, username string, from, to time.Time) (*model.ReferralPage, error) {
	if from.After(to) {
		return nil, ErrInvalidTimeRange
	}

	user, err := s.getUser(ctx, username)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountReferralsByReferrer(ctx, user.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count referrals: %w", err)
	}

	referralList, err := s.repo.ListReferralsByReferrer(ctx, user.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}

	referrals, err := s.resolveReferrals(ctx, referralList)
	if err != nil {
		return nil, err
	}

	return &model.ReferralPage{
		TotalReferrals: total,
		Referrals:      referrals,
	}, nil
}

func (s *UserService) getUser(ctx context.Context, username string) (*model.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *UserService) resolveFriends(ctx context.Context, userID uuid.UUID, friendships []model.Friendship) ([]model.Friend, error) {
	friends := make([]model.Friend, 0, len(friendships))
	for _, f := range friendships {
		friend, err := s.repo.GetUserByID(ctx, otherSide(userID, f))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve friend: %w", err)
		}
		friends = append(friends, model.Friend{
			ID:        f.ID,
			Username:  friend.Username,
			CreatedAt: f.CreatedAt,
		})
	}
	return friends, nil
}

func (s *UserService) resolveReferrals(ctx context.Context, referralList []model.Referral) ([]model.ReferralEntry, error) {
	referrals := make([]model.ReferralEntry, 0, len(referralList))
	for _, ref := range referralList {
		referred, err := s.repo.GetUserByID(ctx, ref.ReferredID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve referred user: %w", err)
		}
		referrals = append(referrals, model.ReferralEntry{
			ID:         ref.ID,
			ReferredID: ref.ReferredID,
			Username:   referred.Username,
			CreatedAt:  ref.CreatedAt,
		})
	}
	return referrals, nil
}

func otherSide(userID uuid.UUID, f model.Friendship) uuid.UUID {
	if f.User1ID == userID {
		return f.User2ID
	}
	return f.User1ID
}
