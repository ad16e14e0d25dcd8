package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/NaePawat/zentry-backend-challenge/internal/model"
	"github.com/NaePawat/zentry-backend-challenge/internal/repository"
	"github.com/NaePawat/zentry-backend-challenge/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GraphStore is the slice of the store the mutation pipeline writes through.
// Implemented by *repository.Repository; increments must be atomic per row
// and creates must fail with repository.ErrAlreadyExists on constraint hits.
type GraphStore interface {
	CreateUser(ctx context.Context, username string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateReferral(ctx context.Context, referrerID, referredID uuid.UUID) (*model.Referral, error)
	GetReferralByReferred(ctx context.Context, referredID uuid.UUID) (*model.Referral, error)
	ListReferralsByReferred(ctx context.Context, referredID uuid.UUID) ([]model.Referral, error)
	GetFriendship(ctx context.Context, user1ID, user2ID uuid.UUID) (*model.Friendship, error)
	CreateFriendship(ctx context.Context, user1ID, user2ID uuid.UUID) (*model.Friendship, error)
	DeleteFriendship(ctx context.Context, id uuid.UUID) error
	UpdateUserCounters(ctx context.Context, id uuid.UUID, strengthDelta, pointsDelta int) error
	AppendActivityLog(ctx context.Context, userID uuid.UUID, amount int, reason model.LogReason) error
}

// Pipeline holds the per-event-kind mutation handlers. Handlers return an
// error only for genuine failures; idempotency conflicts are absorbed as
// no-ops. The executor logs and discards whatever comes back, so a failing
// event never affects its siblings.
type Pipeline struct {
	store            GraphStore
	maxReferralDepth int
	log              *zap.Logger
}

func NewPipeline(store GraphStore, maxReferralDepth int) *Pipeline {
	return &Pipeline{
		store:            store,
		maxReferralDepth: maxReferralDepth,
		log:              logger.Logger(),
	}
}

// RegisterUser creates the user row. A taken username is expected under
// at-least-once generation and is not an error.
func (p *Pipeline) RegisterUser(ctx context.Context, e model.Event) error {
	_, err := p.store.CreateUser(ctx, e.Name)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil
		}
		return fmt.Errorf("register %q: %w", e.Name, err)
	}
	return nil
}

// ReferUser checks its preconditions in order, short-circuiting on the first
// failure, then applies the referral: edge creation, both users' aggregate
// bumps, the chain walk, and two activity rows for the referrer.
func (p *Pipeline) ReferUser(ctx context.Context, e model.Event) error {
	referred, err := p.store.GetUserByUsername(ctx, e.User)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("refer: user %q not found", e.User)
		}
		return fmt.Errorf("refer: lookup %q: %w", e.User, err)
	}

	referrer, err := p.store.GetUserByUsername(ctx, e.ReferredBy)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("refer: referrer %q not found", e.ReferredBy)
		}
		return fmt.Errorf("refer: lookup %q: %w", e.ReferredBy, err)
	}

	// A user is referred at most once.
	_, err = p.store.GetReferralByReferred(ctx, referred.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("refer: existing referral lookup: %w", err)
	}

	_, err = p.store.CreateReferral(ctx, referrer.ID, referred.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			// Lost the check-then-insert race; same outcome as the check.
			return nil
		}
		return fmt.Errorf("refer: create %q<-%q: %w", e.User, e.ReferredBy, err)
	}

	// The referral row itself is the referrer link on the referred user.
	// Writes from here on are best effort: each failure is logged without
	// aborting the rest.
	if err := p.store.UpdateUserCounters(ctx, referred.ID, 1, 0); err != nil {
		p.log.Error("failed to update referred user counters",
			zap.String("username", e.User), zap.Error(err))
	}
	if err := p.store.UpdateUserCounters(ctx, referrer.ID, 1, 1); err != nil {
		p.log.Error("failed to update referrer counters",
			zap.String("username", e.ReferredBy), zap.Error(err))
	}

	p.propagateReferralPoints(ctx, referrer.ID, 0)

	// Both rows are attributed to the referrer, matching the observed
	// behavior even though REFERRED reads like it belongs to the other side.
	p.logActivity(ctx, referrer.ID, 1, model.ReasonReferral)
	p.logActivity(ctx, referrer.ID, 1, model.ReasonReferred)

	return nil
}

// AddFriend creates the symmetric edge and bumps both users' network
// strength. Every write after the existence check is independently fault
// tolerant.
func (p *Pipeline) AddFriend(ctx context.Context, e model.Event) error {
	user1, err := p.store.GetUserByUsername(ctx, e.User1Name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("addfriend: user %q not found", e.User1Name)
		}
		return fmt.Errorf("addfriend: lookup %q: %w", e.User1Name, err)
	}

	user2, err := p.store.GetUserByUsername(ctx, e.User2Name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("addfriend: user %q not found", e.User2Name)
		}
		return fmt.Errorf("addfriend: lookup %q: %w", e.User2Name, err)
	}

	_, err = p.store.GetFriendship(ctx, user1.ID, user2.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("addfriend: existing friendship lookup: %w", err)
	}

	_, err = p.store.CreateFriendship(ctx, user1.ID, user2.ID)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil
		}
		p.log.Error("failed to create friendship",
			zap.String("user1", e.User1Name), zap.String("user2", e.User2Name), zap.Error(err))
	}

	if err := p.store.UpdateUserCounters(ctx, user1.ID, 1, 0); err != nil {
		p.log.Error("failed to update network strength",
			zap.String("username", e.User1Name), zap.Error(err))
	}
	if err := p.store.UpdateUserCounters(ctx, user2.ID, 1, 0); err != nil {
		p.log.Error("failed to update network strength",
			zap.String("username", e.User2Name), zap.Error(err))
	}

	p.logActivity(ctx, user1.ID, 1, model.ReasonFriendAdded)
	p.logActivity(ctx, user2.ID, 1, model.ReasonFriendAdded)

	return nil
}

// Unfriend deletes the edge and decrements both users' network strength.
// There is no floor: strength can go negative.
func (p *Pipeline) Unfriend(ctx context.Context, e model.Event) error {
	user1, err := p.store.GetUserByUsername(ctx, e.User1Name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("unfriend: user %q not found", e.User1Name)
		}
		return fmt.Errorf("unfriend: lookup %q: %w", e.User1Name, err)
	}

	user2, err := p.store.GetUserByUsername(ctx, e.User2Name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("unfriend: user %q not found", e.User2Name)
		}
		return fmt.Errorf("unfriend: lookup %q: %w", e.User2Name, err)
	}

	friendship, err := p.store.GetFriendship(ctx, user1.ID, user2.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("unfriend: friendship lookup: %w", err)
	}

	if err := p.store.DeleteFriendship(ctx, friendship.ID); err != nil {
		p.log.Error("failed to delete friendship",
			zap.String("user1", e.User1Name), zap.String("user2", e.User2Name), zap.Error(err))
	}

	if err := p.store.UpdateUserCounters(ctx, user1.ID, -1, 0); err != nil {
		p.log.Error("failed to update network strength",
			zap.String("username", e.User1Name), zap.Error(err))
	}
	if err := p.store.UpdateUserCounters(ctx, user2.ID, -1, 0); err != nil {
		p.log.Error("failed to update network strength",
			zap.String("username", e.User2Name), zap.Error(err))
	}

	p.logActivity(ctx, user1.ID, -1, model.ReasonFriendRemoved)
	p.logActivity(ctx, user2.ID, -1, model.ReasonFriendRemoved)

	return nil
}

// propagateReferralPoints ascends the referral chain from userID: each hop
// loads the edges pointing at the current user (at most one, but the walk
// iterates over all matches), credits that edge's referrer with one referral
// point, and continues from the referrer. The walk stops after
// maxReferralDepth hops. It runs synchronously but its failures stay here;
// the triggering handler never sees them.
func (p *Pipeline) propagateReferralPoints(ctx context.Context, userID uuid.UUID, depth int) {
	if depth >= p.maxReferralDepth {
		return
	}

	referrals, err := p.store.ListReferralsByReferred(ctx, userID)
	if err != nil {
		p.log.Error("referral propagation failed",
			zap.String("user_id", userID.String()), zap.Int("depth", depth), zap.Error(err))
		return
	}

	for _, ref := range referrals {
		if err := p.store.UpdateUserCounters(ctx, ref.ReferrerID, 0, 1); err != nil {
			p.log.Error("failed to update referral points",
				zap.String("user_id", ref.ReferrerID.String()), zap.Error(err))
		}
		p.logActivity(ctx, ref.ReferrerID, 1, model.ReasonReferral)
		p.propagateReferralPoints(ctx, ref.ReferrerID, depth+1)
	}
}

// logActivity appends one immutable row. A dropped entry degrades later
// aggregation accuracy but never fails the triggering mutation.
func (p *Pipeline) logActivity(ctx context.Context, userID uuid.UUID, amount int, reason model.LogReason) {
	if err := p.store.AppendActivityLog(ctx, userID, amount, reason); err != nil {
		p.log.Error("failed to append activity log",
			zap.String("user_id", userID.String()),
			zap.String("reason", string(reason)),
			zap.Error(err))
	}
}
