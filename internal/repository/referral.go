package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/NaePawat/zentry-backend-challenge/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type referral struct {
	ID         uuid.UUID `db:"id"`
	ReferrerID uuid.UUID `db:"referrer_id"`
	ReferredID uuid.UUID `db:"referred_id"`
	CreatedAt  time.Time `db:"created_at"`
}

func (ref referral) toModel() model.Referral {
	return model.Referral{
		ID:         ref.ID,
		ReferrerID: ref.ReferrerID,
		ReferredID: ref.ReferredID,
		CreatedAt:  ref.CreatedAt,
	}
}

// CreateReferral sets the referred user's referrer link in one transaction:
// the referred user's row is locked first, so concurrent referrals of the
// same user serialize here and the existence check and the insert act as a
// single step. The unique index on referred_id stays as the last-resort
// guard; either path reports the duplicate as ErrAlreadyExists.
func (r *Repository) CreateReferral(ctx context.Context, referrerID, referredID uuid.UUID) (*model.Referral, error) {
	now := time.Now().UTC()
	id := uuid.New()

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		lock, lockArgs, err := squirrel.
			Select("id").
			From("users").
			Where(squirrel.Eq{"id": referredID}).
			Suffix("FOR UPDATE").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		var locked uuid.UUID
		if err := tx.GetContext(ctx, &locked, lock, lockArgs...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock referred user: %w", err)
		}

		check, checkArgs, err := squirrel.
			Select("COUNT(*)").
			From("referrals").
			Where(squirrel.Eq{"referred_id": referredID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		var existing int
		if err := tx.GetContext(ctx, &existing, check, checkArgs...); err != nil {
			return fmt.Errorf("failed to check existing referral: %w", err)
		}
		if existing > 0 {
			return ErrAlreadyExists
		}

		insert, insertArgs, err := squirrel.
			Insert("referrals").
			SetMap(map[string]interface{}{
				"id":          id,
				"referrer_id": referrerID,
				"referred_id": referredID,
				"created_at":  now,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build referral insert query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, insert, insertArgs...); err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return fmt.Errorf("failed to insert referral: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.Referral{ID: id, ReferrerID: referrerID, ReferredID: referredID, CreatedAt: now}, nil
}

func (r *Repository) GetReferralByReferred(ctx context.Context, referredID uuid.UUID) (*model.Referral, error) {
	query, args, err := squirrel.
		Select("*").
		From("referrals").
		Where(squirrel.Eq{"referred_id": referredID}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var ref referral
	err = r.db.GetContext(ctx, &ref, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	m := ref.toModel()
	return &m, nil
}

// ListReferralsByReferred returns every edge pointing at the user. The
// one-referrer invariant keeps this at most one row, but the propagation walk
// iterates over whatever comes back rather than assuming the cardinality.
func (r *Repository) ListReferralsByReferred(ctx context.Context, referredID uuid.UUID) ([]model.Referral, error) {
	query, args, err := squirrel.
		Select("*").
		From("referrals").
		Where(squirrel.Eq{"referred_id": referredID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var referrals []referral
	err = r.db.SelectContext(ctx, &referrals, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals by referred: %w", err)
	}

	list := make([]model.Referral, len(referrals))
	for i, ref := range referrals {
		list[i] = ref.toModel()
	}
	return list, nil
}

// ListReferralsByReferrer returns the user's outgoing referrals ordered by
// creation time. Zero from/to means unbounded.
func (r *Repository) ListReferralsByReferrer(ctx context.Context, referrerID uuid.UUID, from, to time.Time) ([]model.Referral, error) {
	builder := squirrel.
		Select("*").
		From("referrals").
		Where(squirrel.Eq{"referrer_id": referrerID}).
		OrderBy("created_at ASC")
	if !from.IsZero() {
		builder = builder.Where(squirrel.GtOrEq{"created_at": from})
	}
	if !to.IsZero() {
		builder = builder.Where(squirrel.LtOrEq{"created_at": to})
	}

	query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	var referrals []referral
	err = r.db.SelectContext(ctx, &referrals, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals by referrer: %w", err)
	}

	list := make([]model.Referral, len(referrals))
	for i, ref := range referrals {
		list[i] = ref.toModel()
	}
	return list, nil
}

func (r *Repository) CountReferralsByReferrer(ctx context.Context, referrerID uuid.UUID, from, to time.Time) (int, error) {
	builder := squirrel.
		Select("COUNT(*)").
		From("referrals").
		Where(squirrel.Eq{"referrer_id": referrerID})
	if !from.IsZero() {
		builder = builder.Where(squirrel.GtOrEq{"created_at": from})
	}
	if !to.IsZero() {
		builder = builder.Where(squirrel.LtOrEq{"created_at": to})
	}

	query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count referrals: %w", err)
	}
	return count, nil
}
