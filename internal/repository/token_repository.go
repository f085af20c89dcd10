package repository

import (
	"context"
	"database/sql"
	"time"
)

// TokenRepo persists and validates refresh tokens. Only the SHA-256 hash of
// a token is ever stored.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at_ms, created_at_ms) VALUES (?,?,?,?)",
		userID, tokenHash, toMillis(exp), toMillis(time.Now()))
	return err
}

// ValidateRefresh returns the owning user id if a non-revoked, non-expired
// token exists, else sql.ErrNoRows.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var (
		userID    uint64
		expiresMs int64
		revokedMs sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, expires_at_ms, revoked_at_ms FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&userID, &expiresMs, &revokedMs)
	if err != nil {
		return 0, err
	}
	if revokedMs.Valid || time.Now().UTC().After(fromMillis(expiresMs)) {
		return 0, sql.ErrNoRows
	}
	return userID, nil
}

// ConsumeRefresh validates and revokes a token in one conditional update so a
// token can be rotated at most once. It returns sql.ErrNoRows when the token
// is unknown, expired or already revoked.
func (r *TokenRepo) ConsumeRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	now := toMillis(time.Now())
	res, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at_ms=? WHERE token_hash=? AND revoked_at_ms IS NULL AND expires_at_ms > ?",
		now, tokenHash, now)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return 0, err
	} else if n == 0 {
		return 0, sql.ErrNoRows
	}
	var userID uint64
	err = r.DB.QueryRowContext(ctx, "SELECT user_id FROM refresh_tokens WHERE token_hash=?", tokenHash).Scan(&userID)
	return userID, err
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at_ms=? WHERE token_hash=? AND revoked_at_ms IS NULL",
		toMillis(time.Now()), tokenHash)
	return err
}

// RevokeAllForUser revokes all the user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at_ms=? WHERE user_id=? AND revoked_at_ms IS NULL",
		toMillis(time.Now()), userID)
	return err
}
