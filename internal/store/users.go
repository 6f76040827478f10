package store

import (
	"context"

	"craftmarket/internal/models"
)

const userColumns = "id, username, email, password_hash, full_name, role, created_at, updated_at"

var createUserQuery = `INSERT INTO users (username, email, password_hash, full_name, role, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	now := s.Now()
	id, err := s.insert(ctx, createUserQuery, u.Username, u.Email, u.PasswordHash, u.FullName, u.Role, now, now)
	if err != nil {
		return err
	}
	u.ID, u.CreatedAt, u.UpdatedAt = id, now, now
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := s.get(ctx, &u, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return u, err
}

// GetUserByLogin finds a user by email or username.
func (s *Store) GetUserByLogin(ctx context.Context, login string) (models.User, error) {
	var u models.User
	err := s.get(ctx, &u, "SELECT "+userColumns+" FROM users WHERE email = $1 OR username = $1", login)
	return u, err
}

func (s *Store) UserExists(ctx context.Context, username, email string) (bool, error) {
	var n int
	if err := s.get(ctx, &n, "SELECT COUNT(*) FROM users WHERE username = $1 OR email = $2", username, email); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) UpdateUserFullName(ctx context.Context, id int64, fullName string) error {
	return s.execCAS(ctx, "UPDATE users SET full_name = $1, updated_at = $2 WHERE id = $3", fullName, s.Now(), id)
}

const sellerColumns = "id, user_id, store_name, description, created_at"

func (s *Store) CreateSeller(ctx context.Context, seller *models.Seller) error {
	now := s.Now()
	id, err := s.insert(ctx,
		"INSERT INTO sellers (user_id, store_name, description, created_at) VALUES ($1, $2, $3, $4) RETURNING id",
		seller.UserID, seller.StoreName, seller.Description, now)
	if err != nil {
		return err
	}
	seller.ID, seller.CreatedAt = id, now
	return nil
}

func (s *Store) GetSellerByID(ctx context.Context, id int64) (models.Seller, error) {
	var seller models.Seller
	err := s.get(ctx, &seller, "SELECT "+sellerColumns+" FROM sellers WHERE id = $1", id)
	return seller, err
}

func (s *Store) GetSellerByUserID(ctx context.Context, userID int64) (models.Seller, error) {
	var seller models.Seller
	err := s.get(ctx, &seller, "SELECT "+sellerColumns+" FROM sellers WHERE user_id = $1", userID)
	return seller, err
}

func (s *Store) GetSellerSummary(ctx context.Context, id int64) (models.SellerSummary, error) {
	var out models.SellerSummary
	err := s.get(ctx, &out, `SELECT s.id, s.user_id, s.store_name, s.description, s.created_at, u.full_name, u.email
FROM sellers s JOIN users u ON u.id = s.user_id WHERE s.id = $1`, id)
	return out, err
}

// UpdateSeller changes only the fields that are non-nil.
func (s *Store) UpdateSeller(ctx context.Context, userID int64, storeName, description *string) error {
	return s.execCAS(ctx, `UPDATE sellers SET
store_name = COALESCE($1, store_name),
description = COALESCE($2, description)
WHERE user_id = $3`, storeName, description, userID)
}

var searchSellersQuery = `SELECT s.id, s.user_id, s.store_name, s.description, s.created_at, u.full_name, u.email
FROM sellers s JOIN users u ON u.id = s.user_id
WHERE LOWER(s.store_name) LIKE LOWER($1) OR LOWER(s.description) LIKE LOWER($1) OR LOWER(u.full_name) LIKE LOWER($1)
ORDER BY s.id`

var searchSellersBySkillQuery = `SELECT s.id, s.user_id, s.store_name, s.description, s.created_at, u.full_name, u.email
FROM sellers s JOIN users u ON u.id = s.user_id
WHERE EXISTS (
    SELECT 1 FROM user_skills us JOIN skills sk ON sk.id = us.skill_id
    WHERE us.user_id = s.user_id AND LOWER(sk.name) LIKE LOWER($1)
)
ORDER BY s.id`

func (s *Store) SearchSellers(ctx context.Context, term string) ([]models.SellerSummary, error) {
	out := []models.SellerSummary{}
	err := s.selectAll(ctx, &out, searchSellersQuery, likePattern(term))
	return out, err
}

func (s *Store) SearchSellersBySkill(ctx context.Context, term string) ([]models.SellerSummary, error) {
	out := []models.SellerSummary{}
	err := s.selectAll(ctx, &out, searchSellersBySkillQuery, likePattern(term))
	return out, err
}

const refreshTokenColumns = "id, user_id, token_hash, expires_at, revoked, replaced_by, created_at"

func (s *Store) CreateRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	now := s.Now()
	id, err := s.insert(ctx, `INSERT INTO refresh_tokens (user_id, token_hash, expires_at, revoked, created_at)
VALUES ($1, $2, $3, $4, $5) RETURNING id`, t.UserID, t.TokenHash, t.ExpiresAt.UTC(), false, now)
	if err != nil {
		return err
	}
	t.ID, t.CreatedAt = id, now
	return nil
}

func (s *Store) GetActiveRefreshToken(ctx context.Context, hash string) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := s.get(ctx, &t, "SELECT "+refreshTokenColumns+" FROM refresh_tokens WHERE token_hash = $1 AND revoked = $2", hash, false)
	return t, err
}

// RevokeRefreshToken marks an active token revoked, recording its successor.
func (s *Store) RevokeRefreshToken(ctx context.Context, id int64, replacedBy *int64) error {
	return s.execCAS(ctx, "UPDATE refresh_tokens SET revoked = $1, replaced_by = $2 WHERE id = $3 AND revoked = $4",
		true, replacedBy, id, false)
}

func (s *Store) RevokeRefreshTokenByHash(ctx context.Context, hash string) error {
	return s.execCAS(ctx, "UPDATE refresh_tokens SET revoked = $1 WHERE token_hash = $2 AND revoked = $3", true, hash, false)
}
