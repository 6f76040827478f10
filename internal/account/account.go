// Package account registers users, issues their sessions and maintains
// their profiles.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"craftmarket/internal/apperr"
	"craftmarket/internal/logging"
	"craftmarket/internal/models"
	"craftmarket/internal/store"
)

type Service struct {
	store      *store.Store
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(st *store.Store, secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{store: st, secret: secret, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"required,min=3"`
	Role     string `json:"role" binding:"omitempty,oneof=user seller"`
}

type Tokens struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    int64       `json:"expiresIn"`
	User         models.User `json:"user"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fullName := strings.TrimSpace(in.FullName)
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	switch {
	case len(username) < 3:
		return models.User{}, apperr.Validation("username must be at least 3 characters")
	case !validEmail(email):
		return models.User{}, apperr.Validation("email is invalid")
	case len(in.Password) < 6:
		return models.User{}, apperr.Validation("password must be at least 6 characters")
	case len(fullName) < 3:
		return models.User{}, apperr.Validation("fullName must be at least 3 characters")
	case role != models.RoleUser && role != models.RoleSeller:
		return models.User{}, apperr.Validation("role must be user or seller")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Username: username, Email: email, PasswordHash: string(hash), FullName: fullName, Role: role}
	err = s.store.Transact(ctx, func(ctx context.Context) error {
		exists, err := s.store.UserExists(ctx, username, email)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("username or email already registered")
		}
		if err := s.store.CreateUser(ctx, &user); err != nil {
			return err
		}
		if role != models.RoleSeller {
			return nil
		}
		return s.store.CreateSeller(ctx, &models.Seller{
			UserID:      user.ID,
			StoreName:   fullName + "'s Store",
			Description: "Welcome to " + fullName + "'s store!",
		})
	})
	if err != nil {
		return models.User{}, err
	}
	logging.FromContext(ctx).Info("user registered", slog.Int64(logging.KeyUserID, user.ID), slog.String("role", role))
	return user, nil
}

// Login accepts either the email or the username as the login name.
func (s *Service) Login(ctx context.Context, login, password string) (Tokens, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return Tokens{}, apperr.Validation("email and password are required")
	}
	user, err := s.store.GetUserByLogin(ctx, strings.ToLower(login))
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.store.GetUserByLogin(ctx, login)
	}
	if errors.Is(err, store.ErrNotFound) {
		return Tokens{}, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return Tokens{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logging.FromContext(ctx).Warn("login rejected", slog.Int64(logging.KeyUserID, user.ID))
		return Tokens{}, apperr.Unauthorized("invalid credentials")
	}
	var tokens Tokens
	err = s.store.Transact(ctx, func(ctx context.Context) error {
		var err error
		tokens, _, err = s.issueTokens(ctx, user)
		return err
	})
	return tokens, err
}

// Refresh rotates a refresh token: the presented token is revoked and
// points at its replacement.
func (s *Service) Refresh(ctx context.Context, plain string) (Tokens, error) {
	plain = strings.TrimSpace(plain)
	if plain == "" {
		return Tokens{}, apperr.Validation("refreshToken is required")
	}
	var tokens Tokens
	err := s.store.Transact(ctx, func(ctx context.Context) error {
		current, err := s.store.GetActiveRefreshToken(ctx, hashToken(plain))
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Unauthorized("invalid refresh token")
		}
		if err != nil {
			return err
		}
		if !s.store.Now().Before(current.ExpiresAt) {
			return errExpired
		}
		user, err := s.store.GetUserByID(ctx, current.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Unauthorized("user not found")
		}
		if err != nil {
			return err
		}
		var next models.RefreshToken
		if tokens, next, err = s.issueTokens(ctx, user); err != nil {
			return err
		}
		if err := s.store.RevokeRefreshToken(ctx, current.ID, &next.ID); err != nil {
			if errors.Is(err, store.ErrStale) {
				return apperr.Unauthorized("invalid refresh token")
			}
			return err
		}
		return nil
	})
	if errors.Is(err, errExpired) {
		_ = s.store.RevokeRefreshTokenByHash(ctx, hashToken(plain))
		return Tokens{}, apperr.Unauthorized("refresh token expired")
	}
	return tokens, err
}

var errExpired = errors.New("refresh token expired")

func (s *Service) Logout(ctx context.Context, plain string) error {
	plain = strings.TrimSpace(plain)
	if plain == "" {
		return apperr.Validation("refreshToken is required")
	}
	err := s.store.RevokeRefreshTokenByHash(ctx, hashToken(plain))
	if errors.Is(err, store.ErrStale) {
		return apperr.Unauthorized("invalid refresh token")
	}
	return err
}

func (s *Service) Me(ctx context.Context, userID int64) (models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, apperr.NotFound("user not found")
	}
	return user, err
}

func (s *Service) issueTokens(ctx context.Context, user models.User) (Tokens, models.RefreshToken, error) {
	now := s.store.Now()
	access, err := SignAccessToken(s.secret, user.ID, user.Role, user.Email, now, s.accessTTL)
	if err != nil {
		return Tokens{}, models.RefreshToken{}, fmt.Errorf("sign access token: %w", err)
	}
	plain, err := generateRefreshString()
	if err != nil {
		return Tokens{}, models.RefreshToken{}, fmt.Errorf("generate refresh token: %w", err)
	}
	refresh := models.RefreshToken{UserID: user.ID, TokenHash: hashToken(plain), ExpiresAt: now.Add(s.refreshTTL)}
	if err := s.store.CreateRefreshToken(ctx, &refresh); err != nil {
		return Tokens{}, models.RefreshToken{}, err
	}
	return Tokens{
		AccessToken:  access,
		RefreshToken: plain,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		User:         user,
	}, refresh, nil
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
