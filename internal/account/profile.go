package account

import (
	"context"
	"errors"
	"strings"

	"craftmarket/internal/apperr"
	"craftmarket/internal/models"
	"craftmarket/internal/store"
)

type ProfileUpdate struct {
	FullName    *string `json:"fullName" binding:"omitempty,min=3"`
	StoreName   *string `json:"storeName" binding:"omitempty,min=3"`
	Description *string `json:"description"`
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (models.Profile, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	profile := models.Profile{User: user}
	seller, err := s.store.GetSellerByUserID(ctx, userID)
	switch {
	case err == nil:
		profile.Seller = &seller
	case !errors.Is(err, store.ErrNotFound):
		return models.Profile{}, err
	}
	if profile.Skills, err = s.store.ListUserSkills(ctx, userID); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// UpdateProfile changes the display name and, for sellers, the store fields.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, in ProfileUpdate) (models.Profile, error) {
	if in.FullName != nil && len(strings.TrimSpace(*in.FullName)) < 3 {
		return models.Profile{}, apperr.Validation("fullName must be at least 3 characters")
	}
	if in.StoreName != nil && len(strings.TrimSpace(*in.StoreName)) < 3 {
		return models.Profile{}, apperr.Validation("storeName must be at least 3 characters")
	}
	err := s.store.Transact(ctx, func(ctx context.Context) error {
		user, err := s.Me(ctx, userID)
		if err != nil {
			return err
		}
		if in.FullName != nil {
			if err := s.store.UpdateUserFullName(ctx, userID, strings.TrimSpace(*in.FullName)); err != nil {
				return err
			}
		}
		if user.Role != models.RoleSeller || (in.StoreName == nil && in.Description == nil) {
			return nil
		}
		err = s.store.UpdateSeller(ctx, userID, trimmed(in.StoreName), in.Description)
		if errors.Is(err, store.ErrStale) || errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("seller profile not found")
		}
		return err
	})
	if err != nil {
		return models.Profile{}, err
	}
	return s.GetProfile(ctx, userID)
}

// AddSkill attaches a skill, creating it on first use. Names are stored
// lower-cased.
func (s *Service) AddSkill(ctx context.Context, userID int64, name string) (models.Skill, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return models.Skill{}, apperr.Validation("skillName is required")
	}
	var skill models.Skill
	err := s.store.Transact(ctx, func(ctx context.Context) error {
		var err error
		if skill, err = s.store.UpsertSkill(ctx, name); err != nil {
			return err
		}
		has, err := s.store.HasUserSkill(ctx, userID, skill.ID)
		if err != nil {
			return err
		}
		if has {
			return apperr.Conflict("you already have this skill")
		}
		return s.store.AddUserSkill(ctx, userID, skill.ID)
	})
	return skill, err
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
