package store

import (
	"context"

	"craftmarket/internal/models"
)

// UpsertSkill returns the skill named name, creating it when missing.
func (s *Store) UpsertSkill(ctx context.Context, name string) (models.Skill, error) {
	if _, err := s.exec(ctx, "INSERT INTO skills (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", name); err != nil {
		return models.Skill{}, err
	}
	var skill models.Skill
	err := s.get(ctx, &skill, "SELECT id, name FROM skills WHERE name = $1", name)
	return skill, err
}

func (s *Store) HasUserSkill(ctx context.Context, userID, skillID int64) (bool, error) {
	var n int
	if err := s.get(ctx, &n, "SELECT COUNT(*) FROM user_skills WHERE user_id = $1 AND skill_id = $2", userID, skillID); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) AddUserSkill(ctx context.Context, userID, skillID int64) error {
	_, err := s.exec(ctx, "INSERT INTO user_skills (user_id, skill_id) VALUES ($1, $2)", userID, skillID)
	return err
}

func (s *Store) ListSkills(ctx context.Context) ([]models.Skill, error) {
	out := []models.Skill{}
	err := s.selectAll(ctx, &out, "SELECT id, name FROM skills ORDER BY name")
	return out, err
}

func (s *Store) ListUserSkills(ctx context.Context, userID int64) ([]models.Skill, error) {
	out := []models.Skill{}
	err := s.selectAll(ctx, &out, `SELECT sk.id, sk.name FROM skills sk
JOIN user_skills us ON us.skill_id = sk.id WHERE us.user_id = $1 ORDER BY sk.name`, userID)
	return out, err
}
