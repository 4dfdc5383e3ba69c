package repository

import (
	"errors"
	"fmt"
	"strings"

	"guildhall/internal/entity"
	"guildhall/internal/policy"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MemberRepository interface {
	// Join adds the profile to the server unless it is already a member, and
	// returns the stored membership either way.
	Join(member *entity.Member) (*entity.Member, bool, error)

	GetByID(serverID, memberID string) (*entity.Member, error)
	GetByProfile(serverID, profileID string) (*entity.Member, error)
	GetByServer(serverID string) ([]entity.Member, error)
}

type SQLiteMemberRepository struct {
	db *gorm.DB
}

func NewSQLiteMemberRepository(db *gorm.DB) MemberRepository {
	return &SQLiteMemberRepository{db}
}

func (repo *SQLiteMemberRepository) Join(member *entity.Member) (*entity.Member, bool, error) {
	var stored entity.Member
	joined := false

	err := repo.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("server_id = ? AND profile_id = ?", member.ServerID, member.ProfileID).
			First(&stored).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(member).Error; err != nil {
			return err
		}
		stored = *member
		joined = true
		return nil
	})
	if err != nil {
		return nil, false, translate(err)
	}
	return &stored, joined, nil
}

func (repo *SQLiteMemberRepository) GetByID(serverID, memberID string) (*entity.Member, error) {
	var member entity.Member
	err := repo.db.Preload("Profile").
		Where("server_id = ? AND id = ?", serverID, memberID).
		First(&member).Error
	if err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

func (repo *SQLiteMemberRepository) GetByProfile(serverID, profileID string) (*entity.Member, error) {
	var member entity.Member
	err := repo.db.Preload("Profile").
		Where("server_id = ? AND profile_id = ?", serverID, profileID).
		First(&member).Error
	if err != nil {
		return nil, translate(err)
	}
	return &member, nil
}

// GetByServer lists members by role precedence, oldest first inside a role.
func (repo *SQLiteMemberRepository) GetByServer(serverID string) ([]entity.Member, error) {
	var members []entity.Member
	err := repo.db.Preload("Profile").
		Where("server_id = ?", serverID).
		Order(rolePrecedenceSQL() + ", created_at ASC").
		Find(&members).Error
	return members, translate(err)
}

func rolePrecedenceSQL() string {
	var b strings.Builder
	b.WriteString("CASE role")
	for _, role := range policy.Roles() {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", role, policy.Precedence(role))
	}
	fmt.Fprintf(&b, " ELSE %d END", policy.Precedence(""))
	return b.String()
}
