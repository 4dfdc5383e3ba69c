package repository

import (
	"guildhall/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ServerRepository interface {
	// CreateWithOwner stores the server, its owner membership and its
	// default channel in one transaction.
	CreateWithOwner(server *entity.Server, owner *entity.Member, general *entity.Channel) error

	GetByID(id string) (*entity.Server, error)
	GetByInviteCode(code string) (*entity.Server, error)
	GetForProfile(profileID string) ([]*entity.Server, error)
}

type SQLiteServerRepository struct {
	db *gorm.DB
}

func NewSQLiteServerRepository(db *gorm.DB) ServerRepository {
	return &SQLiteServerRepository{db}
}

func (repo *SQLiteServerRepository) CreateWithOwner(server *entity.Server, owner *entity.Member, general *entity.Channel) error {
	err := repo.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(server).Error; err != nil {
			return err
		}

		owner.ServerID = server.ID
		if err := tx.Omit(clause.Associations).Create(owner).Error; err != nil {
			return err
		}

		general.ServerID = server.ID
		if err := tx.Create(general).Error; err != nil {
			return err
		}
		return nil
	})
	return translate(err)
}

func (repo *SQLiteServerRepository) GetByID(id string) (*entity.Server, error) {
	var server entity.Server
	if err := repo.db.Where("id = ?", id).First(&server).Error; err != nil {
		return nil, translate(err)
	}
	return &server, nil
}

func (repo *SQLiteServerRepository) GetByInviteCode(code string) (*entity.Server, error) {
	var server entity.Server
	if err := repo.db.Where("invite_code = ?", code).First(&server).Error; err != nil {
		return nil, translate(err)
	}
	return &server, nil
}

// GetForProfile lists the servers the profile is a member of.
func (repo *SQLiteServerRepository) GetForProfile(profileID string) ([]*entity.Server, error) {
	var servers []*entity.Server
	err := repo.db.
		Joins("JOIN members ON members.server_id = servers.id").
		Where("members.profile_id = ?", profileID).
		Order("servers.created_at ASC").
		Find(&servers).Error
	return servers, translate(err)
}
