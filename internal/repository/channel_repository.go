package repository

import (
	"guildhall/internal/entity"

	"gorm.io/gorm"
)

type ChannelRepository interface {
	Create(channel *entity.Channel) error

	GetByID(serverID, channelID string) (*entity.Channel, error)
	GetByServer(serverID string) ([]entity.Channel, error)
}

type SQLiteChannelRepository struct {
	db *gorm.DB
}

func NewSQLiteChannelRepository(db *gorm.DB) ChannelRepository {
	return &SQLiteChannelRepository{db}
}

func (repo *SQLiteChannelRepository) Create(channel *entity.Channel) error {
	return translate(repo.db.Create(channel).Error)
}

func (repo *SQLiteChannelRepository) GetByID(serverID, channelID string) (*entity.Channel, error) {
	var channel entity.Channel
	err := repo.db.Where("server_id = ? AND id = ?", serverID, channelID).First(&channel).Error
	if err != nil {
		return nil, translate(err)
	}
	return &channel, nil
}

func (repo *SQLiteChannelRepository) GetByServer(serverID string) ([]entity.Channel, error) {
	var channels []entity.Channel
	err := repo.db.Where("server_id = ?", serverID).Order("created_at ASC").Find(&channels).Error
	return channels, translate(err)
}
