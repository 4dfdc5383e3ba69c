package repository

import (
	"time"

	"guildhall/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageRepository interface {
	Create(message *entity.Message) error

	// UpdateContent replaces the body of a live message and marks it edited.
	// Writing the current body again leaves the row untouched.
	UpdateContent(channelID, messageID, content string) (*entity.Message, error)
	// Tombstone clears the attachment and swaps the body for the deletion marker.
	Tombstone(channelID, messageID string) (*entity.Message, error)

	GetByID(channelID, messageID string) (*entity.Message, error)
	GetByChannel(channelID string, limit int) ([]entity.Message, error)
}

type SQLiteMessageRepository struct {
	db *gorm.DB
}

func NewSQLiteMessageRepository(db *gorm.DB) MessageRepository {
	return &SQLiteMessageRepository{db}
}

func (repo *SQLiteMessageRepository) Create(message *entity.Message) error {
	return translate(repo.db.Omit(clause.Associations).Create(message).Error)
}

func (repo *SQLiteMessageRepository) UpdateContent(channelID, messageID, content string) (*entity.Message, error) {
	err := repo.db.Transaction(func(tx *gorm.DB) error {
		var message entity.Message
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("channel_id = ? AND id = ? AND deleted = ?", channelID, messageID, false).
			First(&message).Error; err != nil {
			return err
		}
		if message.Content == content {
			return nil
		}

		return tx.Model(&message).Updates(map[string]any{
			"content":    content,
			"edited":     true,
			"updated_at": time.Now(),
		}).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return repo.GetByID(channelID, messageID)
}

func (repo *SQLiteMessageRepository) Tombstone(channelID, messageID string) (*entity.Message, error) {
	err := repo.db.Transaction(func(tx *gorm.DB) error {
		var message entity.Message
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("channel_id = ? AND id = ?", channelID, messageID).
			First(&message).Error; err != nil {
			return err
		}
		if message.Deleted {
			return nil
		}

		return tx.Model(&message).Updates(map[string]any{
			"content":    entity.Tombstone,
			"file_url":   nil,
			"deleted":    true,
			"updated_at": time.Now(),
		}).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return repo.GetByID(channelID, messageID)
}

func (repo *SQLiteMessageRepository) GetByID(channelID, messageID string) (*entity.Message, error) {
	var message entity.Message
	err := repo.db.Preload("Member.Profile").
		Where("channel_id = ? AND id = ?", channelID, messageID).
		First(&message).Error
	if err != nil {
		return nil, translate(err)
	}
	return &message, nil
}

// GetByChannel returns the newest messages of the channel, oldest first.
func (repo *SQLiteMessageRepository) GetByChannel(channelID string, limit int) ([]entity.Message, error) {
	var messages []entity.Message
	query := repo.db.Preload("Member.Profile").
		Where("channel_id = ?", channelID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&messages).Error; err != nil {
		return nil, translate(err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
