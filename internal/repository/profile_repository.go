package repository

import (
	"errors"

	"guildhall/internal/entity"

	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(profile *entity.Profile) error

	FirstOrCreateByName(profile *entity.Profile) (*entity.Profile, bool, error)

	GetByID(id string) (*entity.Profile, error)
	GetByName(name string) (*entity.Profile, error)
}

type SQLiteProfileRepository struct {
	db *gorm.DB
}

func NewSQLiteProfileRepository(db *gorm.DB) ProfileRepository {
	return &SQLiteProfileRepository{db}
}

func (repo *SQLiteProfileRepository) Create(profile *entity.Profile) error {
	return translate(repo.db.Create(profile).Error)
}

// FirstOrCreateByName returns the stored profile with the same name, or
// inserts the given one. The boolean reports whether a row was inserted.
func (repo *SQLiteProfileRepository) FirstOrCreateByName(profile *entity.Profile) (*entity.Profile, bool, error) {
	var stored entity.Profile
	created := false

	err := repo.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("name = ?", profile.Name).First(&stored).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		stored = *profile
		created = true
		return nil
	})
	if err != nil {
		return nil, false, translate(err)
	}
	return &stored, created, nil
}

func (repo *SQLiteProfileRepository) GetByID(id string) (*entity.Profile, error) {
	var profile entity.Profile
	if err := repo.db.Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}

func (repo *SQLiteProfileRepository) GetByName(name string) (*entity.Profile, error) {
	var profile entity.Profile
	if err := repo.db.Where("name = ?", name).First(&profile).Error; err != nil {
		return nil, translate(err)
	}
	return &profile, nil
}
