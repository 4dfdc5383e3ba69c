package data

import (
	"fmt"
	"os"
	"path/filepath"

	"guildhall/internal/entity"
	"guildhall/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Storage manager gathers all the repositories needed for the chat system in a single container.
type StorageManager struct {
	db *gorm.DB // Under the hood we use the SQLite implementation

	// Repositories
	profileRepo repository.ProfileRepository
	serverRepo  repository.ServerRepository
	memberRepo  repository.MemberRepository
	channelRepo repository.ChannelRepository
	messageRepo repository.MessageRepository
}

// OpenDatabase opens (or creates) the SQLite file dbName inside folder.
func OpenDatabase(folder, dbName string) (*gorm.DB, error) {
	if err := os.MkdirAll(folder, 0755); err != nil {
		return nil, err
	}
	db, err := gorm.Open(sqlite.Open(filepath.Join(folder, dbName)), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not open database {%s}: %w", dbName, err)
	}
	return db, nil
}

// NewStorageManager migrates the schema and builds every repository on top of db.
func NewStorageManager(db *gorm.DB) (*StorageManager, error) {
	if err := Migrate(db); err != nil {
		return nil, err
	}

	s := &StorageManager{db: db}

	s.profileRepo = repository.NewSQLiteProfileRepository(db)
	s.serverRepo = repository.NewSQLiteServerRepository(db)
	s.memberRepo = repository.NewSQLiteMemberRepository(db)
	s.channelRepo = repository.NewSQLiteChannelRepository(db)
	s.messageRepo = repository.NewSQLiteMessageRepository(db)

	return s, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Profile{},
		&entity.Server{},
		&entity.Member{},
		&entity.Channel{},
		&entity.Message{},
	)
}

func (s *StorageManager) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *StorageManager) GetProfileRepository() repository.ProfileRepository {
	return s.profileRepo
}

func (s *StorageManager) GetServerRepository() repository.ServerRepository {
	return s.serverRepo
}

func (s *StorageManager) GetMemberRepository() repository.MemberRepository {
	return s.memberRepo
}

func (s *StorageManager) GetChannelRepository() repository.ChannelRepository {
	return s.channelRepo
}

func (s *StorageManager) GetMessageRepository() repository.MessageRepository {
	return s.messageRepo
}
