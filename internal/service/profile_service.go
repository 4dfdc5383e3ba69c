package service

import (
	"strings"
	"time"

	"guildhall/internal/entity"
	"guildhall/internal/form"
	"guildhall/internal/nlog"
	"guildhall/internal/repository"

	"github.com/google/uuid"
)

// Service used to resolve who is talking. There is no password: a profile is
// identified by its name.
type ProfileService interface {
	Identify(name, imageURL string) (*entity.Profile, error) // Returns the profile with this name, creating it on first use
	GetProfile(id string) (*entity.Profile, error)
}

type localProfileService struct {
	logger      nlog.Logger
	profileRepo repository.ProfileRepository
}

func NewProfileService(profileRepo repository.ProfileRepository, logger nlog.Logger) ProfileService {
	return &localProfileService{
		logger:      logger,
		profileRepo: profileRepo,
	}
}

func (p *localProfileService) Logf(format string, v ...any) {
	p.logger.Logf(format, v...)
}

func (p *localProfileService) Identify(name, imageURL string) (*entity.Profile, error) {
	request := form.Profile{Name: strings.TrimSpace(name), ImageURL: imageURL}
	if err := form.Validate(&request); err != nil {
		return nil, err
	}

	profile, created, err := p.profileRepo.FirstOrCreateByName(&entity.Profile{
		ID:        uuid.NewString(),
		Name:      request.Name,
		ImageURL:  request.ImageURL,
		CreatedAt: time.Now(),
	})
	if err != nil {
		p.Logf("Could not identify {%s}: %v", request.Name, err)
		return nil, notFound(err, ErrProfileNotFound)
	}
	if created {
		p.Logf("New profile {%s, %s}", profile.ID, profile.Name)
	}
	return profile, nil
}

func (p *localProfileService) GetProfile(id string) (*entity.Profile, error) {
	profile, err := p.profileRepo.GetByID(id)
	if err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}
	return profile, nil
}
