package service

import (
	"errors"
	"strings"
	"time"

	"guildhall/internal/directory"
	"guildhall/internal/entity"
	"guildhall/internal/form"
	"guildhall/internal/nlog"
	"guildhall/internal/policy"
	"guildhall/internal/repository"

	"github.com/google/uuid"
)

const GeneralChannel = "general"

// ServerPage is everything the server page needs for one viewer.
type ServerPage struct {
	Server    *entity.Server
	Viewer    *entity.Member // nil when the profile is not a member
	Channels  []entity.Channel
	Members   []entity.Member
	Directory *directory.Directory
}

type ServerService interface {
	CreateServer(profileID, name, imageURL string) (*entity.Server, error)
	JoinByInvite(profileID, inviteCode string) (*entity.Server, *entity.Member, error)
	CreateChannel(profileID, serverID, name string, channelType entity.ChannelType) (*entity.Channel, error)

	GetServer(serverID string) (*entity.Server, error)
	GetServers(profileID string) ([]*entity.Server, error)
	GetChannel(serverID, channelID string) (*entity.Channel, error)
	GetMember(serverID, memberID string) (*entity.Member, error)

	// Viewer resolves the membership of a profile. A profile outside the
	// server yields (nil, nil).
	Viewer(serverID, profileID string) (*entity.Member, error)
	ServerPage(serverID, profileID string) (*ServerPage, error)
}

type localServerService struct {
	logger      nlog.Logger
	serverRepo  repository.ServerRepository
	memberRepo  repository.MemberRepository
	channelRepo repository.ChannelRepository
}

func NewServerService(serverRepo repository.ServerRepository, memberRepo repository.MemberRepository, channelRepo repository.ChannelRepository, logger nlog.Logger) ServerService {
	return &localServerService{
		logger:      logger,
		serverRepo:  serverRepo,
		memberRepo:  memberRepo,
		channelRepo: channelRepo,
	}
}

func (s *localServerService) Logf(format string, v ...any) {
	s.logger.Logf(format, v...)
}

func (s *localServerService) CreateServer(profileID, name, imageURL string) (*entity.Server, error) {
	request := form.NewServer{Name: strings.TrimSpace(name), ImageURL: imageURL}
	if err := form.Validate(&request); err != nil {
		return nil, err
	}

	now := time.Now()
	server := &entity.Server{
		ID:         uuid.NewString(),
		Name:       request.Name,
		ImageURL:   request.ImageURL,
		InviteCode: uuid.NewString(),
		ProfileID:  profileID,
		CreatedAt:  now,
	}
	owner := &entity.Member{
		ID:        uuid.NewString(),
		Role:      entity.RoleAdmin,
		ProfileID: profileID,
		CreatedAt: now,
	}
	general := &entity.Channel{
		ID:        uuid.NewString(),
		Name:      GeneralChannel,
		Type:      entity.ChannelText,
		ProfileID: profileID,
		CreatedAt: now,
	}

	if err := s.serverRepo.CreateWithOwner(server, owner, general); err != nil {
		s.Logf("Server creation failed {%s}: %v", request.Name, err)
		return nil, notFound(err, ErrProfileNotFound)
	}
	s.Logf("Server created {%s, %s} by {%s}", server.ID, server.Name, profileID)
	return server, nil
}

func (s *localServerService) JoinByInvite(profileID, inviteCode string) (*entity.Server, *entity.Member, error) {
	server, err := s.serverRepo.GetByInviteCode(inviteCode)
	if err != nil {
		return nil, nil, notFound(err, ErrServerNotFound)
	}

	member, joined, err := s.memberRepo.Join(&entity.Member{
		ID:        uuid.NewString(),
		Role:      entity.RoleGuest,
		ProfileID: profileID,
		ServerID:  server.ID,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, nil, notFound(err, ErrServerNotFound)
	}
	if joined {
		s.Logf("Profile {%s} joined server {%s} as {%s}", profileID, server.ID, member.ID)
	}
	return server, member, nil
}

func (s *localServerService) CreateChannel(profileID, serverID, name string, channelType entity.ChannelType) (*entity.Channel, error) {
	viewer, err := s.Viewer(serverID, profileID)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageChannels(viewer) {
		return nil, ErrForbidden
	}

	request := form.NewChannel{Name: strings.TrimSpace(name), Type: string(channelType)}
	if err := form.Validate(&request); err != nil {
		return nil, err
	}

	channel := &entity.Channel{
		ID:        uuid.NewString(),
		Name:      request.Name,
		Type:      entity.ChannelType(request.Type),
		ProfileID: profileID,
		ServerID:  serverID,
		CreatedAt: time.Now(),
	}
	if err := s.channelRepo.Create(channel); err != nil {
		return nil, notFound(err, ErrServerNotFound)
	}
	s.Logf("Channel created {%s, %s, %s} in {%s}", channel.ID, channel.Name, channel.Type, serverID)
	return channel, nil
}

func (s *localServerService) GetServer(serverID string) (*entity.Server, error) {
	server, err := s.serverRepo.GetByID(serverID)
	if err != nil {
		return nil, notFound(err, ErrServerNotFound)
	}
	return server, nil
}

func (s *localServerService) GetServers(profileID string) ([]*entity.Server, error) {
	servers, err := s.serverRepo.GetForProfile(profileID)
	if err != nil {
		return nil, notFound(err, ErrProfileNotFound)
	}
	return servers, nil
}

func (s *localServerService) GetChannel(serverID, channelID string) (*entity.Channel, error) {
	channel, err := s.channelRepo.GetByID(serverID, channelID)
	if err != nil {
		return nil, notFound(err, ErrChannelNotFound)
	}
	return channel, nil
}

func (s *localServerService) GetMember(serverID, memberID string) (*entity.Member, error) {
	member, err := s.memberRepo.GetByID(serverID, memberID)
	if err != nil {
		return nil, notFound(err, ErrMemberNotFound)
	}
	return member, nil
}

func (s *localServerService) Viewer(serverID, profileID string) (*entity.Member, error) {
	if _, err := s.GetServer(serverID); err != nil {
		return nil, err
	}
	if profileID == "" {
		return nil, nil
	}
	member, err := s.memberRepo.GetByProfile(serverID, profileID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, notFound(err, ErrMemberNotFound)
	}
	return member, nil
}

func (s *localServerService) ServerPage(serverID, profileID string) (*ServerPage, error) {
	server, err := s.GetServer(serverID)
	if err != nil {
		return nil, err
	}
	viewer, err := s.Viewer(serverID, profileID)
	if err != nil {
		return nil, err
	}

	channels, err := s.channelRepo.GetByServer(serverID)
	if err != nil {
		return nil, notFound(err, ErrServerNotFound)
	}
	members, err := s.memberRepo.GetByServer(serverID)
	if err != nil {
		return nil, notFound(err, ErrServerNotFound)
	}

	viewerID := ""
	if viewer != nil {
		viewerID = viewer.ID
	}
	s.Logf("Server page {%s} for {%s}: %d channels, %d members", serverID, profileID, len(channels), len(members))

	return &ServerPage{
		Server:    server,
		Viewer:    viewer,
		Channels:  channels,
		Members:   members,
		Directory: directory.Build(channels, members, viewerID),
	}, nil
}
