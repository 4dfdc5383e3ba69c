package service

import (
	"strings"
	"time"

	"guildhall/internal/entity"
	"guildhall/internal/form"
	"guildhall/internal/nlog"
	"guildhall/internal/policy"
	"guildhall/internal/repository"

	"github.com/google/uuid"
)

const DefaultPageSize = 50

// ChannelMessages is a channel as seen by one viewer.
type ChannelMessages struct {
	Viewer   *entity.Member   `json:"viewer"`
	Channel  *entity.Channel  `json:"channel"`
	Messages []entity.Message `json:"messages"`
}

type MessageService interface {
	List(profileID, serverID, channelID string) (*ChannelMessages, error)
	Send(profileID, serverID, channelID, content string, fileURL *string) (*entity.Message, error)
	// Edit and Delete re-check the permissions of the viewer against the
	// stored message.
	Edit(profileID, serverID, channelID, messageID, content string) (*entity.Message, error)
	Delete(profileID, serverID, channelID, messageID string) (*entity.Message, error)
}

type localMessageService struct {
	logger      nlog.Logger
	servers     ServerService
	messageRepo repository.MessageRepository
}

func NewMessageService(servers ServerService, messageRepo repository.MessageRepository, logger nlog.Logger) MessageService {
	return &localMessageService{
		logger:      logger,
		servers:     servers,
		messageRepo: messageRepo,
	}
}

func (m *localMessageService) Logf(format string, v ...any) {
	m.logger.Logf(format, v...)
}

// scope checks that the channel belongs to the server and resolves the viewer.
func (m *localMessageService) scope(profileID, serverID, channelID string) (*entity.Member, *entity.Channel, error) {
	viewer, err := m.servers.Viewer(serverID, profileID)
	if err != nil {
		return nil, nil, err
	}
	channel, err := m.servers.GetChannel(serverID, channelID)
	if err != nil {
		return nil, nil, err
	}
	return viewer, channel, nil
}

func (m *localMessageService) List(profileID, serverID, channelID string) (*ChannelMessages, error) {
	viewer, channel, err := m.scope(profileID, serverID, channelID)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return nil, ErrForbidden
	}

	messages, err := m.messageRepo.GetByChannel(channelID, DefaultPageSize)
	if err != nil {
		return nil, notFound(err, ErrChannelNotFound)
	}
	return &ChannelMessages{Viewer: viewer, Channel: channel, Messages: messages}, nil
}

func (m *localMessageService) Send(profileID, serverID, channelID, content string, fileURL *string) (*entity.Message, error) {
	viewer, _, err := m.scope(profileID, serverID, channelID)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return nil, ErrForbidden
	}

	if fileURL != nil && *fileURL == "" {
		fileURL = nil
	}
	request := form.NewMessage{Content: strings.TrimSpace(content), FileURL: fileURL}
	if request.Content == "" && fileURL != nil {
		request.Content = *fileURL
	}
	if err := form.Validate(&request); err != nil {
		return nil, err
	}

	now := time.Now()
	message := &entity.Message{
		ID:        uuid.NewString(),
		Content:   request.Content,
		FileURL:   request.FileURL,
		MemberID:  viewer.ID,
		ChannelID: channelID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.messageRepo.Create(message); err != nil {
		return nil, notFound(err, ErrChannelNotFound)
	}
	message.Member = *viewer

	m.Logf("Message {%s} sent by {%s} in {%s}", message.ID, viewer.ID, channelID)
	return message, nil
}

// authorize loads the message and evaluates the policy for the viewer.
func (m *localMessageService) authorize(profileID, serverID, channelID, messageID string) (*entity.Message, policy.Permissions, error) {
	viewer, _, err := m.scope(profileID, serverID, channelID)
	if err != nil {
		return nil, policy.Permissions{}, err
	}

	message, err := m.messageRepo.GetByID(channelID, messageID)
	if err != nil {
		return nil, policy.Permissions{}, notFound(err, ErrMessageNotFound)
	}
	return message, policy.ComputePermissions(viewer, message, &message.Member), nil
}

func (m *localMessageService) Edit(profileID, serverID, channelID, messageID, content string) (*entity.Message, error) {
	message, perms, err := m.authorize(profileID, serverID, channelID, messageID)
	if err != nil {
		return nil, err
	}
	if !perms.CanEdit {
		m.Logf("Edit of {%s} refused for {%s}", messageID, profileID)
		return nil, ErrForbidden
	}

	content = strings.TrimSpace(content)
	if err := form.ValidateContent(content); err != nil {
		return nil, err
	}
	if content == message.Content {
		return message, nil
	}

	updated, err := m.messageRepo.UpdateContent(channelID, messageID, content)
	if err != nil {
		return nil, notFound(err, ErrMessageNotFound)
	}
	m.Logf("Message {%s} edited by {%s}", messageID, profileID)
	return updated, nil
}

func (m *localMessageService) Delete(profileID, serverID, channelID, messageID string) (*entity.Message, error) {
	_, perms, err := m.authorize(profileID, serverID, channelID, messageID)
	if err != nil {
		return nil, err
	}
	if !perms.CanDelete {
		m.Logf("Delete of {%s} refused for {%s}", messageID, profileID)
		return nil, ErrForbidden
	}

	deleted, err := m.messageRepo.Tombstone(channelID, messageID)
	if err != nil {
		return nil, notFound(err, ErrMessageNotFound)
	}
	m.Logf("Message {%s} deleted by {%s}", messageID, profileID)
	return deleted, nil
}
