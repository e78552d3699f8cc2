package services

import (
	"context"
	"errors"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const defaultClientGrants = "client_credentials password refresh_token"

type ClientService interface {
	// RegisterClient stores client under a generated id and secret. The plain
	// secret is returned once; only its bcrypt hash is persisted.
	RegisterClient(ctx context.Context, client *models.OAuthClient) (string, error)
	// CreateClient stores client with a caller chosen secret
	CreateClient(ctx context.Context, client *models.OAuthClient, secret string) error
	GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error)
	GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error)
	DeleteClient(ctx context.Context, clientID string, userID uint) error
}

type clientService struct {
	db *gorm.DB
}

func NewClientService(db *gorm.DB) ClientService {
	return &clientService{db: db}
}

func (s *clientService) RegisterClient(ctx context.Context, client *models.OAuthClient) (string, error) {
	client.ID = uuid.New().String()
	secret := uuid.New().String()
	if err := s.CreateClient(ctx, client, secret); err != nil {
		return "", err
	}
	return secret, nil
}

func (s *clientService) CreateClient(ctx context.Context, client *models.OAuthClient, secret string) error {
	if client.ID == "" {
		return newValidationError("client_id", "client id is required")
	}
	if len(secret) == 0 {
		return newValidationError("client_secret", "client secret is required")
	}
	if client.GrantTypes == "" {
		client.GrantTypes = defaultClientGrants
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	client.Secret = string(hash)

	if err := s.db.WithContext(ctx).Create(client).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (s *clientService) GetClientsByUserID(ctx context.Context, userID uint) ([]models.OAuthClient, error) {
	var clients []models.OAuthClient
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id string) (*models.OAuthClient, error) {
	var client models.OAuthClient
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return &client, nil
}

func (s *clientService) DeleteClient(ctx context.Context, clientID string, userID uint) error {
	result := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", clientID, userID).Delete(&models.OAuthClient{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrClientNotFound
	}
	return nil
}
