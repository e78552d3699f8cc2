package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

const minPasswordLength = 8

var (
	// usernames that would collide with routes or look official
	reservedUsernames = []string{"me", "admin", "user", "username"}
	usernamePattern   = regexp.MustCompile(`^[\w.@+-]+$`)
)

// Page selects a window of a listing
type Page struct {
	Limit  int
	Offset int
}

type UserService interface {
	// CreateUser validates and stores a new account, hashing its password
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	// ListUsers returns users ordered by username
	ListUsers(ctx context.Context, page Page) ([]models.User, int64, error)
	// Authenticate checks an email/password pair
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	SetPassword(ctx context.Context, userID uint, current, next string) error
	// ListSubscriptions returns the authors userID follows, ordered by username
	ListSubscriptions(ctx context.Context, userID uint, page Page) ([]models.User, int64, error)
}

type userService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) UserService {
	return &userService{db: db}
}

func validatePassword(v *ValidationError, field, password string) {
	if len(password) < minPasswordLength {
		v.Add(field, fmt.Sprintf("password must be at least %d characters long", minPasswordLength))
	}
}

func (s *userService) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.Username = strings.TrimSpace(user.Username)

	v := &ValidationError{}
	validatePassword(v, "password", user.Password)
	if !usernamePattern.MatchString(user.Username) {
		v.Add("username", "username may contain only letters, digits and @/./+/-/_")
	}
	for _, reserved := range reservedUsernames {
		if strings.EqualFold(user.Username, reserved) {
			v.Add("username", "username must not be one of: "+strings.Join(reservedUsernames, ", "))
			break
		}
	}

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		v.Add("email", "a user with this email already exists")
	}
	if err := db.Model(&models.User{}).Where("username = ?", user.Username).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		v.Add("username", "a user with this username already exists")
	}
	if err := v.OrNil(); err != nil {
		return err
	}

	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := user.HashPassword(); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return newValidationError("", "a user with this email or username already exists")
		}
		return err
	}
	log.WithField("user_id", user.ID).Info("User registered")
	return nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *userService) ListUsers(ctx context.Context, page Page) ([]models.User, int64, error) {
	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := db.Order("username").Order("id").Limit(page.Limit).Offset(page.Offset).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidPassword
	}
	return user, nil
}

func (s *userService) SetPassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(current) {
		return newValidationError("current_password", "current password is incorrect")
	}

	v := &ValidationError{}
	validatePassword(v, "new_password", next)
	if err := v.OrNil(); err != nil {
		return err
	}

	user.Password = next
	if err := user.HashPassword(); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.db.WithContext(ctx).Model(user).Update("password_hash", user.PasswordHash).Error
}

func (s *userService) ListSubscriptions(ctx context.Context, userID uint, page Page) ([]models.User, int64, error) {
	db := s.db.WithContext(ctx)
	followed := db.Model(&models.Subscription{}).Select("author_id").Where("user_id = ?", userID)

	var total int64
	if err := db.Model(&models.User{}).Where("id IN (?)", followed).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var authors []models.User
	err := db.Where("id IN (?)", followed).
		Order("username").Order("id").
		Limit(page.Limit).Offset(page.Offset).
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}
