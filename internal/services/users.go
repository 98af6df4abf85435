package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"innoportal/internal/apperr"
	"innoportal/internal/models"
	"innoportal/internal/policy"
	"innoportal/internal/utils"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const minPasswordLength = 8

type RegisterInput struct {
	Email    string         `json:"email" validate:"required,max=255"`
	Password string         `json:"password" validate:"required,min=8,max=72"`
	FullName string         `json:"fullName" validate:"required,max=255"`
	Role     models.Role    `json:"role"`
	Avatar   *string        `json:"avatar"`
	Metadata datatypes.JSON `json:"metadata"`
}

// ProfilePatch is a partial user update. Role changes are admin only.
type ProfilePatch struct {
	FullName *string         `json:"fullName"`
	Avatar   *string         `json:"avatar"`
	Password *string         `json:"password"`
	Role     *models.Role    `json:"role"`
	Metadata *datatypes.JSON `json:"metadata"`
}

type UserService struct {
	db             *gorm.DB
	stats          *StatisticsService
	allowedDomains []string
	log            zerolog.Logger
}

func NewUserService(conn *gorm.DB, stats *StatisticsService, allowedDomains []string, log zerolog.Logger) *UserService {
	return &UserService{db: conn, stats: stats, allowedDomains: allowedDomains, log: log}
}

// Register creates a self-service account. Privileged roles cannot be chosen here.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if err := validateStruct(&in); err != nil {
		return nil, err
	}
	if err := s.checkEmail(in.Email); err != nil {
		return nil, err
	}
	if !policy.CanSelfRegister(in.Role) {
		return nil, apperr.Validation("role %q cannot be chosen at sign-up", in.Role)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Email:    in.Email,
		Password: hash,
		FullName: in.FullName,
		Avatar:   nilIfBlank(in.Avatar),
		Role:     in.Role,
		Metadata: in.Metadata,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("email %s: %w", in.Email, apperr.ErrConflict)
		}
		return nil, apperr.FromDB(err)
	}
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	s.stats.Refresh(ctx)
	return user, nil
}

func (s *UserService) checkEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return apperr.Validation("email must be a valid email address")
	}
	if len(s.allowedDomains) == 0 {
		return nil
	}
	_, domain, _ := strings.Cut(email, "@")
	for _, allowed := range s.allowedDomains {
		if domain == allowed {
			return nil
		}
	}
	return apperr.Validation("email domain %s is not allowed", domain)
}

// Authenticate checks credentials. Unknown email and wrong password look the same.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid email or password: %w", apperr.ErrAuthRequired)
		}
		return nil, apperr.FromDB(err)
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return nil, fmt.Errorf("invalid email or password: %w", apperr.ErrAuthRequired)
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.FromDB(err)
	}
	return &user, nil
}

// List returns every user. Admin only.
func (s *UserService) List(ctx context.Context, actor *models.User) ([]models.User, error) {
	if actor == nil {
		return nil, apperr.ErrAuthRequired
	}
	if !policy.CanManageUsers(actor.Role) {
		return nil, apperr.Forbidden("list users")
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, apperr.FromDB(err)
	}
	return users, nil
}

// UpdateProfile lets users edit themselves and admins edit anyone.
func (s *UserService) UpdateProfile(ctx context.Context, actor *models.User, id string, patch ProfilePatch) (*models.User, error) {
	if actor == nil {
		return nil, apperr.ErrAuthRequired
	}
	isAdmin := policy.CanManageUsers(actor.Role)
	if actor.ID != id && !isAdmin {
		return nil, apperr.Forbidden("edit another user")
	}
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.FullName != nil {
		name := strings.TrimSpace(*patch.FullName)
		if name == "" {
			return nil, apperr.Validation("fullName is required")
		}
		updates["full_name"] = name
	}
	if patch.Avatar != nil {
		updates["avatar"] = nilIfBlank(patch.Avatar)
	}
	if patch.Metadata != nil {
		updates["metadata"] = *patch.Metadata
	}
	if patch.Role != nil && *patch.Role != user.Role {
		if !isAdmin {
			return nil, apperr.Forbidden("change role")
		}
		if !policy.ValidRole(*patch.Role) {
			return nil, apperr.Validation("unknown role %q", *patch.Role)
		}
		updates["role"] = *patch.Role
	}
	if patch.Password != nil {
		if len(*patch.Password) < minPasswordLength {
			return nil, apperr.Validation("password must be at least %d characters", minPasswordLength)
		}
		hash, err := utils.HashPassword(*patch.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		updates["password"] = hash
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, apperr.FromDB(err)
	}
	return s.Get(ctx, id)
}

// Delete removes a user and, through cascades, their content. Admin only.
func (s *UserService) Delete(ctx context.Context, actor *models.User, id string) (bool, error) {
	if actor == nil {
		return false, apperr.ErrAuthRequired
	}
	if !policy.CanManageUsers(actor.Role) {
		return false, apperr.Forbidden("delete users")
	}
	if actor.ID == id {
		return false, apperr.Validation("admins cannot delete their own account")
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return false, apperr.FromDB(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	s.log.Info().Str("user_id", id).Str("actor", actor.ID).Msg("user deleted")
	s.stats.Refresh(ctx)
	return true, nil
}
