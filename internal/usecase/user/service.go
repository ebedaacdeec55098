package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cargo-tracker/internal/access"
	"cargo-tracker/internal/config"
	domainUser "cargo-tracker/internal/domain/user"
	"cargo-tracker/internal/logger"
	appErrors "cargo-tracker/pkg/errors"
	"cargo-tracker/pkg/utils"
)

// Service implements account and authentication use cases.
type Service struct {
	userRepo         domainUser.Repository
	refreshTokenRepo domainUser.RefreshTokenRepository
	config           *config.Config
}

func NewService(
	userRepo domainUser.Repository,
	refreshTokenRepo domainUser.RefreshTokenRepository,
	cfg *config.Config,
) *Service {
	return &Service{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		config:           cfg,
	}
}

func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("invalid registration input", err)
	}

	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, appErrors.Validation(err.Error(), nil)
	}

	email, err := utils.ValidateAndSanitizeEmail(req.Email)
	if err != nil {
		return nil, appErrors.Validation("invalid email address", err)
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domainUser.ErrUserNotFound) && !appErrors.IsKind(err, appErrors.KindNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		logger.Warn("Registration attempt with existing email",
			zap.String("email", email),
			zap.String("event", "registration_failed_duplicate_email"),
		)
		return nil, appErrors.ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &domainUser.User{
		Username:       strings.TrimSpace(req.Username),
		Email:          email,
		PasswordHashed: hashedPassword,
		FullName:       utils.SanitizeText(req.FullName),
		PhoneNumber:    req.PhoneNumber,
		Role:           domainUser.Role(req.Role),
		Address:        req.Address,
		IsActive:       true,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	tokenPair, err := s.issueTokens(ctx, u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, err
	}

	logger.Info("User registered",
		zap.String("user_id", u.ID.String()),
		zap.String("email", u.Email),
		zap.String("role", string(u.Role)),
		zap.String("event", "user_registered"),
	)

	return &AuthResponse{
		User:         ToUserResponse(u),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("invalid login input", err)
	}

	u, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) || appErrors.IsKind(err, appErrors.KindNotFound) {
			logger.Warn("Login attempt with unknown email",
				zap.String("email", req.Email),
				zap.String("event", "login_failed_unknown_email"),
			)
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !u.IsActive {
		logger.Warn("Login attempt for inactive account",
			zap.String("user_id", u.ID.String()),
			zap.String("event", "login_failed_inactive_account"),
		)
		return nil, appErrors.ErrUserInactive
	}

	if !utils.CheckPassword(u.PasswordHashed, req.Password) {
		logger.Warn("Login attempt with invalid password",
			zap.String("user_id", u.ID.String()),
			zap.String("event", "login_failed_invalid_password"),
		)
		return nil, appErrors.ErrInvalidCredentials
	}

	tokenPair, err := s.issueTokens(ctx, u.ID, u.Email, string(u.Role))
	if err != nil {
		return nil, err
	}

	logger.Info("User logged in",
		zap.String("user_id", u.ID.String()),
		zap.String("role", string(u.Role)),
		zap.String("event", "login_success"),
	)

	return &AuthResponse{
		User:         ToUserResponse(u),
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	claims, err := utils.ValidateToken(refreshToken, s.config.JWT.Secret)
	if err != nil {
		logger.Warn("Token refresh with invalid token",
			zap.String("event", "token_refresh_failed_invalid_token"),
			zap.Error(err),
		)
		return nil, appErrors.ErrInvalidToken
	}

	dbToken, err := s.refreshTokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		logger.Warn("Token refresh with unknown token",
			zap.String("user_id", claims.UserID.String()),
			zap.String("event", "token_refresh_failed_token_not_found"),
		)
		return nil, appErrors.ErrInvalidToken
	}

	if dbToken.UserID != claims.UserID {
		logger.Warn("Token refresh with mismatched user id",
			zap.String("token_user_id", dbToken.UserID.String()),
			zap.String("claim_user_id", claims.UserID.String()),
			zap.String("event", "token_refresh_failed_user_mismatch"),
		)
		return nil, appErrors.ErrInvalidToken
	}

	if dbToken.Revoked || time.Now().After(dbToken.ExpiresAt) {
		return nil, appErrors.ErrInvalidToken
	}

	// Rotation: the presented token is single use.
	if err := s.refreshTokenRepo.Revoke(ctx, dbToken.ID); err != nil {
		logger.Error("Failed to revoke refresh token",
			zap.String("token_id", dbToken.ID.String()),
			zap.Error(err),
		)
	}

	tokenPair, err := s.issueTokens(ctx, claims.UserID, claims.Email, claims.Role)
	if err != nil {
		return nil, err
	}

	logger.Debug("Token refreshed",
		zap.String("user_id", claims.UserID.String()),
		zap.String("event", "token_refresh_success"),
	)

	return tokenPair, nil
}

func (s *Service) RevokeToken(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	dbToken, err := s.refreshTokenRepo.GetByToken(ctx, refreshToken)
	if err != nil {
		return appErrors.ErrInvalidToken
	}

	if dbToken.UserID != userID {
		return appErrors.ErrInvalidToken
	}

	if err := s.refreshTokenRepo.Revoke(ctx, dbToken.ID); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	logger.Info("Refresh token revoked",
		zap.String("user_id", userID.String()),
		zap.String("token_id", dbToken.ID.String()),
		zap.String("event", "token_revoked"),
	)

	return nil
}

func (s *Service) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	if err := s.refreshTokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke tokens for user: %w", err)
	}

	logger.Info("All refresh tokens revoked for user",
		zap.String("user_id", userID.String()),
		zap.String("event", "all_tokens_revoked"),
	)

	return nil
}

func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToUserResponse(u), nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*UserResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("invalid profile input", err)
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		u.FullName = utils.SanitizeText(*req.FullName)
	}
	if req.PhoneNumber != nil {
		u.PhoneNumber = req.PhoneNumber
	}
	if req.Address != nil {
		u.Address = req.Address
	}
	u.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}

	return ToUserResponse(u), nil
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.Validation("invalid password input", err)
	}

	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		return appErrors.Validation(err.Error(), nil)
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !utils.CheckPassword(u.PasswordHashed, req.OldPassword) {
		logger.Warn("Password change with invalid old password",
			zap.String("user_id", u.ID.String()),
			zap.String("event", "password_change_failed_invalid_old_password"),
		)
		return appErrors.ErrInvalidCredentials
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return err
	}

	// All sessions started with the old password are invalidated.
	if err := s.refreshTokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
		logger.Error("Failed to revoke tokens after password change",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	logger.Info("Password changed",
		zap.String("user_id", u.ID.String()),
		zap.String("event", "password_change_success"),
	)

	return nil
}

// ListUsers is the admin directory view.
func (s *Service) ListUsers(ctx context.Context, actorID uuid.UUID, actorRole domainUser.Role, req *UserFilterRequest) (*UserListResponse, error) {
	if !access.CanManageUsers(access.Actor{ID: actorID, Role: actorRole}) {
		return nil, access.Denied("user directory")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.Validation("invalid filter", err)
	}

	filter := &domainUser.Filter{
		IsActive: req.IsActive,
		Search:   strings.TrimSpace(req.Search),
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if req.Role != "" {
		role := domainUser.Role(req.Role)
		filter.Role = &role
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return ToUserListResponse(users, total, filter.Page, filter.PageSize), nil
}

// SetUserActive enables or disables an account. Deactivation also revokes
// every outstanding refresh token so the account cannot renew a session.
func (s *Service) SetUserActive(ctx context.Context, actorID uuid.UUID, actorRole domainUser.Role, userID uuid.UUID, active bool) (*UserResponse, error) {
	if !access.CanManageUsers(access.Actor{ID: actorID, Role: actorRole}) {
		return nil, access.Denied("user management")
	}

	if actorID == userID && !active {
		return nil, appErrors.Validation("admins cannot deactivate their own account", nil)
	}

	if err := s.userRepo.SetActive(ctx, userID, active); err != nil {
		return nil, err
	}

	if !active {
		if err := s.refreshTokenRepo.RevokeAllUserTokens(ctx, userID); err != nil {
			logger.Error("Failed to revoke tokens for deactivated user",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	logger.Info("User active flag changed",
		zap.String("user_id", userID.String()),
		zap.Bool("active", active),
		zap.String("admin_id", actorID.String()),
		zap.String("event", "user_active_changed"),
	)

	return ToUserResponse(u), nil
}

func (s *Service) issueTokens(ctx context.Context, userID uuid.UUID, email, role string) (*utils.TokenPair, error) {
	tokenPair, err := utils.GenerateTokenPair(
		userID,
		email,
		role,
		s.config.JWT.Secret,
		s.config.JWT.ExpiryHours,
		s.config.JWT.RefreshExpiryHours,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	refreshToken := &domainUser.RefreshToken{
		UserID:    userID,
		Token:     tokenPair.RefreshToken,
		ExpiresAt: time.Now().Add(time.Duration(s.config.JWT.RefreshExpiryHours) * time.Hour),
		Revoked:   false,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return tokenPair, nil
}
