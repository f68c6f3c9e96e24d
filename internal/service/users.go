package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stagepass/internal/auth"
	"stagepass/internal/errors"
	"stagepass/internal/logger"
	"stagepass/internal/messaging"
	"stagepass/internal/models"
	"stagepass/internal/repository"
	"stagepass/internal/session"
)

// UserService handles registration, login/logout and profile updates.
type UserService struct {
	userRepo   *repository.UserRepository
	sessions   *session.Store
	natsClient *messaging.NATSClient
}

func NewUserService(userRepo *repository.UserRepository, sessions *session.Store, natsClient *messaging.NATSClient) *UserService {
	return &UserService{
		userRepo:   userRepo,
		sessions:   sessions,
		natsClient: natsClient,
	}
}

// RegisterConsumer creates a consumer account and establishes its session.
func (s *UserService) RegisterConsumer(ctx context.Context, req *models.RegisterConsumerRequest) (*models.RegisterResponse, error) {
	if err := requireNonEmpty(map[string]string{
		"name":            req.Name,
		"email":           req.Email,
		"phone":           req.Phone,
		"password":        req.Password,
		"payment_account": req.PaymentAccount,
	}); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:          req.Email,
		PasswordHash:   hash,
		PaymentAccount: req.PaymentAccount,
		Role:           models.RoleConsumer,
		Name:           req.Name,
		Phone:          req.Phone,
		Preferences:    req.Preferences,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return s.openSession(ctx, user)
}

// RegisterProvider creates a provider account and establishes its session.
func (s *UserService) RegisterProvider(ctx context.Context, req *models.RegisterProviderRequest) (*models.RegisterResponse, error) {
	if err := requireNonEmpty(map[string]string{
		"org_name":        req.OrgName,
		"org_address":     req.OrgAddress,
		"email":           req.Email,
		"password":        req.Password,
		"payment_account": req.PaymentAccount,
		"main_rep_name":   req.MainRepName,
		"main_rep_email":  req.MainRepEmail,
	}); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:          req.Email,
		PasswordHash:   hash,
		PaymentAccount: req.PaymentAccount,
		Role:           models.RoleProvider,
		OrgName:        req.OrgName,
		OrgAddress:     req.OrgAddress,
		MainRepName:    req.MainRepName,
		MainRepEmail:   req.MainRepEmail,
		OtherRepNames:  req.OtherRepNames,
		OtherRepEmails: req.OtherRepEmails,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return s.openSession(ctx, user)
}

func (s *UserService) openSession(ctx context.Context, user *models.User) (*models.RegisterResponse, error) {
	token, err := s.sessions.Create(user)
	if err != nil {
		return nil, err
	}

	if err := s.natsClient.Publish(models.EventUserRegistered, models.UserRegisteredEvent{
		Email:     user.Email,
		Role:      user.Role,
		Timestamp: time.Now(),
	}); err != nil {
		logger.WithContext(ctx).Error("Failed to publish user registered event", "error", err, "email", user.Email)
	}

	return &models.RegisterResponse{Email: user.Email, Role: user.Role, Token: token}, nil
}

// Login validates credentials and establishes a session.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user := s.userRepo.GetByEmail(req.Email)
	if user == nil || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, errors.ErrUnauthenticated
	}

	token, err := s.sessions.Create(user)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("User logged in", "email", user.Email, "role", user.Role)
	return &models.LoginResponse{Token: token, Role: user.Role}, nil
}

// Logout closes the current session.
func (s *UserService) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return errors.ErrUnauthenticated
	}
	return s.sessions.Delete(sess.ID)
}

// UpdateConsumerProfile re-validates all fields, checks the old password,
// then overwrites the consumer account in place.
func (s *UserService) UpdateConsumerProfile(ctx context.Context, sess *session.Session, req *models.UpdateConsumerProfileRequest) error {
	user, err := s.actor(sess, models.RoleConsumer)
	if err != nil {
		return err
	}

	if err := requireNonEmpty(map[string]string{
		"new_name":            req.NewName,
		"new_email":           req.NewEmail,
		"new_phone":           req.NewPhone,
		"new_password":        req.NewPassword,
		"new_payment_account": req.NewPaymentAccount,
	}); err != nil {
		return err
	}
	if !auth.VerifyPassword(user.PasswordHash, req.OldPassword) {
		return errors.ErrForbidden
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// Build the replacement aside and swap it in only once the collision
	// checks pass; a rejected update leaves the stored account untouched.
	updated := *user
	updated.Email = req.NewEmail
	updated.PasswordHash = hash
	updated.PaymentAccount = req.NewPaymentAccount
	updated.Name = req.NewName
	updated.Phone = req.NewPhone
	if req.Preferences != nil {
		updated.Preferences = req.Preferences
	}

	if err := s.userRepo.Update(user.Email, &updated); err != nil {
		return err
	}

	s.sessions.UpdateEmail(sess.ID, updated.Email)
	return nil
}

// UpdateProviderProfile re-validates all fields, checks the old password and
// both uniqueness invariants, then overwrites the provider account in place.
func (s *UserService) UpdateProviderProfile(ctx context.Context, sess *session.Session, req *models.UpdateProviderProfileRequest) error {
	user, err := s.actor(sess, models.RoleProvider)
	if err != nil {
		return err
	}

	if err := requireNonEmpty(map[string]string{
		"new_email":           req.NewEmail,
		"new_password":        req.NewPassword,
		"new_payment_account": req.NewPaymentAccount,
		"new_org_name":        req.NewOrgName,
		"new_org_address":     req.NewOrgAddress,
		"new_main_rep_name":   req.NewMainRepName,
		"new_main_rep_email":  req.NewMainRepEmail,
	}); err != nil {
		return err
	}
	if !auth.VerifyPassword(user.PasswordHash, req.OldPassword) {
		return errors.ErrForbidden
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// Same copy-then-swap dance as the consumer update: the account in the
	// repository never carries fields from a rejected request.
	updated := *user
	updated.Email = req.NewEmail
	updated.PasswordHash = hash
	updated.PaymentAccount = req.NewPaymentAccount
	updated.OrgName = req.NewOrgName
	updated.OrgAddress = req.NewOrgAddress
	updated.MainRepName = req.NewMainRepName
	updated.MainRepEmail = req.NewMainRepEmail
	updated.OtherRepNames = req.OtherRepNames
	updated.OtherRepEmails = req.OtherRepEmails

	if err := s.userRepo.Update(user.Email, &updated); err != nil {
		return err
	}

	s.sessions.UpdateEmail(sess.ID, updated.Email)
	return nil
}

func (s *UserService) actor(sess *session.Session, role models.Role) (*models.User, error) {
	if sess == nil {
		return nil, errors.ErrUnauthenticated
	}
	user := s.userRepo.GetByEmail(sess.Email)
	if user == nil {
		return nil, errors.ErrUnauthenticated
	}
	if user.Role != role {
		return nil, errors.ErrForbidden
	}
	return user, nil
}

// requireNonEmpty rejects blank string fields with a named validation error.
func requireNonEmpty(fields map[string]string) error {
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s must not be empty", errors.ErrValidation, name)
		}
	}
	return nil
}
