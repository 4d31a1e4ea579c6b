package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"sunsetCompanionAPI/internal/storage"
	"sunsetCompanionAPI/internal/user"
	"sunsetCompanionAPI/utils"
)

const passwordCost = 10

type UserService struct {
	store storage.UserStore
}

func NewUserService(store storage.UserStore) *UserService {
	return &UserService{store: store}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, req *user.RegisterRequest, now time.Time) (*user.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, utils.NewValidationError("Email and password are required")
	}
	if !strings.Contains(email, "@") {
		return nil, utils.NewValidationError("Invalid email address")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, utils.NewValidationError("Password is too long")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now = now.Truncate(time.Microsecond)
	u := &user.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.CreateUser(ctx, u)
	if errors.Is(err, storage.ErrConflict) {
		return nil, utils.NewAppError(utils.ErrEmailTaken, "Email already registered", nil)
	}
	if err != nil {
		return nil, utils.NewStorageError("Failed to create user", err)
	}

	return u, nil
}

// Authenticate checks email and password. Unknown emails and wrong passwords
// fail the same way.
func (s *UserService) Authenticate(ctx context.Context, req *user.LoginRequest) (*user.User, error) {
	invalid := utils.NewAppError(utils.ErrInvalidCredentials, "Invalid email or password", nil)

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, invalid
	}

	u, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, invalid
	}
	if err != nil {
		return nil, utils.NewStorageError("Failed to load user", err)
	}

	if u.PasswordHash == "" {
		return nil, invalid
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, invalid
	}

	return u, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.store.GetUserByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, utils.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, utils.NewStorageError("Failed to load user", err)
	}
	return u, nil
}

// UserIDByClerkID maps a verified Clerk subject to the local user id.
func (s *UserService) UserIDByClerkID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	u, err := s.store.GetUserByClerkID(ctx, clerkID)
	if errors.Is(err, storage.ErrNotFound) {
		return uuid.Nil, utils.NewNotFoundError("User not found")
	}
	if err != nil {
		return uuid.Nil, utils.NewStorageError("Failed to load user", err)
	}
	return u.ID, nil
}

// CreateClerkUser provisions a user for a Clerk account. Replayed webhooks
// return the existing user.
func (s *UserService) CreateClerkUser(ctx context.Context, req *user.ClerkUserRequest, now time.Time) (*user.User, error) {
	if req.ClerkID == "" {
		return nil, utils.NewValidationError("Clerk user id is required")
	}

	existing, err := s.store.GetUserByClerkID(ctx, req.ClerkID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, utils.NewStorageError("Failed to load user", err)
	}

	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, utils.NewValidationError("Email is required")
	}

	clerkID := req.ClerkID
	now = now.Truncate(time.Microsecond)
	u := &user.User{
		ID:        uuid.New(),
		ClerkID:   &clerkID,
		Email:     email,
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.AvatarURL != "" {
		avatar := req.AvatarURL
		u.AvatarURL = &avatar
	}

	err = s.store.CreateUser(ctx, u)
	if errors.Is(err, storage.ErrConflict) {
		return nil, utils.NewAppError(utils.ErrEmailTaken, "Email already registered", nil)
	}
	if err != nil {
		return nil, utils.NewStorageError("Failed to create user", err)
	}

	log.Printf("UserService: provisioned user %s for clerk id %s", u.ID, clerkID)
	return u, nil
}

func (s *UserService) UpdateClerkUser(ctx context.Context, req *user.ClerkUserRequest) (*user.User, error) {
	var avatar *string
	if req.AvatarURL != "" {
		avatar = &req.AvatarURL
	}

	u, err := s.store.UpdateUserByClerkID(ctx, req.ClerkID, req.Name, avatar)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, utils.NewNotFoundError("User not found")
	}
	if err != nil {
		return nil, utils.NewStorageError("Failed to update user", err)
	}
	return u, nil
}

func (s *UserService) DeleteClerkUser(ctx context.Context, clerkID string) error {
	err := s.store.DeleteUserByClerkID(ctx, clerkID)
	if errors.Is(err, storage.ErrNotFound) {
		return utils.NewNotFoundError("User not found")
	}
	if err != nil {
		return utils.NewStorageError("Failed to delete user", err)
	}
	return nil
}
