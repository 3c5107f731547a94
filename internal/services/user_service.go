package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"worklog/internal/clock"
	"worklog/internal/domain"
	"worklog/internal/errors"
	"worklog/internal/hierarchy"
	"worklog/internal/logging"
	"worklog/internal/repository/sqlite"
	"worklog/internal/validation"
)

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	repo          sqlite.Repository
	resolver      *hierarchy.Resolver
	clock         clock.Clock
	mapper        *domain.Mapper
	userValidator *validation.UserValidator
	hashCost      int
}

// NewUserService creates a new UserService instance
func NewUserService(repo sqlite.Repository, resolver *hierarchy.Resolver, clk clock.Clock, hashCost int) UserService {
	if hashCost == 0 {
		hashCost = bcrypt.DefaultCost
	}
	return &userServiceImpl{
		repo:          repo,
		resolver:      resolver,
		clock:         clk,
		mapper:        domain.NewMapper(),
		userValidator: validation.NewUserValidator(),
		hashCost:      hashCost,
	}
}

func (u *userServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.hashCost)
	if err != nil {
		return "", errors.WrapError(err, errors.ErrorTypeInvalidInput, "password could not be hashed")
	}
	return string(hash), nil
}

// Register creates an account, optionally reporting to an existing user
func (u *userServiceImpl) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	displayName := strings.TrimSpace(input.DisplayName)

	if err := u.userValidator.ValidateRegistration(username, displayName, input.Password); err != nil {
		return nil, validationFailure(err)
	}

	user := domain.NewUser(username, displayName)
	user.CreatedAt = u.clock.Now()

	if manager := strings.TrimSpace(input.ManagerUsername); manager != "" {
		dbManager, err := u.repo.GetUserByUsername(ctx, manager)
		if err != nil {
			return nil, err
		}
		user.ManagerID = &dbManager.ID
	}

	hash, err := u.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	dbUser := u.mapper.User.ToDatabase(user)
	if err := u.repo.CreateUser(ctx, &dbUser); err != nil {
		return nil, err
	}

	logging.Debugf("registered user %s (id %d)", dbUser.Username, dbUser.ID)
	result := u.mapper.User.FromDatabase(dbUser)
	return &result, nil
}

// GetUser retrieves a user by its ID
func (u *userServiceImpl) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if id <= 0 {
		return nil, errors.NewInvalidInputError("user_id", id, "must be a positive integer")
	}

	dbUser, err := u.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user := u.mapper.User.FromDatabase(*dbUser)
	return &user, nil
}

// GetByUsername retrieves a user by login name
func (u *userServiceImpl) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	dbUser, err := u.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}

	user := u.mapper.User.FromDatabase(*dbUser)
	return &user, nil
}

// ListUsers returns every account ordered by username
func (u *userServiceImpl) ListUsers(ctx context.Context) ([]domain.User, error) {
	dbUsers, err := u.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	return u.mapper.User.FromDatabaseSlice(dbUsers), nil
}

// SetManager assigns or clears a user's manager. Assignments that would
// make a user manage themselves, directly or through others, are refused.
func (u *userServiceImpl) SetManager(ctx context.Context, userID int64, managerID *int64) error {
	if _, err := u.repo.GetUser(ctx, userID); err != nil {
		return err
	}

	if managerID == nil {
		return u.repo.UpdateUserManager(ctx, userID, sql.NullInt64{})
	}

	if *managerID == userID {
		return errors.NewInvalidInputError("manager", *managerID, "a user cannot manage themselves")
	}
	if _, err := u.repo.GetUser(ctx, *managerID); err != nil {
		return err
	}

	subordinates, err := u.resolver.Subordinates(ctx, userID)
	if err != nil {
		return err
	}
	if subordinates.Contains(*managerID) {
		return errors.NewInvalidInputError("manager", *managerID,
			fmt.Sprintf("user %d already reports to user %d", *managerID, userID))
	}

	logging.Debugf("user %d now reports to user %d", userID, *managerID)
	return u.repo.UpdateUserManager(ctx, userID, sql.NullInt64{Int64: *managerID, Valid: true})
}

// ListSubordinates returns everyone below userID in the hierarchy, ordered by username
func (u *userServiceImpl) ListSubordinates(ctx context.Context, userID int64) ([]domain.User, error) {
	subordinates, err := u.resolver.Subordinates(ctx, userID)
	if err != nil {
		return nil, err
	}
	if subordinates.Len() == 0 {
		return []domain.User{}, nil
	}

	dbUsers, err := u.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]domain.User, 0, subordinates.Len())
	for _, dbUser := range dbUsers {
		if subordinates.Contains(dbUser.ID) {
			result = append(result, u.mapper.User.FromDatabase(*dbUser))
		}
	}
	return result, nil
}

// ListDirectReports returns the users whose manager is userID, ordered by username
func (u *userServiceImpl) ListDirectReports(ctx context.Context, userID int64) ([]domain.User, error) {
	if _, err := u.repo.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	dbUsers, err := u.repo.ListDirectReports(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.User, 0, len(dbUsers))
	for _, dbUser := range dbUsers {
		result = append(result, u.mapper.User.FromDatabase(*dbUser))
	}
	return result, nil
}

// Authenticate checks a username and password pair. Unknown users and
// wrong passwords fail the same way.
func (u *userServiceImpl) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	dbUser, err := u.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
			return nil, errors.NewUnauthenticatedError("invalid credentials")
		}
		return nil, err
	}

	if dbUser.PasswordHash == "" {
		return nil, errors.NewUnauthenticatedError("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(dbUser.PasswordHash), []byte(password)); err != nil {
		return nil, errors.NewUnauthenticatedError("invalid credentials")
	}

	user := u.mapper.User.FromDatabase(*dbUser)
	return &user, nil
}

// ChangePassword replaces a password after checking the current one
func (u *userServiceImpl) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	dbUser, err := u.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(dbUser.PasswordHash), []byte(oldPassword)); err != nil {
		return errors.NewUnauthenticatedError("current password does not match")
	}

	if err := u.userValidator.ValidatePassword(newPassword); err != nil {
		return validationFailure(err)
	}

	hash, err := u.hashPassword(newPassword)
	if err != nil {
		return err
	}
	return u.repo.UpdateUserPassword(ctx, userID, hash)
}

// validationFailure lifts a field-level validation error into an AppError
func validationFailure(err error) error {
	if ve, ok := err.(*validation.ValidationError); ok {
		return ve.ToAppError()
	}
	return err
}
