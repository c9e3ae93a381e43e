package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"punebus-backend/internal/adapters/persistence/models"
	"punebus-backend/internal/adapters/persistence/repositories"
	"punebus-backend/internal/core/domain"
	"punebus-backend/internal/pkg/pagination"
	"punebus-backend/internal/pkg/password"
	"punebus-backend/internal/pkg/validation"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrCannotDeleteSelf     = &domain.ValidationError{Message: "Cannot delete your own account"}
	ErrCannotDeactivateSelf = &domain.ValidationError{Message: "Cannot deactivate your own account"}
	ErrOldPasswordWrong     = &domain.ValidationError{Message: "Old password is incorrect"}
)

// UserService handles principal management business logic
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// ListUsersInput represents list users input
type ListUsersInput struct {
	Page     int
	Limit    int
	Search   string
	Role     string
	Category string
	IsActive *bool
}

// ListUsersOutput represents list users output
type ListUsersOutput struct {
	Users      []*models.UserResponse `json:"users"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// CreateUserInput represents create user input (staff/admin)
type CreateUserInput struct {
	Name          string `json:"name" validate:"required,max=150"`
	ContactPerson string `json:"contact_person" validate:"max=100"`
	Phone         string `json:"phone" validate:"max=20"`
	Email         string `json:"email" validate:"omitempty,email,max=100"`
	Password      string `json:"password"`
	Role          string `json:"role" validate:"required"`
	City          string `json:"city" validate:"max=100"`
	Address       string `json:"address"`
	IsActive      *bool  `json:"is_active"`
}

// UpdateUserInput represents update user input. Role is not updatable.
type UpdateUserInput struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contact_person"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	City          *string `json:"city"`
	Address       *string `json:"address"`
	IsActive      *bool   `json:"is_active"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

// ListUsers lists principals with filters and pagination
func (s *UserService) ListUsers(ctx context.Context, actor *domain.Principal, input *ListUsersInput) (*ListUsersOutput, error) {
	if err := domain.Authorize(actor, domain.StaffOrAdmin); err != nil {
		return nil, err
	}

	params := pagination.New(input.Page, input.Limit)
	filter := repositories.UserFilter{
		Search:   input.Search,
		IsActive: input.IsActive,
		Offset:   params.Offset,
		Limit:    params.Limit,
	}

	switch {
	case input.Role != "":
		if !domain.Role(input.Role).Valid() {
			return nil, domain.NewValidationError("Invalid role")
		}
		filter.Roles = []string{input.Role}
	case input.Category != "":
		cat := domain.Category(input.Category)
		if cat != domain.CategoryPartner && cat != domain.CategoryStaff {
			return nil, domain.NewValidationError("Invalid category")
		}
		for _, r := range domain.RolesIn(cat) {
			filter.Roles = append(filter.Roles, string(r))
		}
	}

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]*models.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}

	return &ListUsersOutput{
		Users:      responses,
		Total:      total,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalPages: pagination.GetMeta(params, total).TotalPages,
	}, nil
}

// GetUser gets a principal by ID
func (s *UserService) GetUser(ctx context.Context, actor *domain.Principal, id string) (*models.UserResponse, error) {
	if err := domain.Authorize(actor, domain.StaffOrAdmin); err != nil {
		return nil, err
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// CreateUser creates a principal. Partners may be created by any staff
// member, staff principals only by an admin.
func (s *UserService) CreateUser(ctx context.Context, actor *domain.Principal, input *CreateUserInput) (*models.UserResponse, error) {
	if err := domain.Authorize(actor, domain.StaffOrAdmin); err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	role := domain.Role(input.Role)
	if !role.Valid() {
		return nil, domain.NewValidationError("Invalid role")
	}
	if role.IsStaff() {
		if err := domain.Authorize(actor, domain.AdminOnly); err != nil {
			return nil, err
		}
	}

	createdBy := actor.ID
	user := &models.User{
		Name:          input.Name,
		ContactPerson: strings.TrimSpace(input.ContactPerson),
		Phone:         strings.TrimSpace(input.Phone),
		Role:          string(role),
		City:          strings.TrimSpace(input.City),
		Address:       strings.TrimSpace(input.Address),
		IsActive:      true,
		CreatedBy:     &createdBy,
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if err := setCredential(ctx, s.userRepo, user, input.Email, input.Password); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ User created: %s (%s) by %s", user.ID, user.Role, actor.ID)
	return user.ToResponse(), nil
}

// UpdateUser updates a principal. Staff principals can only be edited by an admin.
func (s *UserService) UpdateUser(ctx context.Context, actor *domain.Principal, id string, input *UpdateUserInput) (*models.UserResponse, error) {
	if err := domain.Authorize(actor, domain.StaffOrAdmin); err != nil {
		return nil, err
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if domain.Role(user.Role).IsStaff() && user.ID != actor.ID {
		if err := domain.Authorize(actor, domain.AdminOnly); err != nil {
			return nil, err
		}
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.NewValidationError("name cannot be empty")
		}
		user.Name = name
	}
	if input.ContactPerson != nil {
		user.ContactPerson = strings.TrimSpace(*input.ContactPerson)
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.City != nil {
		user.City = strings.TrimSpace(*input.City)
	}
	if input.Address != nil {
		user.Address = strings.TrimSpace(*input.Address)
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if err := s.changeEmail(ctx, user, email); err != nil {
			return nil, err
		}
	}

	if input.IsActive != nil {
		if user.ID == actor.ID && !*input.IsActive {
			return nil, ErrCannotDeactivateSelf
		}
		user.IsActive = *input.IsActive
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// changeEmail sets a new unique email. Clearing the email also clears the password.
func (s *UserService) changeEmail(ctx context.Context, user *models.User, email string) error {
	current := ""
	if user.Email != nil {
		current = *user.Email
	}
	if email == current {
		return nil
	}

	if email == "" {
		user.Email = nil
		user.Password = ""
		return nil
	}
	if validation.Validator().Var(email, "email") != nil {
		return domain.NewValidationError("Invalid email format")
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return domain.ConflictError("email already in use")
	}
	user.Email = &email
	return nil
}

// DeleteUser deletes a principal (soft delete, admin only)
func (s *UserService) DeleteUser(ctx context.Context, actor *domain.Principal, id string) error {
	if err := domain.Authorize(actor, domain.AdminOnly); err != nil {
		return err
	}
	if id == actor.ID {
		return ErrCannotDeleteSelf
	}

	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("🗑️ User deleted: %s by %s", id, actor.ID)
	return nil
}

// ResetPassword sets a new password for a principal that has an email (admin only)
func (s *UserService) ResetPassword(ctx context.Context, actor *domain.Principal, id, newPassword string) error {
	if err := domain.Authorize(actor, domain.AdminOnly); err != nil {
		return err
	}

	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if user.Email == nil || *user.Email == "" {
		return domain.NewValidationError("user has no email to log in with")
	}

	return s.setPassword(ctx, user, newPassword)
}

// GetProfile gets own profile
func (s *UserService) GetProfile(ctx context.Context, actor *domain.Principal) (*models.UserResponse, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}

	user, err := s.find(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return user.ToResponse(), nil
}

// ChangePassword changes the caller's own password
func (s *UserService) ChangePassword(ctx context.Context, actor *domain.Principal, input *ChangePasswordInput) error {
	if actor == nil {
		return domain.ErrUnauthenticated
	}
	if err := validateStruct(input); err != nil {
		return err
	}

	user, err := s.find(ctx, actor.ID)
	if err != nil {
		return err
	}

	if !password.Verify(input.OldPassword, user.Password) {
		return ErrOldPasswordWrong
	}

	return s.setPassword(ctx, user, input.NewPassword)
}

func (s *UserService) setPassword(ctx context.Context, user *models.User, plain string) error {
	if !password.ValidatePassword(plain) {
		return domain.NewValidationError("password must be at least %d characters", password.MinLength)
	}

	hashed, err := password.Hash(plain)
	if err != nil {
		return err
	}

	user.Password = hashed
	return s.userRepo.Update(ctx, user)
}

func (s *UserService) find(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError("user")
		}
		return nil, err
	}
	return user, nil
}
