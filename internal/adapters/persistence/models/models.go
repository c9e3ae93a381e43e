package models

import (
	"time"

	"punebus-backend/internal/core/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================================
// Principals & Auth
// ============================================================

// User represents users table (partners and staff)
type User struct {
	ID            string         `gorm:"primaryKey;size:36" json:"id"`
	Name          string         `gorm:"size:150;not null" json:"name"`
	ContactPerson string         `gorm:"size:100" json:"contact_person"`
	Phone         string         `gorm:"size:20;index" json:"phone"`
	Email         *string        `gorm:"uniqueIndex;size:100" json:"email"`
	Password      string         `gorm:"size:255" json:"-"`
	Role          string         `gorm:"size:20;index;not null" json:"role"`
	City          string         `gorm:"size:100" json:"city"`
	Address       string         `gorm:"type:text" json:"address"`
	IsActive      bool           `gorm:"not null" json:"is_active"`
	CreatedBy     *string        `gorm:"size:36" json:"created_by"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// HasCredential reports whether the user can log in
func (u *User) HasCredential() bool {
	return u.Email != nil && *u.Email != "" && u.Password != ""
}

// UserResponse DTO
type UserResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Email         string    `json:"email,omitempty"`
	Role          string    `json:"role"`
	Category      string    `json:"category"`
	City          string    `json:"city,omitempty"`
	Address       string    `json:"address,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	resp := &UserResponse{
		ID:            u.ID,
		Name:          u.Name,
		ContactPerson: u.ContactPerson,
		Phone:         u.Phone,
		Role:          u.Role,
		Category:      string(domain.Role(u.Role).Category()),
		City:          u.City,
		Address:       u.Address,
		IsActive:      u.IsActive,
		CreatedAt:     u.CreatedAt,
	}
	if u.Email != nil {
		resp.Email = *u.Email
	}
	return resp
}

// ToPrincipal returns the credential-free view used by the access guard
func (u *User) ToPrincipal() *domain.Principal {
	p := &domain.Principal{
		ID:       u.ID,
		Name:     u.Name,
		Phone:    u.Phone,
		Role:     domain.Role(u.Role),
		IsActive: u.IsActive,
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	return p
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    string     `gorm:"size:36;index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Subscriptions & Enquiries
// ============================================================

// Subscription represents subscriptions table
type Subscription struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	Name           string    `gorm:"size:150;not null" json:"name"`
	Phone          string    `gorm:"size:20;not null;index" json:"phone"`
	Email          string    `gorm:"size:100" json:"email,omitempty"`
	Plan           string    `gorm:"size:20;not null;index" json:"plan"`
	DurationMonths int       `gorm:"not null" json:"durationMonths"`
	StartDate      time.Time `gorm:"not null" json:"startDate"`
	EndDate        time.Time `gorm:"not null;index" json:"endDate"`
	Status         string    `gorm:"size:20;not null;index" json:"status"`
	Notes          string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy      string    `gorm:"size:36;index" json:"createdBy"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// BeforeCreate assigns a UUID primary key
func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Enquiry represents enquiries table (public lead capture)
type Enquiry struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Phone     string    `gorm:"size:20;not null" json:"phone"`
	Email     string    `gorm:"size:100" json:"email,omitempty"`
	Service   string    `gorm:"size:50" json:"service,omitempty"`
	Message   string    `gorm:"type:text" json:"message,omitempty"`
	Status    string    `gorm:"size:20;not null;index" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Enquiry) TableName() string {
	return "enquiries"
}

// BeforeCreate assigns a UUID primary key
func (e *Enquiry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Subscription{},
		&Enquiry{},
	)
}
