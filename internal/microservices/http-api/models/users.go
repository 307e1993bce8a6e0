package models

import (
	"time"

	"yamdb/internal/policy"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID        string      `gorm:"primaryKey;type:uuid" json:"id"`
	Username  string      `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email     string      `gorm:"uniqueIndex;size:254;not null" json:"email"`
	FirstName string      `gorm:"size:150" json:"first_name"`
	LastName  string      `gorm:"size:150" json:"last_name"`
	Bio       string      `gorm:"type:text" json:"bio"`
	Role      policy.Role `gorm:"type:varchar(16);default:'user';not null" json:"role"`
	// only set through the bootstrap flag, never through the API
	IsSuperuser bool `gorm:"not null;default:false" json:"-"`
	// bcrypt hash of the last emailed confirmation code
	ConfirmationCode string    `gorm:"column:confirmation_code_hash" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// BeforeCreate sets the UUID and the default role
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = policy.RoleUser
	}
	return
}

func (User) TableName() string {
	return "users"
}

// OwnerID makes a user its own owner for profile checks
func (user *User) OwnerID() string {
	return user.ID
}

// Actor converts the stored account into the authorization identity
func (user *User) Actor() policy.Actor {
	return policy.Authenticated(user.ID, user.Username, user.Role, user.IsSuperuser)
}
