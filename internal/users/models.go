package users

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleVisitor Role = "VISITOR"
	RoleHost    Role = "HOST"
	RoleAdmin   Role = "ADMIN"
)

type User struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid;default:uuid_generate_v4()"`
	FirstName string    `json:"first_name" gorm:"not null"`
	LastName  string    `json:"last_name" gorm:"not null"`
	Password  string    `json:"-" gorm:"not null"` // hide in json
	Role      Role      `json:"role" gorm:"not null;default:'VISITOR'"`
	Email     string    `json:"email" gorm:"uniqueIndex;not null"`
	Phone     string    `json:"phone" gorm:"size:20"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func IsValidRole(role string) bool {
	switch Role(role) {
	case RoleVisitor, RoleHost, RoleAdmin:
		return true
	default:
		return false
	}
}
