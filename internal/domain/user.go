// internal/domain/user.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role — роль пользователя, определяет набор разрешенных операций
type Role string

const (
	RoleAdministrator Role = "administrator"
	RoleModerator     Role = "moderator"
	RoleUser          Role = "user"
)

// Valid сообщает, входит ли роль в перечисление известных ролей
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleModerator, RoleUser:
		return true
	}
	return false
}

// User представляет модель пользователя в системе.
// Соответствует таблице 'users' в базе данных.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Username     string    `json:"username" gorm:"size:254;not null;uniqueIndex"`
	Email        string    `json:"email" gorm:"size:254;not null;uniqueIndex"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role" gorm:"size:16;not null;default:'user'"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Principal — действующий субъект запроса. Роль не меняется в течение запроса.
type Principal struct {
	ID       uuid.UUID
	Username string
	Role     Role
}

// Principal возвращает субъект запроса для пользователя
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Username: u.Username, Role: u.Role}
}
