package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment — комментарий к изображению.
// ParentID указывает на корневой комментарий того же изображения, если это ответ.
type Comment struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ImageID   uuid.UUID  `json:"image_id" gorm:"type:uuid;not null;index"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null"`
	Text      string     `json:"text" gorm:"size:2048;not null"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Comment) TableName() string {
	return "comments"
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsReply сообщает, является ли комментарий ответом на другой комментарий
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}
