package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rate — оценка изображения пользователем, значение от 1 до 5.
// Не более одной оценки на пару (user_id, image_id); владелец не оценивает свое изображение.
type Rate struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ImageID   uuid.UUID `json:"image_id" gorm:"type:uuid;not null;uniqueIndex:idx_rates_image_user"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_rates_image_user"`
	Rate      int       `json:"rate" gorm:"not null;check:rate >= 1 AND rate <= 5"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Rate) TableName() string {
	return "rates"
}

func (r *Rate) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ImageRating — средняя оценка изображения.
// AvgRate равен nil, если у изображения нет оценок.
type ImageRating struct {
	ImageID uuid.UUID `json:"image_id"`
	AvgRate *float64  `json:"avg_rate"`
}
