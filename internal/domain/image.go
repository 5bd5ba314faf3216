package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxTagsPerImage — максимальное число тегов на одном изображении
const MaxTagsPerImage = 5

// Image представляет модель изображения,
// соответствует таблице images в бд.
// TagCount хранит размер набора тегов и служит охранным условием при добавлении тега.
type Image struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	URL         string    `json:"url" gorm:"not null"`
	PublicID    string    `json:"public_id"`
	Description string    `json:"description"`
	TagCount    int       `json:"-" gorm:"not null;default:0"`
	Tags        []Tag     `json:"tags" gorm:"many2many:image_tags;"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Image) TableName() string {
	return "images"
}

// BeforeCreate генерирует UUID, если он не задан
func (i *Image) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// HasTag сообщает, прикреплен ли тег с данным названием к изображению
func (i *Image) HasTag(title string) bool {
	for _, t := range i.Tags {
		if t.Title == title {
			return true
		}
	}
	return false
}

// Tag представляет модель тега,
// соответствует таблице tags в бд. Title хранится в нижнем регистре и уникален.
type Tag struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Title     string    `json:"title" gorm:"size:50;not null;uniqueIndex"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid"`
	CreatedAt time.Time `json:"created_at"`
}

func (Tag) TableName() string {
	return "tags"
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// ImageTag представляет связующую модель для отношения Many-to-Many между Image и Tag,
// соответствует таблице image_tags в бд
type ImageTag struct {
	ImageID uuid.UUID `json:"image_id" gorm:"type:uuid;primaryKey"`
	TagID   uuid.UUID `json:"tag_id" gorm:"type:uuid;primaryKey"`
}

func (ImageTag) TableName() string {
	return "image_tags"
}
