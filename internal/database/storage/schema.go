package storage

import (
	"fmt"

	"github.com/GoArmGo/PhotoShare/internal/domain"
	"gorm.io/gorm"
)

// AutoMigrate создает схему средствами GORM. В production схема накатывается
// SQL-миграциями, этот путь используется для встроенных бд (SQLite).
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&domain.Image{}, "Tags", &domain.ImageTag{}); err != nil {
		return fmt.Errorf("ошибка настройки таблицы image_tags: %w", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Tag{},
		&domain.Image{},
		&domain.ImageTag{},
		&domain.Comment{},
		&domain.Rate{},
	); err != nil {
		return fmt.Errorf("ошибка автомиграции: %w", err)
	}
	return nil
}
