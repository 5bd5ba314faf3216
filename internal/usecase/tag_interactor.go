package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/PhotoShare/internal/access"
	"github.com/GoArmGo/PhotoShare/internal/core/ports"
	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/GoArmGo/PhotoShare/internal/validation"
)

// tagUseCase реализует TagUseCase
type tagUseCase struct {
	tags   ports.TagStorage
	gate   *access.Gate
	logger *slog.Logger
}

func NewTagUseCase(tags ports.TagStorage, gate *access.Gate, logger *slog.Logger) TagUseCase {
	return &tagUseCase{tags: tags, gate: gate, logger: logger}
}

// ResolveOrCreate возвращает тег с данным названием, создавая его при отсутствии.
// Название приводится к нижнему регистру.
func (uc *tagUseCase) ResolveOrCreate(ctx context.Context, title string, p domain.Principal) (*domain.Tag, error) {
	if err := uc.gate.Require(access.OpTagCreate, p); err != nil {
		return nil, err
	}
	return resolveOrCreateTag(ctx, uc.tags, title, p)
}

// resolveOrCreateTag — общий шаг для каталога тегов и прикрепления тегов к изображениям
func resolveOrCreateTag(ctx context.Context, tags ports.TagStorage, title string, p domain.Principal) (*domain.Tag, error) {
	title = NormalizeTagTitle(title)
	if err := validation.ValidateStruct(&TagPayload{Title: title}); err != nil {
		return nil, err
	}

	tag, err := tags.GetTagByTitle(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при поиске тега %q: %w", title, err)
	}
	if tag != nil {
		return tag, nil
	}

	tag, err = tags.CreateTagIfAbsent(ctx, &domain.Tag{Title: title, UserID: p.ID})
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при создании тега %q: %w", title, err)
	}
	return tag, nil
}

func (uc *tagUseCase) List(ctx context.Context, offset, limit int, titleFilter string) ([]domain.Tag, error) {
	offset, limit = clampPage(offset, limit)

	tags, err := uc.tags.ListTags(ctx, offset, limit, NormalizeTagTitle(titleFilter))
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении тегов: %w", err)
	}
	return tags, nil
}

func (uc *tagUseCase) Get(ctx context.Context, title string) (*domain.Tag, error) {
	tag, err := uc.tags.GetTagByTitle(ctx, NormalizeTagTitle(title))
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении тега: %w", err)
	}
	return tag, nil
}

// Delete удаляет тег из каталога и со всех изображений.
// Снимки затронутых изображений в кэше не обновляются и устаревают по TTL.
func (uc *tagUseCase) Delete(ctx context.Context, title string, p domain.Principal) (*domain.Tag, error) {
	if err := uc.gate.Require(access.OpTagDelete, p); err != nil {
		return nil, err
	}

	tag, err := uc.tags.DeleteTag(ctx, NormalizeTagTitle(title))
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при удалении тега: %w", err)
	}
	return tag, nil
}
