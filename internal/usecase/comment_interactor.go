package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/GoArmGo/PhotoShare/internal/access"
	"github.com/GoArmGo/PhotoShare/internal/core/ports"
	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/GoArmGo/PhotoShare/internal/validation"
	"github.com/google/uuid"
)

// commentUseCase реализует CommentUseCase
type commentUseCase struct {
	comments ports.CommentStorage
	images   ports.ImageStorage
	gate     *access.Gate
	logger   *slog.Logger
}

func NewCommentUseCase(
	comments ports.CommentStorage,
	images ports.ImageStorage,
	gate *access.Gate,
	logger *slog.Logger,
) CommentUseCase {
	return &commentUseCase{
		comments: comments,
		images:   images,
		gate:     gate,
		logger:   logger,
	}
}

// ListThread возвращает ветку комментариев изображения: ответы стоят перед своим корнем
func (uc *commentUseCase) ListThread(ctx context.Context, imageID uuid.UUID, p domain.Principal) ([]domain.Comment, error) {
	if err := uc.gate.Require(access.OpCommentRead, p); err != nil {
		return nil, err
	}

	roots, err := uc.comments.ListRootComments(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении корневых комментариев: %w", err)
	}
	replies, err := uc.comments.ListReplyComments(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении ответов: %w", err)
	}

	return AssembleThread(roots, replies), nil
}

func (uc *commentUseCase) CreateForImage(ctx context.Context, imageID uuid.UUID, payload CommentPayload, p domain.Principal) (*domain.Comment, error) {
	if err := uc.gate.Require(access.OpCommentCreate, p); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&payload); err != nil {
		return nil, err
	}

	image, err := uc.images.GetImageByID(ctx, imageID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении изображения %s: %w", imageID, err)
	}
	if image == nil {
		return nil, nil
	}

	comment := &domain.Comment{ImageID: image.ID, UserID: p.ID, Text: payload.Text}
	if err := uc.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("usecase: ошибка при создании комментария: %w", err)
	}
	return comment, nil
}

func (uc *commentUseCase) Reply(ctx context.Context, parentID uuid.UUID, payload CommentPayload, p domain.Principal) (*domain.Comment, error) {
	if err := uc.gate.Require(access.OpCommentCreate, p); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&payload); err != nil {
		return nil, err
	}

	parent, err := uc.comments.GetCommentByID(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении комментария %s: %w", parentID, err)
	}
	if parent == nil {
		return nil, nil
	}
	if commentDepth(parent) >= MaxThreadDepth {
		uc.logger.Info("reply to a reply rejected", "parent_id", parentID, "user_id", p.ID)
		return nil, nil
	}

	reply := &domain.Comment{
		ImageID:  parent.ImageID,
		UserID:   p.ID,
		Text:     payload.Text,
		ParentID: &parent.ID,
	}
	if err := uc.comments.CreateComment(ctx, reply); err != nil {
		return nil, fmt.Errorf("usecase: ошибка при создании ответа: %w", err)
	}
	return reply, nil
}

func (uc *commentUseCase) Update(ctx context.Context, commentID uuid.UUID, payload CommentPayload, p domain.Principal) (*domain.Comment, error) {
	if err := uc.gate.Require(access.OpCommentUpdate, p); err != nil {
		return nil, err
	}
	if err := validation.ValidateStruct(&payload); err != nil {
		return nil, err
	}

	comment, err := uc.comments.GetAuthoredComment(ctx, commentID, p.ID)
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении комментария %s: %w", commentID, err)
	}
	if comment == nil {
		return nil, nil
	}

	comment.Text = payload.Text
	if err := uc.comments.UpdateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("usecase: ошибка при обновлении комментария %s: %w", commentID, err)
	}
	return comment, nil
}

// Delete удаляет комментарий. Модерация удаляет любой комментарий,
// остальные роли — только собственный; чужой комментарий для них отсутствует.
func (uc *commentUseCase) Delete(ctx context.Context, commentID uuid.UUID, p domain.Principal) (*domain.Comment, error) {
	if err := uc.gate.Require(access.OpCommentDeleteOwn, p); err != nil {
		return nil, err
	}

	var (
		comment *domain.Comment
		err     error
	)
	if uc.gate.Allows(access.OpCommentDelete, p) {
		comment, err = uc.comments.GetCommentByID(ctx, commentID)
	} else {
		comment, err = uc.comments.GetAuthoredComment(ctx, commentID, p.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("usecase: ошибка при получении комментария %s: %w", commentID, err)
	}
	if comment == nil {
		return nil, nil
	}

	if err := uc.comments.DeleteComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("usecase: ошибка при удалении комментария %s: %w", commentID, err)
	}
	return comment, nil
}
