// Package access содержит шлюз доступа (RBAC): решение принимается только по роли субъекта.
// Проверка владения ресурсом выполняется в usecase через фильтр в условии выборки.
package access

import (
	"fmt"
	"log/slog"

	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/GoArmGo/PhotoShare/internal/metrics"
)

// RoleSet — набор ролей, которым разрешена операция
type RoleSet map[domain.Role]struct{}

// NewRoleSet создает набор из перечисленных ролей
func NewRoleSet(roles ...domain.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has сообщает, входит ли роль в набор
func (s RoleSet) Has(role domain.Role) bool {
	_, ok := s[role]
	return ok
}

var (
	SelfOperations = NewRoleSet(domain.RoleAdministrator, domain.RoleModerator, domain.RoleUser)
	Moderation     = NewRoleSet(domain.RoleAdministrator, domain.RoleModerator)
	AdminOnly      = NewRoleSet(domain.RoleAdministrator)
)

// Authorize — чистая функция решения: true тогда и только тогда, когда роль входит в набор.
func Authorize(role domain.Role, allowed RoleSet) bool {
	return allowed.Has(role)
}

// Operation — категория операции, для которой настраивается набор ролей
type Operation string

const (
	OpImageCreate   Operation = "image.create"
	OpImageRead     Operation = "image.read"
	OpImageUpdate   Operation = "image.update"
	OpImageDelete   Operation = "image.delete"
	OpImageTag      Operation = "image.tag"
	OpForeignImage  Operation = "image.foreign"
	OpRateRead      Operation = "rate.read"
	OpRateCreate    Operation = "rate.create"
	OpRateDelete    Operation = "rate.delete"
	OpRateDeleteOwn Operation = "rate.delete_own"
	OpCommentRead   Operation = "comment.read"
	OpCommentCreate Operation = "comment.create"
	OpCommentUpdate Operation = "comment.update"
	OpCommentDelete Operation = "comment.delete"
	// OpCommentDeleteOwn — удаление собственного комментария автором
	OpCommentDeleteOwn Operation = "comment.delete_own"
	OpTagCreate        Operation = "tag.create"
	OpTagDelete        Operation = "tag.delete"
)

// Policy сопоставляет операции набор разрешенных ролей
type Policy map[Operation]RoleSet

// DefaultPolicy возвращает политику, повторяющую наборы ролей маршрутов
func DefaultPolicy() Policy {
	return Policy{
		OpImageCreate:      SelfOperations,
		OpImageRead:        SelfOperations,
		OpImageUpdate:      SelfOperations,
		OpImageDelete:      SelfOperations,
		OpImageTag:         SelfOperations,
		OpForeignImage:     AdminOnly,
		OpRateRead:         SelfOperations,
		OpRateCreate:       SelfOperations,
		OpRateDelete:       Moderation,
		OpRateDeleteOwn:    SelfOperations,
		OpCommentRead:      SelfOperations,
		OpCommentCreate:    SelfOperations,
		OpCommentUpdate:    SelfOperations,
		OpCommentDelete:    Moderation,
		OpCommentDeleteOwn: SelfOperations,
		OpTagCreate:        SelfOperations,
		OpTagDelete:        Moderation,
	}
}

// Gate применяет политику к субъекту запроса. Не выполняет ввода-вывода.
type Gate struct {
	policy Policy
	logger *slog.Logger
}

// NewGate создает шлюз. Если policy == nil, используется DefaultPolicy.
func NewGate(policy Policy, logger *slog.Logger) *Gate {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{policy: policy, logger: logger}
}

// Require возвращает domain.ErrForbidden, если роль субъекта не входит в набор операции.
// Операция без настроенного набора запрещена.
func (g *Gate) Require(op Operation, p domain.Principal) error {
	allowed := Authorize(p.Role, g.policy[op])
	metrics.RecordAccessDecision(string(op), allowed)
	if !allowed {
		g.logger.Warn("operation forbidden", "operation", op, "user_id", p.ID, "role", p.Role)
		return fmt.Errorf("%s: %w", op, domain.ErrForbidden)
	}
	return nil
}

// Allows сообщает решение по операции без логирования отказа.
// Используется для выбора ветки сценария, а не для запрета.
func (g *Gate) Allows(op Operation, p domain.Principal) bool {
	return Authorize(p.Role, g.policy[op])
}

// RequireOwnerOr пропускает операцию над собственным ресурсом по op,
// а над чужим — только по OpForeignImage.
func (g *Gate) RequireOwnerOr(op Operation, p domain.Principal, ownerIsPrincipal bool) error {
	if err := g.Require(op, p); err != nil {
		return err
	}
	if ownerIsPrincipal {
		return nil
	}
	return g.Require(OpForeignImage, p)
}
