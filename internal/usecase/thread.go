package usecase

import (
	"github.com/GoArmGo/PhotoShare/internal/domain"
	"github.com/google/uuid"
)

// MaxThreadDepth — глубина ветки комментариев: корень и прямые ответы на него.
// Ответ на ответ не создается и не попадает в собранную ветку.
const MaxThreadDepth = 2

// commentDepth возвращает уровень комментария в ветке: 1 для корня, 2 для ответа
func commentDepth(c *domain.Comment) int {
	if c.IsReply() {
		return 2
	}
	return 1
}

// AssembleThread собирает двухуровневую ветку из плоских выборок.
// roots упорядочены по created_at по убыванию, replies — по возрастанию.
// Каждый ответ ставится непосредственно ПЕРЕД своим корнем, после более ранних
// ответов на тот же корень. Ответы, родитель которых не корень, отбрасываются.
func AssembleThread(roots, replies []domain.Comment) []domain.Comment {
	position := make(map[uuid.UUID]int, len(roots))
	for i := range roots {
		position[roots[i].ID] = i
	}

	attached := make([][]domain.Comment, len(roots))
	for _, reply := range replies {
		if reply.ParentID == nil {
			continue
		}
		i, ok := position[*reply.ParentID]
		if !ok {
			continue
		}
		attached[i] = append(attached[i], reply)
	}

	thread := make([]domain.Comment, 0, len(roots)+len(replies))
	for i, root := range roots {
		thread = append(thread, attached[i]...)
		thread = append(thread, root)
	}
	return thread
}
