package domain

import "errors"

// Большинство нарушений доменных правил возвращаются как отсутствие результата (nil, nil).
// Ошибками поднимаются только запрет доступа, превышение лимита тегов и невалидный ввод.
var (
	ErrForbidden        = errors.New("operation forbidden")
	ErrCapacityExceeded = errors.New("can't exceed the maximum number of tags per image")
	ErrValidation       = errors.New("validation failed")
)
