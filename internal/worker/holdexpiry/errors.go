package holdexpiry

import "errors"

var (
	// ErrEncodeTask возвращается, когда не удалось сериализовать задачу
	ErrEncodeTask = errors.New("holdexpiry: failed to encode task")

	// ErrEnqueue возвращается, когда задачу не удалось поставить в очередь
	ErrEnqueue = errors.New("holdexpiry: failed to enqueue task")

	// ErrInvalidPayload возвращается для задачи с некорректными данными; такие задачи не повторяются
	ErrInvalidPayload = errors.New("holdexpiry: invalid task payload")
)
