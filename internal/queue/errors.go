package queue

import "errors"

// Семантические ошибки очереди. Обработчики транслируют их в HTTP-коды,
// клиент сверяет через errors.Is.
var (
	// ErrAlreadyQueued — у пользователя уже есть живая запись в очереди.
	ErrAlreadyQueued = errors.New("пользователь уже состоит в очереди")

	// ErrNotFound — записи с таким user_id нет.
	ErrNotFound = errors.New("запись в очереди не найдена")

	// ErrInvalidState — операция недопустима в текущем статусе записи
	// (например, confirm для записи не в статусе draft).
	ErrInvalidState = errors.New("недопустимый статус записи для операции")

	// ErrCapacityExceeded — очередь ожидания заполнена до предела.
	ErrCapacityExceeded = errors.New("очередь заполнена, попробуйте позже")
)
