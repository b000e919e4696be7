package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSlot       = errors.New("выбранное время не входит в расписание врача")
	ErrPastDate          = errors.New("нельзя записаться на прошедшую дату")
	ErrSlotConflict      = errors.New("выбранный слот времени уже занят, обновите список слотов")
	ErrAlreadyPast       = errors.New("время приема уже прошло")
	ErrUpstreamFailure   = errors.New("ошибка хранилища данных")
	ErrNotFound          = errors.New("запись не найдена")
	ErrInvalidTransition = errors.New("недопустимая смена статуса")
	ErrForbidden         = errors.New("доступ запрещен")
	ErrInvalidInput      = errors.New("неверные входные данные")
	ErrStorageDisabled   = errors.New("файловое хранилище не настроено")
)

// Upstream marks err as a data-access failure while keeping its message and
// chain intact for diagnostics.
func Upstream(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrUpstreamFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUpstreamFailure, err)
}
