package queue

import "time"

// Границы адаптивной задержки опроса статуса.
const (
	// MinPollDelay — нижняя граница, чтобы клиенты у головы очереди не
	// опрашивали сервер в горячем цикле.
	MinPollDelay = 2 * time.Second

	// MaxPollDelay — верхняя граница для самых дальних позиций.
	MaxPollDelay = 2 * time.Minute
)

// Число позиций, на котором задержка прирастает на одну базовую величину.
const positionScale = 10

// NextDelay — рекомендованная задержка до следующего опроса статуса.
// Чистая функция: базовая величина растёт ступенчато с общим числом
// ожидающих, итог — линейно с собственной позицией записи и зажимается в
// [MinPollDelay, MaxPollDelay]. Чем глубже очередь и дальше позиция, тем
// реже опрос — нагрузка на эндпоинт статуса ограничена сверху.
func NextDelay(position, waitingUsers int) time.Duration {
	var base time.Duration
	switch {
	case waitingUsers <= 50:
		base = 3 * time.Second
	case waitingUsers <= 500:
		base = 5 * time.Second
	case waitingUsers <= 5000:
		base = 10 * time.Second
	default:
		base = 20 * time.Second
	}

	if position < 1 {
		position = 1
	}
	delay := base * time.Duration(position) / positionScale

	if delay < MinPollDelay {
		return MinPollDelay
	}
	if delay > MaxPollDelay {
		return MaxPollDelay
	}
	return delay
}
