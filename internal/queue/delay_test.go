package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextDelayGrowsWithDepth(t *testing.T) {
	// Чем дальше позиция и глубже очередь, тем реже опрос.
	near := NextDelay(10, 50)
	deep := NextDelay(10, 10000)
	far := NextDelay(9000, 10000)

	assert.Greater(t, deep, near, "Глубокая очередь должна опрашиваться реже")
	assert.Greater(t, far, deep, "Дальняя позиция должна опрашиваться реже")
}

func TestNextDelayBounds(t *testing.T) {
	// У головы очереди срабатывает нижняя граница.
	assert.Equal(t, MinPollDelay, NextDelay(1, 1))
	assert.Equal(t, MinPollDelay, NextDelay(0, 0), "Некорректные аргументы не должны давать задержку ниже пола")

	// Хвост гигантской очереди упирается в потолок.
	assert.Equal(t, MaxPollDelay, NextDelay(100000, 100000))

	for pos := 1; pos <= 2000; pos += 37 {
		d := NextDelay(pos, 2000)
		assert.GreaterOrEqual(t, d, MinPollDelay)
		assert.LessOrEqual(t, d, MaxPollDelay)
	}
}

func TestNextDelayMonotonic(t *testing.T) {
	// Монотонность по позиции при фиксированной глубине.
	prev := time.Duration(0)
	for pos := 1; pos <= 600; pos += 13 {
		d := NextDelay(pos, 600)
		assert.GreaterOrEqual(t, d, prev, "Задержка не должна убывать с ростом позиции")
		prev = d
	}

	// Монотонность по глубине при фиксированной позиции.
	prev = 0
	for _, waiting := range []int{1, 50, 51, 500, 501, 5000, 5001, 20000} {
		d := NextDelay(30, waiting)
		assert.GreaterOrEqual(t, d, prev, "Задержка не должна убывать с ростом очереди")
		prev = d
	}
}
