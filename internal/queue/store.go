package queue

import (
	"sync"
	"time"

	"llm_queue/internal/models"
)

// Число последних завершённых сессий, по которым считается скользящее
// среднее для оценки времени ожидания.
const avgWindow = 32

// Options — конфигурация ядра очереди. Нулевые значения заменяются
// значениями по умолчанию (см. New).
type Options struct {
	// MaxConnected — общее число слотов (total_slots). Слот считается
	// занятым записями в статусах draft и connected.
	MaxConnected int

	// MaxWaiting — предельная длина очереди ожидания. 0 — без ограничения.
	MaxWaiting int

	// DraftDuration — окно подтверждения после предложения слота.
	DraftDuration time.Duration

	// SessionDuration — длительность выданной сессии.
	SessionDuration time.Duration

	// HeartbeatTTL — порог давности heartbeat, после которого ожидающая
	// запись считается брошенной и выбывает. 0 — значение по умолчанию,
	// отрицательное значение отключает выбывание.
	HeartbeatTTL time.Duration

	// PersistPrefix — префикс пути для JSON-снапшотов состояния.
	// Пустая строка отключает персистентность.
	PersistPrefix string

	// PersistStates — глубина ротации файлов снапшотов.
	PersistStates int
}

// Store — единственный источник истины о составе очереди. Все операции
// сериализуются одним мьютексом: позиции не дублируются, promote не
// выдаёт слотов сверх MaxConnected.
type Store struct {
	mu   sync.Mutex
	opts Options

	users     map[string]*models.QueueEntry
	waiting   []*models.QueueEntry // в порядке joined_at
	draft     []*models.QueueEntry // в порядке drafted_at
	connected []*models.QueueEntry // в порядке connected_at

	// Кольцевой буфер длительностей завершённых сессий для оценки
	// времени ожидания.
	durations []time.Duration
	durIdx    int

	saveStep int
}

// New создаёт хранилище очереди и, если задан PersistPrefix, поднимает
// последнее сохранённое состояние.
func New(opts Options) *Store {
	if opts.MaxConnected <= 0 {
		opts.MaxConnected = 50
	}
	if opts.DraftDuration <= 0 {
		opts.DraftDuration = 5 * time.Minute
	}
	if opts.SessionDuration <= 0 {
		opts.SessionDuration = 20 * time.Minute
	}
	if opts.HeartbeatTTL == 0 {
		opts.HeartbeatTTL = 90 * time.Second
	}
	if opts.PersistStates <= 0 {
		opts.PersistStates = 10
	}

	s := &Store{
		opts:  opts,
		users: make(map[string]*models.QueueEntry),
	}
	if opts.PersistPrefix != "" {
		s.load()
	}
	return s
}

// Join добавляет нового участника в хвост очереди ожидания и возвращает его
// позицию (1-based). Повторный join живой записи — ErrAlreadyQueued,
// заполненная очередь ожидания — ErrCapacityExceeded.
func (s *Store) Join(userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; ok {
		return 0, ErrAlreadyQueued
	}
	if s.opts.MaxWaiting > 0 && len(s.waiting) >= s.opts.MaxWaiting {
		return 0, ErrCapacityExceeded
	}

	now := time.Now()
	entry := &models.QueueEntry{
		UserID:          userID,
		Status:          models.StatusWaiting,
		JoinedAt:        now,
		LastHeartbeatAt: now,
	}
	s.users[userID] = entry
	s.waiting = append(s.waiting, entry)
	s.save()

	return len(s.waiting), nil
}

// Leave удаляет запись в любом статусе. Для connected освобождает слот и
// учитывает фактическую длительность сессии в скользящем среднем.
func (s *Store) Leave(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}

	switch entry.Status {
	case models.StatusWaiting:
		s.waiting = removeEntry(s.waiting, entry)
	case models.StatusDraft:
		s.draft = removeEntry(s.draft, entry)
	case models.StatusConnected:
		s.connected = removeEntry(s.connected, entry)
		s.recordSession(time.Since(entry.ConnectedAt))
	}
	delete(s.users, userID)
	s.save()

	return nil
}

// Confirm переводит запись из draft в connected и выдаёт ограниченную по
// времени сессию. Возвращает длительность сессии и абсолютный дедлайн.
func (s *Store) Confirm(userID string) (time.Duration, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.users[userID]
	if !ok {
		return 0, time.Time{}, ErrNotFound
	}
	if entry.Status != models.StatusDraft {
		return 0, time.Time{}, ErrInvalidState
	}

	now := time.Now()
	entry.Status = models.StatusConnected
	entry.ConnectedAt = now
	entry.SessionExpiresAt = now.Add(s.opts.SessionDuration)
	entry.LastHeartbeatAt = now
	s.draft = removeEntry(s.draft, entry)
	s.connected = append(s.connected, entry)
	s.save()

	return s.opts.SessionDuration, entry.SessionExpiresAt, nil
}

// Heartbeat обновляет отметку живости записи.
func (s *Store) Heartbeat(userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	entry.LastHeartbeatAt = time.Now()
	return nil
}

// Status возвращает текущий статус записи. Позиция и оценка времени
// ожидания пересчитываются на момент вызова, состояние не меняется.
func (s *Store) Status(userID string) (models.QueueStatusInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.users[userID]
	if !ok {
		return models.QueueStatusInfo{}, ErrNotFound
	}

	info := models.QueueStatusInfo{
		UserID: userID,
		Status: entry.Status,
	}
	switch entry.Status {
	case models.StatusWaiting:
		info.Position = s.positionLocked(entry)
		info.EstimatedTime = s.estimateLocked(info.Position)
	case models.StatusDraft:
		deadline := entry.DraftExpiresAt
		info.DraftExpiresAt = &deadline
	case models.StatusConnected:
		deadline := entry.SessionExpiresAt
		info.SessionExpiresAt = &deadline
	}
	return info, nil
}

// Metrics возвращает агрегированные метрики очереди.
func (s *Store) Metrics() models.QueueMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.QueueMetrics{
		WaitingUsers: len(s.waiting),
		DraftUsers:   len(s.draft),
		ActiveUsers:  len(s.connected),
		TotalSlots:   s.opts.MaxConnected,
	}
}

// TimerInfo возвращает активный таймер записи: рекомендованную задержку
// опроса для waiting, остаток окна подтверждения для draft, остаток сессии
// для connected. Канал WebSocket проставляет обработчик.
func (s *Store) TimerInfo(userID string) (models.QueueTimerInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.users[userID]
	if !ok {
		return models.QueueTimerInfo{}, ErrNotFound
	}

	now := time.Now()
	switch entry.Status {
	case models.StatusDraft:
		return models.QueueTimerInfo{
			TimerType: models.TimerDraft,
			TTL:       ttlSeconds(entry.DraftExpiresAt, now),
		}, nil
	case models.StatusConnected:
		return models.QueueTimerInfo{
			TimerType: models.TimerSession,
			TTL:       ttlSeconds(entry.SessionExpiresAt, now),
		}, nil
	default:
		delay := NextDelay(s.positionLocked(entry), len(s.waiting))
		return models.QueueTimerInfo{
			TimerType: models.TimerPoll,
			TTL:       int64(delay.Seconds()),
		}, nil
	}
}

// Entries возвращает копии всех живых записей в порядке waiting, draft,
// connected — для админского листинга.
func (s *Store) Entries() []models.QueueEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.QueueEntry, 0, len(s.users))
	for _, entry := range s.waiting {
		out = append(out, *entry)
	}
	for _, entry := range s.draft {
		out = append(out, *entry)
	}
	for _, entry := range s.connected {
		out = append(out, *entry)
	}
	return out
}

// Idle — такт обслуживания очереди: выбывают просроченные draft и
// connected, выбывают брошенные waiting (давний heartbeat), затем в строгом
// FIFO ожидающие продвигаются в draft, пока draft+connected < MaxConnected.
// Возвращает события для рассылки подписчикам.
func (s *Store) Idle() []models.QueueEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var events []models.QueueEvent

	// Просроченные предложения слота: участник не подтвердил в окно.
	for len(s.draft) > 0 && !s.draft[0].DraftExpiresAt.After(now) {
		expired := s.draft[0]
		s.draft = s.draft[1:]
		delete(s.users, expired.UserID)
		events = append(events, models.QueueEvent{Type: models.EventDraftExpired, UserID: expired.UserID})
	}

	// Истёкшие сессии: слот освобождается принудительно.
	for len(s.connected) > 0 && !s.connected[0].SessionExpiresAt.After(now) {
		expired := s.connected[0]
		s.connected = s.connected[1:]
		delete(s.users, expired.UserID)
		s.recordSession(expired.SessionExpiresAt.Sub(expired.ConnectedAt))
		events = append(events, models.QueueEvent{Type: models.EventSessionExpired, UserID: expired.UserID})
	}

	// Брошенные ожидающие: heartbeat старше порога.
	if s.opts.HeartbeatTTL > 0 {
		cutoff := now.Add(-s.opts.HeartbeatTTL)
		alive := s.waiting[:0]
		for _, entry := range s.waiting {
			if entry.LastHeartbeatAt.Before(cutoff) {
				delete(s.users, entry.UserID)
				events = append(events, models.QueueEvent{Type: models.EventHeartbeatLost, UserID: entry.UserID})
				continue
			}
			alive = append(alive, entry)
		}
		s.waiting = alive
	}

	// Продвижение строго в порядке прибытия: слот не может достаться
	// записи, пока впереди остаётся ожидающий.
	for len(s.draft)+len(s.connected) < s.opts.MaxConnected && len(s.waiting) > 0 {
		next := s.waiting[0]
		s.waiting = s.waiting[1:]
		next.Status = models.StatusDraft
		next.DraftedAt = now
		next.DraftExpiresAt = now.Add(s.opts.DraftDuration)
		s.draft = append(s.draft, next)
		events = append(events, models.QueueEvent{Type: models.EventDrafted, UserID: next.UserID})
	}

	if len(events) > 0 {
		s.save()
	}
	return events
}

// positionLocked — позиция записи среди waiting (1-based). Для записей в
// других статусах возвращает 0. Вызывается под мьютексом.
func (s *Store) positionLocked(entry *models.QueueEntry) int {
	for i, e := range s.waiting {
		if e == entry {
			return i + 1
		}
	}
	return 0
}

// estimateLocked — оценка ожидания в секундах: позиция × среднюю
// длительность сессии / число слотов. Вызывается под мьютексом.
func (s *Store) estimateLocked(position int) int64 {
	if position <= 0 {
		return 0
	}
	avg := s.avgSessionLocked()
	est := time.Duration(position) * avg / time.Duration(s.opts.MaxConnected)
	return int64(est.Seconds())
}

// avgSessionLocked — скользящее среднее длительностей завершённых сессий;
// пока истории нет, используется настроенная длительность сессии.
func (s *Store) avgSessionLocked() time.Duration {
	if len(s.durations) == 0 {
		return s.opts.SessionDuration
	}
	var total time.Duration
	for _, d := range s.durations {
		total += d
	}
	return total / time.Duration(len(s.durations))
}

// recordSession учитывает завершённую сессию в кольцевом буфере.
// Вызывается под мьютексом.
func (s *Store) recordSession(d time.Duration) {
	if d < 0 {
		d = 0
	}
	if len(s.durations) < avgWindow {
		s.durations = append(s.durations, d)
		return
	}
	s.durations[s.durIdx] = d
	s.durIdx = (s.durIdx + 1) % avgWindow
}

func removeEntry(list []*models.QueueEntry, entry *models.QueueEntry) []*models.QueueEntry {
	for i, e := range list {
		if e == entry {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func ttlSeconds(deadline, now time.Time) int64 {
	remaining := deadline.Sub(now)
	if remaining < 0 {
		return 0
	}
	return int64(remaining.Seconds())
}
