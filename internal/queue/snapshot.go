package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"llm_queue/internal/models"
)

// snapshot — сериализуемый слепок очереди. Карта users не сохраняется:
// она восстанавливается из трёх списков при загрузке.
type snapshot struct {
	Waiting   []*models.QueueEntry `json:"waiting"`
	Draft     []*models.QueueEntry `json:"draft"`
	Connected []*models.QueueEntry `json:"connected"`
	SavedAt   time.Time            `json:"saved_at"`
}

// save пишет состояние в файл <prefix>_<N>.json, где N циклически
// пробегает PersistStates шагов. Ошибка записи не фатальна: очередь
// продолжает работать в памяти. Вызывается только под s.mu.
func (s *Store) save() {
	if s.opts.PersistPrefix == "" {
		return
	}

	snap := snapshot{
		Waiting:   s.waiting,
		Draft:     s.draft,
		Connected: s.connected,
		SavedAt:   time.Now(),
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		log.Printf("очередь: не удалось сериализовать состояние: %v", err)
		return
	}

	fn := fmt.Sprintf("%s_%d.json", s.opts.PersistPrefix, s.saveStep%s.opts.PersistStates)
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		log.Printf("очередь: не удалось сохранить состояние в %s: %v", fn, err)
		return
	}
	s.saveStep++
}

// load восстанавливает состояние из самого свежего (по mtime) файла
// снапшота. Отсутствие файлов или битый JSON — не ошибка: очередь
// стартует пустой.
func (s *Store) load() {
	fn := s.findLastSnapshot()
	if fn == "" {
		return
	}

	data, err := os.ReadFile(fn)
	if err != nil {
		log.Printf("очередь: не удалось прочитать снапшот %s: %v", fn, err)
		return
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Printf("очередь: не удалось разобрать снапшот %s: %v", fn, err)
		return
	}

	s.waiting = snap.Waiting
	s.draft = snap.Draft
	s.connected = snap.Connected
	s.users = make(map[string]*models.QueueEntry)
	for _, list := range [][]*models.QueueEntry{s.waiting, s.draft, s.connected} {
		for _, e := range list {
			s.users[e.UserID] = e
		}
	}
	log.Printf("очередь: состояние восстановлено из %s (%d записей)", fn, len(s.users))
}

// findLastSnapshot возвращает путь к самому свежему файлу снапшота
// или пустую строку, если файлов нет.
func (s *Store) findLastSnapshot() string {
	matches, err := filepath.Glob(s.opts.PersistPrefix + "_*.json")
	if err != nil || len(matches) == 0 {
		return ""
	}

	var (
		newest string
		mtime  time.Time
	)
	for _, fn := range matches {
		info, err := os.Stat(fn)
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(mtime) {
			newest = fn
			mtime = info.ModTime()
		}
	}
	return newest
}
