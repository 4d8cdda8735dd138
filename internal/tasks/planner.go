package tasks

import (
	"log"

	"llm_queue/internal/handlers"

	"github.com/robfig/cron/v3"
)

// RunQueueSweep выполняет такт обслуживания очереди: выбывание просроченных
// записей, продвижение ожидающих и рассылка событий подписчикам.
func RunQueueSweep() {
	events := handlers.SweepQueue()
	if len(events) > 0 {
		log.Printf("Такт очереди: событий %d\n", len(events))
	}
}

// InitScheduler инициализирует планировщик cron-задач.
func InitScheduler() *cron.Cron {
	c := cron.New(cron.WithSeconds())

	// Такт обслуживания очереди каждые 5 секунд.
	_, err := c.AddFunc("*/5 * * * * *", RunQueueSweep)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи RunQueueSweep:", err)
	}

	// Рассылка сводки очереди в общий канал каждые 15 секунд.
	_, err = c.AddFunc("*/15 * * * * *", handlers.BroadcastMetrics)
	if err != nil {
		log.Println("Ошибка запуска cron-задачи BroadcastMetrics:", err)
	}

	c.Start()
	log.Println("Cron-планировщик запущен.")
	return c
}
