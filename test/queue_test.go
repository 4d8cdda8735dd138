package test

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"llm_queue/internal/handlers"
	"llm_queue/internal/queue"
	"llm_queue/internal/tasks"
	"llm_queue/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

// Хаб — синглтон пакета ws: второй цикл Run устроил бы гонку за картой клиентов.
var hubOnce sync.Once

func startHub() {
	hubOnce.Do(func() { go ws.HubInstance.Run() })
}

func setupTestServer() *httptest.Server {
	// БД и Redis тесту не нужны, поэтому .env не обязателен.
	_ = godotenv.Load("../.env")

	// Один слот обслуживания: порядок продвижения виден сразу.
	handlers.Queue = queue.New(queue.Options{
		MaxConnected:    1,
		MaxWaiting:      10,
		DraftDuration:   time.Minute,
		SessionDuration: 20 * time.Minute,
		HeartbeatTTL:    -1,
	})

	startHub()

	r := gin.Default()

	queueGroup := r.Group("/queue")
	{
		queueGroup.POST("/join", handlers.JoinQueueHandler)
		queueGroup.POST("/leave", handlers.LeaveQueueHandler)
		queueGroup.POST("/confirm", handlers.ConfirmQueueHandler)
		queueGroup.POST("/heartbeat", handlers.HeartbeatQueueHandler)
		queueGroup.POST("/idle", handlers.IdleQueueHandler)
		queueGroup.GET("/status/:user_id", handlers.GetQueueStatusHandler)
		queueGroup.GET("/metrics", handlers.GetQueueMetricsHandler)
		queueGroup.GET("/timers/:user_id", handlers.GetQueueTimersHandler)
		queueGroup.GET("/ws/:channel", ws.QueueWebSocketHandler)
	}

	return httptest.NewServer(r)
}

func postJSON(t *testing.T, url string, body map[string]string) (*http.Response, map[string]interface{}) {
	data, err := json.Marshal(body)
	assert.NoError(t, err, "Ошибка сериализации тела запроса")

	res, err := http.Post(url, "application/json", bytes.NewReader(data))
	assert.NoError(t, err, "Ошибка запроса "+url)

	var decoded map[string]interface{}
	json.NewDecoder(res.Body).Decode(&decoded)
	res.Body.Close()
	return res, decoded
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]interface{}) {
	res, err := http.Get(url)
	assert.NoError(t, err, "Ошибка запроса "+url)

	var decoded map[string]interface{}
	json.NewDecoder(res.Body).Decode(&decoded)
	res.Body.Close()
	return res, decoded
}

func TestQueueFlow(t *testing.T) {
	// Настройка сервера
	ts := setupTestServer()
	defer ts.Close()

	// 1. Иван вступает в очередь: позиция 1, и такт обслуживания сразу
	// выдаёт ему предложение слота.
	log.Println("Отправка запроса join для Ивана")
	res, body := postJSON(t, ts.URL+"/queue/join", map[string]string{"user_id": "ivan"})
	assert.Equal(t, http.StatusOK, res.StatusCode, "Иван не смог вступить в очередь")
	assert.Equal(t, "ivan", body["user_id"], "Сервер вернул чужой идентификатор")
	assert.Equal(t, float64(1), body["position"], "Неверная позиция Ивана при вступлении")

	// 2. Пётр вступает следом. Иван уже выведен из ожидания, поэтому Пётр
	// тоже получает позицию 1, но остаётся ждать: единственный слот занят.
	log.Println("Отправка запроса join для Петра")
	res, body = postJSON(t, ts.URL+"/queue/join", map[string]string{"user_id": "petr"})
	assert.Equal(t, http.StatusOK, res.StatusCode, "Пётр не смог вступить в очередь")
	assert.Equal(t, float64(1), body["position"], "Неверная позиция Петра при вступлении")

	// 3. Повторное вступление отклоняется.
	res, body = postJSON(t, ts.URL+"/queue/join", map[string]string{"user_id": "ivan"})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, "Повторный join должен вернуть 400")
	assert.Equal(t, "ALREADY_QUEUED", body["code"], "Неверный код ошибки повторного входа")
	assert.NotEmpty(t, body["detail"], "Ответ об ошибке без пояснения")

	// 4. Статусы: Иван в драфте, Пётр ждёт на позиции 1.
	res, body = getJSON(t, ts.URL+"/queue/status/ivan")
	assert.Equal(t, http.StatusOK, res.StatusCode, "Ошибка получения статуса Ивана")
	assert.Equal(t, "draft", body["status"], "Иван должен быть в драфте")
	assert.NotEmpty(t, body["draft_expires_at"], "У драфта нет дедлайна подтверждения")

	res, body = getJSON(t, ts.URL+"/queue/status/petr")
	assert.Equal(t, http.StatusOK, res.StatusCode, "Ошибка получения статуса Петра")
	assert.Equal(t, "waiting", body["status"], "Пётр должен ждать")
	assert.Equal(t, float64(1), body["position"], "Неверная позиция Петра")
	assert.Greater(t, body["estimated_time"], float64(0), "Оценка ожидания должна быть положительной")

	// 5. Метрики согласованы со статусами.
	res, body = getJSON(t, ts.URL+"/queue/metrics")
	assert.Equal(t, http.StatusOK, res.StatusCode, "Ошибка получения метрик")
	assert.Equal(t, float64(1), body["waiting_users"], "Неверное число ожидающих")
	assert.Equal(t, float64(1), body["draft_users"], "Неверное число драфтов")
	assert.Equal(t, float64(0), body["active_users"], "Активных сессий ещё нет")
	assert.Equal(t, float64(1), body["total_slots"], "Неверное число слотов")

	// 6. Таймер Петра: рекомендация по опросу и персональный канал.
	res, body = getJSON(t, ts.URL+"/queue/timers/petr")
	assert.Equal(t, http.StatusOK, res.StatusCode, "Ошибка получения таймера Петра")
	assert.Equal(t, "poll", body["timer_type"], "Для ожидающего действует таймер опроса")
	assert.GreaterOrEqual(t, body["ttl"], float64(2), "Задержка опроса не может опускаться ниже пола")
	assert.Equal(t, "user:petr", body["channel"], "Неверный персональный канал")

	// 7. Подписываемся на общий канал очереди по WebSocket.
	wsURL := "ws" + ts.URL[4:] + "/queue/ws/queue"
	dialer := websocket.Dialer{}
	wsConn, _, err := dialer.Dial(wsURL, nil)
	assert.NoError(t, err, "Ошибка подключения к WS")
	defer wsConn.Close()
	// Даём хабу зарегистрировать подписчика.
	time.Sleep(100 * time.Millisecond)

	// 8. Иван подтверждает слот и получает сессию с токеном.
	log.Println("Отправка запроса confirm для Ивана")
	res, body = postJSON(t, ts.URL+"/queue/confirm", map[string]string{"user_id": "ivan"})
	assert.Equal(t, http.StatusOK, res.StatusCode, "Иван не смог подтвердить слот")
	assert.Equal(t, "connected", body["status"], "После подтверждения статус должен быть connected")
	assert.Equal(t, float64(1200), body["session_duration"], "Неверная длительность сессии")
	assert.NotEmpty(t, body["session_expires_at"], "Сессия без абсолютного дедлайна")
	assert.NotEmpty(t, body["token"], "Сессия без токена")

	// Пока слот занят, такт обслуживания Петра не продвигает.
	res, body = postJSON(t, ts.URL+"/queue/idle", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode, "Ошибка запроса idle")
	res, body = getJSON(t, ts.URL+"/queue/status/petr")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "waiting", body["status"], "Пётр не должен продвигаться, пока слот занят")

	// 9. Иван выходит, такт обслуживания выдаёт слот Петру.
	log.Println("Отправка запроса leave для Ивана")
	res, body = postJSON(t, ts.URL+"/queue/leave", map[string]string{"user_id": "ivan"})
	assert.Equal(t, http.StatusOK, res.StatusCode, "Иван не смог выйти из очереди")
	assert.Equal(t, true, body["success"], "Выход не подтверждён")

	tasks.RunQueueSweep()

	res, body = getJSON(t, ts.URL+"/queue/status/petr")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "draft", body["status"], "После освобождения слота Пётр должен получить драфт")

	// 10. WS: подписчик общего канала видит выход Ивана и драфт Петра.
	wsConn.SetReadDeadline(time.Now().Add(3 * time.Second))

	_, wsMessage, err := wsConn.ReadMessage()
	assert.NoError(t, err, "Ошибка чтения WS сообщения (user_left)")
	var wsMsg map[string]interface{}
	err = json.Unmarshal(wsMessage, &wsMsg)
	assert.NoError(t, err, "Ошибка разбора WS сообщения (user_left)")
	log.Println("Получено WS сообщение:", wsMsg)
	assert.Equal(t, "user_left", wsMsg["event_type"], "Первым должно прийти событие выхода")

	_, wsMessage, err = wsConn.ReadMessage()
	assert.NoError(t, err, "Ошибка чтения WS сообщения (drafted)")
	err = json.Unmarshal(wsMessage, &wsMsg)
	assert.NoError(t, err, "Ошибка разбора WS сообщения (drafted)")
	log.Println("Получено WS сообщение:", wsMsg)
	assert.Equal(t, "drafted", wsMsg["event_type"], "После освобождения слота должно прийти событие drafted")
	eventData, ok := wsMsg["data"].(map[string]interface{})
	assert.True(t, ok, "WS сообщение без полезной нагрузки")
	assert.Equal(t, "petr", eventData["user_id"], "Событие drafted адресовано не тому участнику")

	// 11. Статус постороннего — 404 с машинным кодом.
	res, body = getJSON(t, ts.URL+"/queue/status/ghost")
	assert.Equal(t, http.StatusNotFound, res.StatusCode, "Статус постороннего должен давать 404")
	assert.Equal(t, "NOT_FOUND", body["code"], "Неверный код ошибки")
}
