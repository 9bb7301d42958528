package sending

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tg_sender/pkg/cheatsheet"
	"tg_sender/pkg/telegram/sender"

	"github.com/gin-gonic/gin"
	"github.com/gotd/td/tg"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	SetupRoutes(r.Group("/send"), nil)
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// TestEntryFor проверяет выбор текста: переопределение шаблона, параметры и правку.
func TestEntryFor(t *testing.T) {
	req := sendRequest{
		Message:  "Привет, [name]!",
		Template: "promo",
		Params:   []cheatsheet.Param{{Name: "name", Value: "Анна"}},
	}
	plain := recipient{kind: sender.KindGroup, name: "g1", peerID: -5}
	custom := recipient{kind: sender.KindTopic, name: "t1", peerID: -1000000000007, topicID: 3,
		overrides: map[string]string{"promo": "Скидка для [name]"}}

	if e := entryFor(plain, recipientRef{}, req); e.Message != "Привет, Анна!" || e.PeerID != -5 {
		t.Errorf("неверная запись: %+v", e)
	}
	if e := entryFor(custom, recipientRef{}, req); e.Message != "Скидка для Анна" || e.TopicID != 3 {
		t.Errorf("переопределение не применено: %+v", e)
	}
	edited := "Своя правка"
	if e := entryFor(custom, recipientRef{Message: &edited}, req); e.Message != edited {
		t.Errorf("правка не применена: %+v", e)
	}
}

// TestFillPeers проверяет сборку адресатов и пропуск каналов без access hash.
func TestFillPeers(t *testing.T) {
	entries := []sender.Entry{
		{Name: "chat", PeerID: -42},
		{Name: "channel", PeerID: -1000000000010},
		{Name: "unknown", PeerID: -1000000000011},
	}
	hashes := map[int64]int64{-1000000000010: 77}

	if !missingHashes(entries, hashes) {
		t.Fatalf("должен быть найден канал без access hash")
	}
	fillPeers(entries, hashes)

	if p, ok := entries[0].Peer.(*tg.InputPeerChat); !ok || p.ChatID != 42 {
		t.Errorf("неверный адресат группы: %#v", entries[0].Peer)
	}
	if p, ok := entries[1].Peer.(*tg.InputPeerChannel); !ok || p.ChannelID != 10 || p.AccessHash != 77 {
		t.Errorf("неверный адресат канала: %#v", entries[1].Peer)
	}
	if entries[2].Peer != nil {
		t.Errorf("канал без access hash не должен получить адресата")
	}
}

// TestSendValidation проверяет отказ для пустого списка получателей и отсутствующих вложений.
func TestSendValidation(t *testing.T) {
	r := newRouter()

	if w := post(r, "/send", `{"recipients":[],"message":"x"}`); w.Code != http.StatusBadRequest {
		t.Errorf("пустой список: ожидался код 400, получен %d", w.Code)
	}
	if w := post(r, "/send/preview", `{"tags":["  "],"message":"x"}`); w.Code != http.StatusBadRequest {
		t.Errorf("пустые теги: ожидался код 400, получен %d", w.Code)
	}
	if w := post(r, "/send/preview", `{"recipients":[{"kind":"user","id":1}]}`); w.Code != http.StatusBadRequest {
		t.Errorf("неверный вид получателя: ожидался код 400, получен %d", w.Code)
	}
	missing := filepath.Join(t.TempDir(), "нет.jpg")
	body := `{"recipients":[{"kind":"group","id":-1}],"attachments":["` + filepath.ToSlash(missing) + `"]}`
	if w := post(r, "/send", body); w.Code != http.StatusBadRequest {
		t.Errorf("нет вложения: ожидался код 400, получен %d", w.Code)
	}
}

// TestRefKey проверяет, что группа и тема той же группы считаются разными получателями.
func TestRefKey(t *testing.T) {
	group := recipientRef{Kind: sender.KindGroup, ID: -1000000000010}
	topic := recipientRef{Kind: sender.KindTopic, GroupID: -1000000000010, TopicID: 5}
	if group.key() == topic.key() {
		t.Fatalf("ключи группы и темы совпали: %+v", group.key())
	}
	same := recipientRef{Kind: sender.KindTopic, ID: 99, GroupID: -1000000000010, TopicID: 5}
	if same.key() != topic.key() {
		t.Errorf("ключ темы не должен зависеть от id: %+v / %+v", same.key(), topic.key())
	}
}

// TestPruneTasks проверяет, что из памяти уходят только давно завершённые задачи.
func TestPruneTasks(t *testing.T) {
	h := NewHandler(nil)
	now := time.Now()
	old := now.Add(-2 * taskTTL)
	recent := now.Add(-time.Minute)
	h.tasks["old"] = &task{status: TaskStatus{Status: statusDone, FinishedAt: &old}}
	h.tasks["recent"] = &task{status: TaskStatus{Status: statusDone, FinishedAt: &recent}}
	h.tasks["running"] = &task{status: TaskStatus{Status: statusRunning, StartedAt: old}}

	h.pruneTasks(now)

	if _, ok := h.tasks["old"]; ok {
		t.Errorf("давно завершённая задача должна быть удалена")
	}
	if len(h.tasks) != 2 {
		t.Fatalf("ожидалось 2 задачи, осталось %d", len(h.tasks))
	}
}

// TestCancelAll проверяет отмену только идущих задач.
func TestCancelAll(t *testing.T) {
	h := NewHandler(nil)
	ctxRun, cancelRun := context.WithCancel(context.Background())
	ctxDone, cancelDone := context.WithCancel(context.Background())
	defer cancelDone()
	h.tasks["a"] = &task{cancel: cancelRun, status: TaskStatus{ID: "a", Status: statusRunning}}
	h.tasks["b"] = &task{cancel: cancelDone, status: TaskStatus{ID: "b", Status: statusDone}}

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	h.CancelAll(c)

	if w.Code != http.StatusOK {
		t.Fatalf("ожидался код 200, получен %d", w.Code)
	}
	if ctxRun.Err() == nil {
		t.Errorf("идущая задача не отменена")
	}
	if ctxDone.Err() != nil {
		t.Errorf("завершённая задача не должна отменяться")
	}
}
