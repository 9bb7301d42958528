package sending

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"tg_sender/internal/common"
	"tg_sender/internal/httputil"
	"tg_sender/models"
	"tg_sender/pkg/telegram/module"
	"tg_sender/pkg/telegram/module/account_mutex"
	"tg_sender/pkg/telegram/sender"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
)

// Состояния задачи рассылки.
const (
	statusRunning   = "running"
	statusDone      = "done"
	statusCancelled = "cancelled"
	statusFailed    = "failed"
)

// TaskStatus — снимок хода рассылки.
type TaskStatus struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	Total      int        `json:"total"`
	Success    int        `json:"success"`
	Failed     int        `json:"failed"`
	Current    string     `json:"current,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Завершённая задача держится в памяти taskTTL, после этого её итог
// доступен только по журналу отправок.
const taskTTL = time.Hour

type task struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	status TaskStatus
}

func (t *task) snapshot() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *task) update(fn func(s *TaskStatus)) {
	t.mu.Lock()
	fn(&t.status)
	t.mu.Unlock()
}

// pruneTasks удаляет задачи, завершённые раньше now-taskTTL. Вызывается под h.mu.
func (h *SendHandler) pruneTasks(now time.Time) {
	for id, t := range h.tasks {
		s := t.snapshot()
		if s.FinishedAt != nil && now.Sub(*s.FinishedAt) > taskTTL {
			delete(h.tasks, id)
		}
	}
}

// Send запускает рассылку в отдельной горутине и сразу возвращает её ID.
// Пока аккаунт занят другой рассылкой, новая не запускается.
func (h *SendHandler) Send(c *gin.Context) {
	req, entries, hashes, ok := h.bindRequest(c)
	if !ok {
		return
	}
	acc, ok := common.ActiveAccount(c, h.DB)
	if !ok {
		return
	}
	if !acc.IsAuthorized {
		httputil.RespondError(c, http.StatusPreconditionFailed, "Сначала авторизуйтесь")
		return
	}

	job := sender.Job{
		ID:          uuid.NewString(),
		AccountID:   acc.ID,
		Entries:     entries,
		Attachments: req.Attachments,
		Delay:       acc.Delay(),
	}
	if err := job.Validate(); err != nil {
		httputil.RespondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := account_mutex.LockAccount(acc.ID, "send"); err != nil {
		httputil.RespondError(c, http.StatusConflict, "Идёт отправка, дождитесь завершения")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &task{
		cancel: cancel,
		status: TaskStatus{ID: job.ID, Status: statusRunning, Total: len(entries), StartedAt: time.Now()},
	}
	h.mu.Lock()
	h.pruneTasks(time.Now())
	h.tasks[job.ID] = t
	h.mu.Unlock()

	log.Printf("[SEND] Задача %s: получателей %d, задержка %v", job.ID, len(entries), job.Delay)
	go func() {
		defer account_mutex.UnlockAccount(acc.ID)
		defer cancel()
		h.run(ctx, acc, job, hashes, t)
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "запущено", "task_id": job.ID})
}

func (h *SendHandler) run(ctx context.Context, acc *models.Account, job sender.Job, hashes map[int64]int64, t *task) {
	var res sender.Result
	err := module.WithClient(ctx, acc, h.DB, func(ctx context.Context, _ *telegram.Client, api *tg.Client) error {
		h.resolvePeers(ctx, api, job.Entries, hashes)
		res = sender.Run(ctx, job, sender.NewTGMessenger(api), h.reporter(acc, job, t))
		return nil
	})

	now := time.Now()
	t.update(func(s *TaskStatus) {
		s.Current = ""
		s.FinishedAt = &now
		switch {
		case err != nil && ctx.Err() == nil:
			s.Status = statusFailed
			s.Error = err.Error()
		case res.Cancelled || ctx.Err() != nil:
			s.Status = statusCancelled
		default:
			s.Status = statusDone
		}
	})
	if err != nil {
		log.Printf("[SEND ERROR] Задача %s: %v", job.ID, err)
	}
	log.Printf("[SEND] Задача %s завершена: ✓ %d | ✗ %d", job.ID, res.Success, res.Failed)
}

// reporter пишет каждую попытку в журнал отправок и обновляет ход задачи.
func (h *SendHandler) reporter(acc *models.Account, job sender.Job, t *task) sender.Report {
	return func(ev sender.Event) {
		ctx := context.Background()
		if ev.FloodWait > 0 {
			if err := h.DB.MarkFloodWait(ctx, acc.ID, time.Now().Add(ev.FloodWait)); err != nil {
				log.Printf("[SEND WARN] Не удалось сохранить FLOOD_WAIT: %v", err)
			}
			msg := fmt.Sprintf("номер %s получил FLOOD_WAIT %v при отправке в %s", acc.Phone, ev.FloodWait, ev.Entry.Label())
			if err := h.DB.SaveSos(ctx, msg); err != nil {
				log.Printf("[SEND WARN] Ошибка записи в Sos: %v", err)
			}
			t.update(func(s *TaskStatus) { s.Current = "FLOOD_WAIT " + ev.FloodWait.String() })
			return
		}

		entry := models.SendLog{
			TaskID:    job.ID,
			AccountID: acc.ID,
			Recipient: ev.Entry.Label(),
			PeerID:    ev.Entry.PeerID,
			TopicID:   ev.Entry.TopicID,
			Status:    models.SendStatusSent,
		}
		if ev.Err != nil {
			entry.Status = models.SendStatusFailed
			entry.Error = ev.Err.Error()
		}
		if err := h.DB.SaveSendLog(ctx, entry); err != nil {
			log.Printf("[SEND WARN] Не удалось записать журнал отправки: %v", err)
		}

		t.update(func(s *TaskStatus) {
			s.Current = ev.Entry.Label()
			if ev.Err != nil {
				s.Failed++
			} else {
				s.Success++
			}
		})
	}
}

// Status возвращает ход задачи и журнал её отправок.
func (h *SendHandler) Status(c *gin.Context) {
	id := c.Param("id")
	h.mu.Lock()
	t, ok := h.tasks[id]
	h.mu.Unlock()

	logs, err := h.DB.ListSendLog(c.Request.Context(), id)
	if err != nil {
		httputil.RespondError(c, http.StatusInternalServerError, "DB error")
		return
	}
	if !ok && len(logs) == 0 {
		httputil.RespondError(c, http.StatusNotFound, "Task not found")
		return
	}

	resp := gin.H{"log": logs}
	if ok {
		resp["task"] = t.snapshot()
	}
	c.JSON(http.StatusOK, resp)
}

// CancelAll останавливает все идущие рассылки.
func (h *SendHandler) CancelAll(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cancelled := 0
	for _, t := range h.tasks {
		if t.snapshot().Status != statusRunning {
			continue
		}
		t.cancel()
		cancelled++
	}

	c.JSON(http.StatusOK, gin.H{"status": "все задачи остановлены", "cancelled": cancelled})
}
