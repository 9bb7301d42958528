package sender

import (
	"context"
	"errors"
	"log"
	"time"

	"tg_sender/internal/common"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

// Messenger доставляет одно сообщение получателю.
// topicID > 0 означает отправку в тему форума.
type Messenger interface {
	SendText(ctx context.Context, peer tg.InputPeerClass, topicID int, text string) error
	SendMedia(ctx context.Context, peer tg.InputPeerClass, topicID int, paths []string, caption string) error
}

// Event описывает итог одной попытки или ожидание FLOOD_WAIT.
type Event struct {
	Index     int
	Entry     Entry
	Err       error
	FloodWait time.Duration
}

// Report получает события рассылки. Может быть nil.
type Report func(Event)

// Result содержит итог рассылки.
type Result struct {
	Total     int  `json:"total"`
	Success   int  `json:"success"`
	Failed    int  `json:"failed"`
	Cancelled bool `json:"cancelled"`
}

// wait подменяется в тестах.
var wait = common.WaitWithCancellation

// Run последовательно отправляет сообщения задачи. Ошибка отдельного получателя
// не останавливает рассылку. После успешной отправки, если впереди есть ещё
// получатели, выдерживается job.Delay. Отмена ctx прекращает работу.
func Run(ctx context.Context, job Job, m Messenger, report Report) Result {
	res := Result{Total: len(job.Entries)}
	emit := func(ev Event) {
		if report != nil {
			report(ev)
		}
	}

	for i, e := range job.Entries {
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}

		err := deliver(ctx, job, m, e)
		if d, ok := tgerr.AsFloodWait(err); ok {
			log.Printf("[SEND WARN] FLOOD_WAIT %v для %s, повтор после ожидания", d, e.Label())
			emit(Event{Index: i, Entry: e, FloodWait: d})
			if werr := wait(ctx, d); werr != nil {
				res.Cancelled = true
				break
			}
			err = deliver(ctx, job, m, e)
		}

		if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			res.Cancelled = true
			break
		}
		emit(Event{Index: i, Entry: e, Err: err})
		if err != nil {
			log.Printf("[SEND ERROR] %s: %v", e.Label(), err)
			res.Failed++
			continue
		}
		log.Printf("[SEND] Отправлено: %s", e.Label())
		res.Success++

		if i < len(job.Entries)-1 && job.Delay > 0 {
			if werr := wait(ctx, job.Delay); werr != nil {
				res.Cancelled = true
				break
			}
		}
	}

	log.Printf("[SEND] Итого: отправлено %d, ошибок %d, отменено: %v", res.Success, res.Failed, res.Cancelled)
	return res
}

func deliver(ctx context.Context, job Job, m Messenger, e Entry) error {
	if e.Peer == nil {
		return ErrPeerUnknown
	}
	if len(job.Attachments) > 0 {
		return m.SendMedia(ctx, e.Peer, e.TopicID, job.Attachments, e.Message)
	}
	return m.SendText(ctx, e.Peer, e.TopicID, e.Message)
}
