package common

import (
	"context"
	"time"
)

// Шаг проверки отмены контекста.
const waitStep = 5 * time.Second

// WaitWithCancellation ждёт delay, проверяя контекст на отмену на каждом шаге.
// Нулевая или отрицательная задержка возвращает управление сразу.
func WaitWithCancellation(ctx context.Context, delay time.Duration) error {
	for remaining := delay; remaining > 0; {
		step := waitStep
		if remaining < step {
			step = remaining
		}
		timer := time.NewTimer(step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		remaining -= step
	}
	return ctx.Err()
}
