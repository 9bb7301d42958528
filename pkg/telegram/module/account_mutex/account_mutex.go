// Package account_mutex не даёт двум операциям одновременно работать
// с одной сессией Telegram.
package account_mutex

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// ErrAccountBusy возвращается, если аккаунт уже занят другой операцией.
var ErrAccountBusy = errors.New("аккаунт уже используется")

var (
	globalMu     sync.Mutex
	accountLocks = make(map[int]*sync.Mutex)
	holders      = make(map[int]string)
)

// LockAccount пытается захватить мьютекс аккаунта для операции op.
// Если аккаунт уже используется, возвращается ошибка с ErrAccountBusy.
func LockAccount(accountID int, op string) error {
	globalMu.Lock()
	lock, ok := accountLocks[accountID]
	if !ok {
		lock = &sync.Mutex{}
		accountLocks[accountID] = lock
	}
	globalMu.Unlock()

	if !lock.TryLock() {
		globalMu.Lock()
		holder := holders[accountID]
		globalMu.Unlock()
		log.Printf("[MUTEX] аккаунт %d занят операцией %q, отказ для %q", accountID, holder, op)
		return fmt.Errorf("%w: %s", ErrAccountBusy, holder)
	}

	globalMu.Lock()
	holders[accountID] = op
	globalMu.Unlock()

	log.Printf("[MUTEX] аккаунт %d заблокирован для %q", accountID, op)
	return nil
}

// UnlockAccount освобождает мьютекс аккаунта.
func UnlockAccount(accountID int) {
	globalMu.Lock()
	lock := accountLocks[accountID]
	delete(holders, accountID)
	globalMu.Unlock()
	if lock != nil {
		lock.Unlock()
		log.Printf("[MUTEX] аккаунт %d разблокирован", accountID)
	}
}

// Holder возвращает название операции, занявшей аккаунт, или пустую строку.
func Holder(accountID int) string {
	globalMu.Lock()
	defer globalMu.Unlock()
	return holders[accountID]
}
