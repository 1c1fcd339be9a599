// Package jitter предоставляет экспоненциальное отступление со случайной добавкой и повтор операций
// на его основе, чтобы реплики сервиса не переподключались к хранилищу синхронно.
package jitter

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter — стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

// Duration возвращает продолжительность с применённым джиттером.
// Результат находится в диапазоне [d, d*(1+jitterFactor)].
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	randMutex.Lock()
	jitter := globalRand.Float64() * jitterFactor * float64(d)
	randMutex.Unlock()
	return d + time.Duration(jitter)
}

// ExponentialBackoff вычисляет экспоненциальное отступление с джиттером.
// attempt нумеруется с нуля, base удваивается до max.
func ExponentialBackoff(base, max time.Duration, attempt int, jitterFactor float64) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff > max {
			backoff = max
			break
		}
	}
	return Duration(backoff, jitterFactor)
}

// Backoff описывает политику повторов.
type Backoff struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
	Jitter   float64
}

// Retry вызывает fn до Attempts раз, выжидая между попытками ExponentialBackoff.
// onRetry (может быть nil) получает номер неудачной попытки, ошибку и паузу перед следующей.
// Возвращает последнюю ошибку fn либо ошибку контекста.
func Retry(ctx context.Context, b Backoff, fn func(ctx context.Context) error, onRetry func(attempt int, err error, wait time.Duration)) error {
	attempts := b.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		if attempt == attempts-1 {
			break
		}

		wait := ExponentialBackoff(b.Base, b.Max, attempt, b.Jitter)
		if onRetry != nil {
			onRetry(attempt+1, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return err
}
