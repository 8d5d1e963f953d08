package counter

import (
	"context"
	"errors"
	"fmt"
)

// Backend names reported by State.Backend.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

var ErrNonExistingCounter = errors.New("counter does not exist")
var ErrLostCounter = errors.New("counter missing right after increment")

// Storage is a keyed counter store. Increment adds one to the counter and
// returns the new value; Get never creates a counter.
type Storage interface {
	Increment(ctx context.Context, key string) (int64, error)
	Get(ctx context.Context, key string) (int64, error)
}

// StoreError is returned when the networked store could not serve a command.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("redis storage %s failure (key %q): %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
