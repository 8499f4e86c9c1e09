package storage

import (
	"errors"
	"math"
	"sync"
)

var (
	// ErrInvalidLimit indicates the provided limit is negative or not a finite number.
	ErrInvalidLimit = errors.New("limit must be a finite non-negative number")
)

const defaultLimit = 100.0

// Storage provides access to the platform limit applied when a request does not carry its own.
type Storage interface {
	GetLimit() (float64, error)
	SetLimit(limit float64) error
}

// MemoryStorage keeps the default limit in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu    sync.RWMutex
	limit float64
}

// NewMemoryStorage initialises storage with the default limit.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		limit: defaultLimit,
	}
}

// DefaultLimit returns the limit a fresh storage starts with.
func DefaultLimit() float64 {
	return defaultLimit
}

// GetLimit returns the currently configured limit.
func (s *MemoryStorage) GetLimit() (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.limit, nil
}

// SetLimit validates and stores the provided limit.
func (s *MemoryStorage) SetLimit(limit float64) error {
	if err := validateLimit(limit); err != nil {
		return err
	}

	s.mu.Lock()
	s.limit = limit
	s.mu.Unlock()

	return nil
}

func validateLimit(limit float64) error {
	if math.IsNaN(limit) || math.IsInf(limit, 0) || limit < 0 {
		return ErrInvalidLimit
	}
	return nil
}
