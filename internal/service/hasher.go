package service

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultBcryptCost is the work factor for new password hashes.
const DefaultBcryptCost = 13

// ErrPasswordTooLong is returned by Hash for passwords over 72 bytes.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	// Hash returns a salted bcrypt hash of password.
	Hash(ctx context.Context, password string) (string, error)
	// Verify reports whether password matches hash. Malformed hashes never match.
	Verify(ctx context.Context, password, hash string) bool
}

type bcryptHasher struct {
	cost    int
	workers *semaphore.Weighted
}

// NewBcryptHasher creates a PasswordHasher that runs at most workers bcrypt
// computations at once. workers <= 0 means GOMAXPROCS.
func NewBcryptHasher(cost, workers int) (PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &bcryptHasher{
		cost:    cost,
		workers: semaphore.NewWeighted(int64(workers)),
	}, nil
}

func (h *bcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.workers.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("failed to acquire hash worker: %w", err)
	}
	defer h.workers.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (h *bcryptHasher) Verify(ctx context.Context, password, hash string) bool {
	if err := h.workers.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.workers.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
