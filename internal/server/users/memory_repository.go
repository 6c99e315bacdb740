package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-app/inkwell/internal/common"
)

// InMemoryRepository is a map-backed Repository used in tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byHash  map[string]*User
	devices map[string]*Device
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byHash:  make(map[string]*User),
		devices: make(map[string]*Device),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := *user
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	r.byHash[u.UserHash] = &u

	out := u
	return &out, nil
}

func (r *InMemoryRepository) GetByUserHash(ctx context.Context, userHash string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byHash[userHash]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (r *InMemoryRepository) UpdateLockState(ctx context.Context, userID string, failedAttempts int, lockedUntil time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byHash {
		if u.ID == userID {
			u.FailedAttempts = failedAttempts
			u.LockedUntil = lockedUntil
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *InMemoryRepository) TouchDevice(ctx context.Context, device *Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := *device
	r.devices[d.ID] = &d
	return nil
}

// DeviceByID returns a stored device for test assertions.
func (r *InMemoryRepository) DeviceByID(id string) (*Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[id]
	if !ok {
		return nil, false
	}
	out := *d
	return &out, true
}
