package storage

import (
	"context"
	"database/sql"

	"github.com/inkwell-app/inkwell/internal/server/records"
	"github.com/inkwell-app/inkwell/internal/server/users"
)

// InMemoryRepositoryManager backs the repositories with maps; used in tests.
type InMemoryRepositoryManager struct {
	users   users.Repository
	records records.Repository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:   users.NewInMemoryRepository(),
		records: records.NewInMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m *InMemoryRepositoryManager) Conn() *sql.DB {
	return nil
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Records() records.Repository {
	return m.records
}
