package store

import (
	"context"
	"fmt"
)

// Bootstrap creates the system tables. Idempotent; runs at every startup
// before templates are loaded.
func (s *Store) Bootstrap(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, s.Dialect.SystemTablesSQL()); err != nil {
		return fmt.Errorf("bootstrap system tables: %w", err)
	}
	return nil
}
