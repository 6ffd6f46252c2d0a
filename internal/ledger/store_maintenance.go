package ledger

import (
	"context"
	"fmt"
)

// Stats returns a count of runs grouped by status.
func (s *Store) Stats(ctx context.Context) (map[RunStatus]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM runs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("ledger stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[RunStatus]int)
	for rows.Next() {
		var status RunStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// MarkInterrupted flags runs still marked running as failed. It is called
// once the install lock is held, so no live run can be affected.
func (s *Store) MarkInterrupted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, error_message = 'interrupted' WHERE status = ?`,
		RunFailed, RunRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("mark interrupted runs: %w", err)
	}
	return res.RowsAffected()
}

// Prune removes all but the newest keep runs together with their items.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	const stale = `SELECT run_id FROM runs ORDER BY id DESC LIMIT -1 OFFSET ?`
	if _, err := s.execWithRetry(ctx, `DELETE FROM items WHERE run_id IN (`+stale+`)`, keep); err != nil {
		return 0, fmt.Errorf("prune items: %w", err)
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM runs WHERE run_id IN (`+stale+`)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}
