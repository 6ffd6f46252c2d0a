package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/opencontainers/go-digest"
)

const runColumns = "id, run_id, status, game_exe, exe_digest, assets, sounds, hex_edits, videos, diagnostics, error_message, started_at, finished_at"

const itemColumns = "id, run_id, category, mod, item_key, source, outcome, kind, detail, byte_offset, digest, created_at"

// BeginRun inserts a running row for runID.
func (s *Store) BeginRun(ctx context.Context, runID, gameExe string) (*Run, error) {
	if runID == "" {
		return nil, errors.New("run id required")
	}
	now := time.Now().UTC()
	_, err := s.execWithRetry(ctx,
		`INSERT INTO runs (run_id, status, game_exe, started_at) VALUES (?, ?, ?, ?)`,
		runID, RunRunning, nullableString(gameExe), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return s.GetRun(ctx, runID)
}

// FinishRun stores the final counters and status of runID.
func (s *Store) FinishRun(ctx context.Context, runID string, sum Summary) error {
	now := time.Now().UTC()
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET status = ?, exe_digest = ?, assets = ?, sounds = ?, hex_edits = ?,
            videos = ?, diagnostics = ?, error_message = ?, finished_at = ?
        WHERE run_id = ?`,
		sum.Status, nullableString(sum.ExeDigest.String()), sum.Assets, sum.Sounds, sum.HexEdits,
		sum.Videos, sum.Diagnostics, nullableString(sum.Error), now.Format(time.RFC3339Nano), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: %s not found", runID)
	}
	return nil
}

// RecordItem appends an item to its run.
func (s *Store) RecordItem(ctx context.Context, item Item) error {
	if item.RunID == "" || item.Key == "" {
		return errors.New("item requires run id and key")
	}
	if item.Outcome == "" {
		item.Outcome = OutcomeApplied
	}
	created := item.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	var offset any
	if item.Offset >= 0 {
		offset = item.Offset
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO items (run_id, category, mod, item_key, source, outcome, kind, detail, byte_offset, digest, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.RunID, item.Category, nullableString(item.Mod), item.Key, nullableString(item.Source),
		item.Outcome, nullableString(item.Kind), nullableString(item.Detail), offset,
		nullableString(item.Digest.String()), created.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetRun returns the run with the given ID, or nil when it does not exist.
func (s *Store) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+runColumns+" FROM runs WHERE run_id = ?", runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY id DESC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recent run, or nil when the ledger is empty.
func (s *Store) LatestRun(ctx context.Context) (*Run, error) {
	runs, err := s.ListRuns(ctx, 1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

// Items returns the items of runID in insertion order.
func (s *Store) Items(ctx context.Context, runID string) ([]Item, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), "SELECT "+itemColumns+" FROM items WHERE run_id = ? ORDER BY id", runID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		status      string
		gameExe     sql.NullString
		exeDigest   sql.NullString
		errorMsg    sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID, &run.RunID, &status, &gameExe, &exeDigest,
		&run.Assets, &run.Sounds, &run.HexEdits, &run.Videos, &run.Diagnostics,
		&errorMsg, &startedRaw, &finishedRaw,
	); err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	run.GameExe = gameExe.String
	run.ExeDigest = digest.Digest(exeDigest.String)
	run.Error = errorMsg.String
	run.StartedAt = parseTime(startedRaw)
	if finishedRaw.Valid {
		run.FinishedAt = parseTime(finishedRaw.String)
	}
	return &run, nil
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (Item, error) {
	var (
		item       Item
		outcome    string
		mod        sql.NullString
		source     sql.NullString
		kind       sql.NullString
		detail     sql.NullString
		offset     sql.NullInt64
		itemDigest sql.NullString
		createdRaw string
	)
	if err := scanner.Scan(
		&item.ID, &item.RunID, &item.Category, &mod, &item.Key, &source,
		&outcome, &kind, &detail, &offset, &itemDigest, &createdRaw,
	); err != nil {
		return Item{}, err
	}
	item.Outcome = Outcome(outcome)
	item.Mod = mod.String
	item.Source = source.String
	item.Kind = kind.String
	item.Detail = detail.String
	item.Offset = -1
	if offset.Valid {
		item.Offset = offset.Int64
	}
	item.Digest = digest.Digest(itemDigest.String)
	item.CreatedAt = parseTime(createdRaw)
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
