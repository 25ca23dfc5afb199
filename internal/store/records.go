package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lens/internal/blob"
)

const recordColumns = "id, callback_url, status, labels_json, created_at, updated_at"

// Create inserts a new blob record in the WAITING_FOR_UPLOAD state.
func (s *Store) Create(ctx context.Context, id, callbackURL string) (*blob.Record, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO blobs (id, callback_url, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		id,
		callbackURL,
		blob.StatusWaitingForUpload,
		timestamp,
		timestamp,
	); err != nil {
		return nil, fmt.Errorf("insert blob: %w", err)
	}

	return s.Get(ctx, id)
}

// Get fetches a blob record by identifier. Returns (nil, nil) when no record
// exists.
func (s *Store) Get(ctx context.Context, id string) (*blob.Record, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM blobs WHERE id = ?`, id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}
	return record, nil
}

// UpdateStatus transitions a blob to the target status with a single
// conditional write. The update is applied only when the current status is a
// legal source for the target, or already the target itself; the latter makes
// repeated invocations of the same workflow step no-ops instead of failures.
//
// Returns ErrNotFound when no record exists and ErrConflict when the current
// status does not admit the transition.
func (s *Store) UpdateStatus(ctx context.Context, id string, target blob.Status) (*blob.Record, error) {
	sources := target.TransitionSources()
	if len(sources) == 0 {
		return nil, fmt.Errorf("status %s is not a valid transition target", target)
	}

	admitted := make([]any, 0, len(sources)+3)
	admitted = append(admitted, target, time.Now().UTC().Format(time.RFC3339Nano), id)
	for _, source := range sources {
		admitted = append(admitted, source)
	}
	admitted = append(admitted, target)

	query := `UPDATE blobs SET status = ?, updated_at = ? WHERE id = ? AND status IN (` +
		makePlaceholders(len(sources)+1) + `)`
	res, err := s.execWithRetry(ctx, query, admitted...)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return s.Get(ctx, id)
	}

	// The conditional write matched nothing: either the record is missing or
	// its current status refuses the transition.
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("blob %q: %w", id, ErrNotFound)
	}
	return nil, fmt.Errorf("blob %q: %s -> %s: %w", id, current.Status, target, ErrConflict)
}

// SaveLabels stores the canonical label list for a blob. The write applies
// only while recognition is in progress and no labels have been stored yet;
// a repeated invocation with labels already present returns the record
// unchanged.
func (s *Store) SaveLabels(ctx context.Context, id string, labels []blob.Label) (*blob.Record, error) {
	if labels == nil {
		labels = []blob.Label{}
	}
	encoded, err := json.Marshal(labels)
	if err != nil {
		return nil, fmt.Errorf("marshal labels: %w", err)
	}

	res, err := s.execWithRetry(
		ctx,
		`UPDATE blobs SET labels_json = ?, updated_at = ?
         WHERE id = ? AND status = ? AND labels_json IS NULL`,
		string(encoded),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
		blob.StatusInProgress,
	)
	if err != nil {
		return nil, fmt.Errorf("save labels: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected > 0 {
		return s.Get(ctx, id)
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("blob %q: %w", id, ErrNotFound)
	}
	if current.HasLabels() {
		return current, nil
	}
	return nil, fmt.Errorf("blob %q: save labels in status %s: %w", id, current.Status, ErrConflict)
}

// List returns blob records filtered by status set (or all records when no
// status is provided), ordered by creation time.
func (s *Store) List(ctx context.Context, statuses ...blob.Status) ([]*blob.Record, error) {
	ctx = ensureContext(ctx)
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + recordColumns + ` FROM blobs`
	orderClause := ` ORDER BY created_at`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	defer rows.Close()

	var records []*blob.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Stats returns a count of blob records grouped by status.
func (s *Store) Stats(ctx context.Context) (map[blob.Status]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM blobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("blob stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[blob.Status]int)
	for rows.Next() {
		var status blob.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*blob.Record, error) {
	var (
		id          string
		callbackURL string
		statusStr   string
		labelsJSON  sql.NullString
		createdRaw  sql.NullString
		updatedRaw  sql.NullString
	)

	if err := scanner.Scan(&id, &callbackURL, &statusStr, &labelsJSON, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	record := &blob.Record{
		ID:          id,
		CallbackURL: callbackURL,
		Status:      blob.Status(statusStr),
	}
	if labelsJSON.Valid {
		var labels []blob.Label
		if err := json.Unmarshal([]byte(labelsJSON.String), &labels); err != nil {
			return nil, fmt.Errorf("decode labels for blob %q: %w", id, err)
		}
		if labels == nil {
			labels = []blob.Label{}
		}
		record.Labels = labels
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
