package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/uber/h3-go/v4"

	"sightline/pkg/db"
	"sightline/pkg/model"
)

// cellResolution is the H3 resolution runs are keyed at. Resolution 7 cells
// are a few kilometers across, which groups runs by roughly "same hilltop".
const cellResolution = 7

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CellForPosition returns the H3 cell index string for a geographic position
// at the store's keying resolution.
func CellForPosition(lat, lon float64) (string, error) {
	cell, err := h3.LatLngToCell(h3.LatLng{Lat: lat, Lng: lon}, cellResolution)
	if err != nil {
		return "", fmt.Errorf("failed to index position: %w", err)
	}
	return cell.String(), nil
}

// SaveRun persists a run. If the run has no cell key yet, one is derived
// from its position. The mask is stored gzip-compressed.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *model.Run) error {
	if run.Cell == "" {
		cell, err := CellForPosition(run.Lat, run.Lon)
		if err != nil {
			return err
		}
		run.Cell = cell
	}

	blob, err := compressMask(run.Mask)
	if err != nil {
		return fmt.Errorf("failed to encode mask: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO run
		 (id, cell, lat, lon, eye_height, azimuth_min, azimuth_max, refraction, coefficient, rows, cols, visible, mask, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Cell, run.Lat, run.Lon, run.EyeHeight,
		run.AzimuthMin, run.AzimuthMax, run.Refraction, run.Coefficient,
		run.Rows, run.Cols, run.Visible, blob, run.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
	)
	return err
}

// GetRun returns a run with its mask decoded, or nil if not found.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, cell, lat, lon, eye_height, azimuth_min, azimuth_max, refraction, coefficient, rows, cols, visible, mask, created_at
		 FROM run WHERE id = ?`, id)

	run, blob, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}

	if len(blob) > 0 {
		mask, err := decompressMask(blob)
		if err != nil {
			return nil, fmt.Errorf("failed to decode mask for run %s: %w", id, err)
		}
		run.Mask = mask
	}
	return run, nil
}

// ListRecentRuns returns the most recent runs, newest first, without masks.
func (s *SQLiteStore) ListRecentRuns(ctx context.Context, limit int) ([]*model.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, cell, lat, lon, eye_height, azimuth_min, azimuth_max, refraction, coefficient, rows, cols, visible, NULL, created_at
		 FROM run ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRuns(rows)
}

// ListRunsNear returns runs whose observer falls within the given number of
// H3 rings around the position, newest first, without masks.
func (s *SQLiteStore) ListRunsNear(ctx context.Context, lat, lon float64, rings, limit int) ([]*model.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	if rings < 0 {
		rings = 0
	}

	center, err := h3.LatLngToCell(h3.LatLng{Lat: lat, Lng: lon}, cellResolution)
	if err != nil {
		return nil, fmt.Errorf("failed to index position: %w", err)
	}
	disk, err := h3.GridDisk(center, rings)
	if err != nil {
		return nil, fmt.Errorf("failed to expand cell disk: %w", err)
	}

	placeholders := make([]string, len(disk))
	args := make([]any, 0, len(disk)+1)
	for i, c := range disk {
		placeholders[i] = "?"
		args = append(args, c.String())
	}
	args = append(args, limit)

	query := fmt.Sprintf(
		`SELECT id, cell, lat, lon, eye_height, azimuth_min, azimuth_max, refraction, coefficient, rows, cols, visible, NULL, created_at
		 FROM run WHERE cell IN (%s) ORDER BY created_at DESC, id LIMIT ?`,
		strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRuns(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*model.Run, []byte, error) {
	var r model.Run
	var blob []byte
	err := row.Scan(
		&r.ID, &r.Cell, &r.Lat, &r.Lon, &r.EyeHeight,
		&r.AzimuthMin, &r.AzimuthMax, &r.Refraction, &r.Coefficient,
		&r.Rows, &r.Cols, &r.Visible, &blob, &r.CreatedAt,
	)
	if err != nil {
		return nil, nil, err
	}
	return &r, blob, nil
}

func collectRuns(rows *sql.Rows) ([]*model.Run, error) {
	var out []*model.Run
	for rows.Next() {
		r, _, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func compressMask(mask [][]bool) ([]byte, error) {
	if mask == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(mask); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressMask(blob []byte) ([][]bool, error) {
	zr, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	var mask [][]bool
	if err := json.Unmarshal(data, &mask); err != nil {
		return nil, err
	}
	return mask, nil
}
