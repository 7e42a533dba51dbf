package db

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// EnsureVideo returns the video row for path, inserting it if needed. The stored
// duration and filesize are refreshed when the new values are known.
func EnsureVideo(db *sql.DB, path string, duration float64, filesize int64) (*Video, error) {
	var v Video
	err := db.QueryRow(SelectVideoByPathSQL, path).Scan(&v.ID, &v.Path, &v.Filename, &v.Extension, &v.Duration, &v.Filesize)
	if err == nil {
		if (duration > 0 && duration != v.Duration) || (filesize > 0 && filesize != v.Filesize) {
			if duration > 0 {
				v.Duration = duration
			}
			if filesize > 0 {
				v.Filesize = filesize
			}
			if _, err := db.Exec(UpdateVideoMetadataSQL, v.Duration, v.Filesize, v.ID); err != nil {
				return nil, fmt.Errorf("update video metadata: %w", err)
			}
		}
		return &v, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("select video by path: %w", err)
	}

	base := filepath.Base(path)
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	result, err := db.Exec(InsertVideoSQL, path, base, ext, duration, filesize)
	if err != nil {
		return nil, fmt.Errorf("insert video: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get video id: %w", err)
	}
	return &Video{ID: id, Path: path, Filename: base, Extension: ext, Duration: duration, Filesize: filesize}, nil
}

// InsertExport records a pending export of [start, end] for videoID and returns its ID.
func InsertExport(db *sql.DB, videoID int64, start, end float64) (int64, error) {
	result, err := db.Exec(InsertExportSQL, videoID, start, end)
	if err != nil {
		return 0, fmt.Errorf("insert export: %w", err)
	}
	return result.LastInsertId()
}

// MarkExportProcessing moves an export to processing with the given start time.
func MarkExportProcessing(db *sql.DB, exportID int64, startedAt time.Time) error {
	_, err := db.Exec(MarkExportProcessingSQL, startedAt, exportID)
	if err != nil {
		return fmt.Errorf("mark export processing: %w", err)
	}
	return nil
}

// MarkExportComplete moves an export to complete, recording the output file.
func MarkExportComplete(db *sql.DB, exportID int64, finishedAt time.Time, outputPath string, filesize int64) error {
	_, err := db.Exec(MarkExportCompleteSQL, finishedAt, outputPath, filesize, exportID)
	if err != nil {
		return fmt.Errorf("mark export complete: %w", err)
	}
	return nil
}

// MarkExportError moves an export to error with the given log message.
func MarkExportError(db *sql.DB, exportID int64, errorAt time.Time, logMsg string) error {
	_, err := db.Exec(MarkExportErrorSQL, errorAt, logMsg, exportID)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	return nil
}

// SelectExport returns one export by ID, or nil when it does not exist.
func SelectExport(db *sql.DB, exportID int64) (*Export, error) {
	e, err := scanExport(db.QueryRow(SelectExportByIDSQL, exportID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select export: %w", err)
	}
	return e, nil
}

// SelectExports returns the exports of one video, newest first.
func SelectExports(db *sql.DB, videoPath string) ([]Export, error) {
	rows, err := db.Query(SelectExportsByVideoSQL, videoPath)
	if err != nil {
		return nil, fmt.Errorf("select exports: %w", err)
	}
	return collectExports(rows)
}

// SelectRecentExports returns up to limit exports across all videos, newest first.
func SelectRecentExports(db *sql.DB, limit int) ([]Export, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(SelectRecentExportsSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("select recent exports: %w", err)
	}
	return collectExports(rows)
}

func collectExports(rows *sql.Rows) ([]Export, error) {
	defer rows.Close()
	var exports []Export
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		exports = append(exports, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exports: %w", err)
	}
	return exports, nil
}

func scanExport(row rowScanner) (*Export, error) {
	var e Export
	var startedAt, finishedAt, errorAt, createdAt sql.NullTime
	err := row.Scan(&e.ID, &e.VideoID, &e.VideoPath, &e.Start, &e.End, &e.OutputPath, &e.Status,
		&startedAt, &finishedAt, &errorAt, &e.Filesize, &e.Log, &createdAt)
	if err != nil {
		return nil, err
	}
	e.StartedAt = nullTimePtr(startedAt)
	e.FinishedAt = nullTimePtr(finishedAt)
	e.ErrorAt = nullTimePtr(errorAt)
	if createdAt.Valid {
		e.CreatedAt = createdAt.Time
	}
	return &e, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
