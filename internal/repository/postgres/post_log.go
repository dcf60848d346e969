package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pulsesocial/pulse/internal/domain/account"
	"github.com/pulsesocial/pulse/internal/domain/post"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
)

// PostLogRepository implements post.Repository
type PostLogRepository struct {
	db *sql.DB
}

// NewPostLogRepository creates a new post log repository
func NewPostLogRepository(db *sql.DB) *PostLogRepository {
	return &PostLogRepository{db: db}
}

// RecordSubmission inserts the log and charges posts_used in one transaction
func (r *PostLogRepository) RecordSubmission(ctx context.Context, l *post.Log) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}

	platforms, err := encodeList(l.Platforms)
	if err != nil {
		return errors.Internal("Failed to encode platforms", err)
	}
	media := l.MediaURLs
	if media == nil {
		media = []string{}
	}
	mediaURLs, err := encodeList(media)
	if err != nil {
		return errors.Internal("Failed to encode media", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("Failed to begin transaction", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO post_logs (
			account_id, content, platforms, external_post_id, status,
			scheduled_at, published_at, media_urls, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, l.AccountID, l.Content, platforms, l.ExternalPostID, string(l.Status),
		nullUnix(l.ScheduledAt), nullUnix(l.PublishedAt), mediaURLs, l.CreatedAt.Unix(),
	).Scan(&l.ID)
	if err != nil {
		return errors.DatabaseError("Failed to write post log", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE accounts SET posts_used = posts_used + $1, updated_at = $2 WHERE id = $3
	`, l.Cost(), time.Now().Unix(), l.AccountID)
	if err != nil {
		return errors.DatabaseError("Failed to charge post usage", err)
	}
	rows, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if rows != 1 {
		return errors.DatabaseError("Failed to charge post usage",
			fmt.Errorf("account %d: %d rows updated", l.AccountID, rows))
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("Failed to commit post submission", err)
	}
	return nil
}

// ListByAccount lists logs newest first
func (r *PostLogRepository) ListByAccount(ctx context.Context, accountID int64, limit, offset int) ([]*post.Log, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM post_logs WHERE account_id = $1", accountID,
	).Scan(&total)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to count post logs", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, account_id, content, platforms, external_post_id, status,
			scheduled_at, published_at, media_urls, created_at
		FROM post_logs
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, accountID, limit, offset)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list post logs", err)
	}
	defer rows.Close()

	logs := make([]*post.Log, 0)
	for rows.Next() {
		var (
			l                        post.Log
			platforms, media, status string
			scheduledAt, publishedAt sql.NullInt64
			createdAt                int64
		)
		if err := rows.Scan(&l.ID, &l.AccountID, &l.Content, &platforms, &l.ExternalPostID, &status,
			&scheduledAt, &publishedAt, &media, &createdAt); err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan post log", err)
		}

		var names []account.Platform
		if err := decodeList(platforms, &names); err != nil {
			return nil, 0, errors.DatabaseError("Failed to decode platforms", err)
		}
		if err := decodeList(media, &l.MediaURLs); err != nil {
			return nil, 0, errors.DatabaseError("Failed to decode media", err)
		}
		l.Platforms = names
		l.Status = post.Status(status)
		l.ScheduledAt = timePtr(scheduledAt)
		l.PublishedAt = timePtr(publishedAt)
		l.CreatedAt = time.Unix(createdAt, 0).UTC()

		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to iterate post logs", err)
	}

	return logs, total, nil
}

// CountSince counts logs created at or after since
func (r *PostLogRepository) CountSince(ctx context.Context, accountID int64, since time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM post_logs WHERE account_id = $1 AND created_at >= $2",
		accountID, since.Unix(),
	).Scan(&n)
	if err != nil {
		return 0, errors.DatabaseError("Failed to count post logs", err)
	}
	return n, nil
}

var _ post.Repository = (*PostLogRepository)(nil)
