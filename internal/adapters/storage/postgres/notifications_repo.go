package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"epaws/internal/domain/notifications"
	"epaws/internal/platform/sentinel"
)

type NotificationsRepo struct {
	db *sql.DB
}

var _ notifications.Repository = (*NotificationsRepo)(nil)

func NewNotificationsRepo(db *sql.DB) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

const notificationColumns = `
	id, user_id, type, title, body,
	related_kind, related_id, read, read_at, created_at`

func (r *NotificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	var kind, relID sql.NullString
	if n.Related != nil {
		kind = sql.NullString{String: string(n.Related.Kind), Valid: true}
		relID = sql.NullString{String: n.Related.ID, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		n.ID, n.UserID, n.Type, n.Title, n.Body,
		kind, relID, n.Read, nullTime(n.ReadAt), n.CreatedAt,
	)
	return mapErr(err, "notification "+n.ID)
}

func (r *NotificationsRepo) List(ctx context.Context, userID string, f notifications.ListFilter) ([]notifications.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	args := []any{userID}
	if f.Unread != nil {
		args = append(args, !*f.Unread)
		query += fmt.Sprintf(" AND read = $%d", len(args))
	}
	if f.Type != "" {
		args = append(args, f.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]notifications.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationsRepo) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `
		SELECT count(*) FROM notifications WHERE user_id = $1 AND NOT read
	`, userID).Scan(&n)
	return n, err
}

func (r *NotificationsRepo) MarkRead(ctx context.Context, userID, id string, at time.Time) (notifications.Notification, error) {
	// COALESCE conserva el read_at original si ya estaba leída
	row := r.db.QueryRowContext(ctx, `
		UPDATE notifications
		SET read = TRUE, read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND user_id = $2
		RETURNING `+notificationColumns,
		id, userID, at,
	)
	n, err := scanNotification(row)
	if err != nil {
		return notifications.Notification{}, mapErr(err, "notification "+id)
	}
	return n, nil
}

func (r *NotificationsRepo) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET read = TRUE, read_at = $2
		WHERE user_id = $1 AND NOT read
	`, userID, at)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *NotificationsRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: notification %s", sentinel.ErrNotFound, id)
	}
	return nil
}

func (r *NotificationsRepo) DeleteRead(ctx context.Context, userID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = $1 AND read`, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *NotificationsRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE read AND created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanNotification(s rowScanner) (notifications.Notification, error) {
	var (
		n      notifications.Notification
		kind   sql.NullString
		relID  sql.NullString
		readAt sql.NullTime
	)
	if err := s.Scan(
		&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body,
		&kind, &relID, &n.Read, &readAt, &n.CreatedAt,
	); err != nil {
		return notifications.Notification{}, err
	}
	if kind.Valid {
		n.Related = &notifications.Related{Kind: notifications.RelatedKind(kind.String), ID: relID.String}
	}
	n.ReadAt = timePtr(readAt)
	return n, nil
}
