package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/ignitecall/internal/model"
)

// PostgresTimeIntervalRepo はPostgreSQLを使用した時間帯リポジトリ。
type PostgresTimeIntervalRepo struct {
	db *sql.DB
}

// NewPostgresTimeIntervalRepo はPostgresTimeIntervalRepoを生成する。
func NewPostgresTimeIntervalRepo(db *sql.DB) *PostgresTimeIntervalRepo {
	return &PostgresTimeIntervalRepo{db: db}
}

// ReplaceForUser はユーザーの既存の時間帯を削除し、渡された時間帯を挿入する。
// いずれかの挿入に失敗した場合はロールバックし、既存の時間帯が残る。
func (r *PostgresTimeIntervalRepo) ReplaceForUser(ctx context.Context, userID string, intervals []*model.WeekdayInterval) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM user_time_intervals WHERE user_id = $1`,
		userID,
	); err != nil {
		return fmt.Errorf("failed to delete time intervals: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO user_time_intervals (id, user_id, week_day, time_start_in_minutes, time_end_in_minutes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, iv := range intervals {
		if iv.UserID != userID {
			return fmt.Errorf("interval %s belongs to user %s, not %s", iv.ID, iv.UserID, userID)
		}
		if _, err := stmt.ExecContext(ctx,
			iv.ID, iv.UserID, iv.WeekDay, iv.StartTimeInMinutes, iv.EndTimeInMinutes, iv.CreatedAt,
		); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("week day %d: %w", iv.WeekDay, model.ErrDuplicate)
			}
			return fmt.Errorf("failed to insert time interval: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListByUserID はユーザーの時間帯を曜日順に返す。
func (r *PostgresTimeIntervalRepo) ListByUserID(ctx context.Context, userID string) ([]*model.WeekdayInterval, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, week_day, time_start_in_minutes, time_end_in_minutes, created_at
		 FROM user_time_intervals
		 WHERE user_id = $1
		 ORDER BY week_day`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list time intervals: %w", err)
	}
	defer rows.Close()

	var intervals []*model.WeekdayInterval
	for rows.Next() {
		iv := &model.WeekdayInterval{}
		if err := rows.Scan(&iv.ID, &iv.UserID, &iv.WeekDay, &iv.StartTimeInMinutes, &iv.EndTimeInMinutes, &iv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan time interval: %w", err)
		}
		intervals = append(intervals, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate time intervals: %w", err)
	}
	return intervals, nil
}

// compile-time interface check
var _ TimeIntervalRepository = (*PostgresTimeIntervalRepo)(nil)
