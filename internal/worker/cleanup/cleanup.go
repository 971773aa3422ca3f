// Package cleanup は期限切れデータの自動削除ジョブを提供する。
// 有効期限を過ぎたセッションと、IdP認証まで進まなかった仮登録ユーザーを
// 定期バッチで削除する。
package cleanup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultPendingUserTTL は仮登録ユーザーを保持する既定の期間。
const DefaultPendingUserTTL = 24 * time.Hour

// 削除対象のラベル
const (
	TargetSessions     = "sessions"
	TargetPendingUsers = "pending_users"
)

// Executor はSQLのExecContextを抽象化するインターフェース。
// *sql.DB や *sql.Tx を受け付けることができる。
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// DeletionRecorder は削除件数のメトリクス記録インターフェース。
type DeletionRecorder interface {
	RecordCleanupDeleted(target string, count int64)
}

// CleanupJob は期限切れセッションと放置された仮登録ユーザーの削除ジョブ。
// 何度実行しても結果が変わらない冪等な削除のみを行う。
type CleanupJob struct {
	db             Executor
	logger         *slog.Logger
	recorder       DeletionRecorder
	PendingUserTTL time.Duration // 仮登録ユーザーの保持期間（デフォルト: 24時間）
}

// NewCleanupJob は新しいCleanupJobを生成する。recorderはnilでもよい。
func NewCleanupJob(db Executor, logger *slog.Logger, recorder DeletionRecorder) *CleanupJob {
	return &CleanupJob{
		db:             db,
		logger:         logger,
		recorder:       recorder,
		PendingUserTTL: DefaultPendingUserTTL,
	}
}

// Run は期限切れセッションと保持期間を超えた仮登録ユーザーを削除する。
// 一方の削除に失敗してももう一方は実行し、エラーはまとめて返す。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	sessions, sessionErr := j.deleteExpiredSessions(ctx)
	pending, pendingErr := j.deleteStalePendingUsers(ctx)

	if err := errors.Join(sessionErr, pendingErr); err != nil {
		return err
	}

	j.logger.Info("クリーンアップジョブが完了しました",
		slog.Int64("deleted_sessions", sessions),
		slog.Int64("deleted_pending_users", pending),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return nil
}

// deleteExpiredSessions は有効期限を過ぎたセッションを削除する。
func (j *CleanupJob) deleteExpiredSessions(ctx context.Context) (int64, error) {
	return j.exec(ctx, TargetSessions,
		`DELETE FROM sessions WHERE expires < now()`,
	)
}

// deleteStalePendingUsers は確定されないままPendingUserTTLを超えた仮登録ユーザーを削除する。
// 確定済みユーザーは対象外。
func (j *CleanupJob) deleteStalePendingUsers(ctx context.Context) (int64, error) {
	interval := fmt.Sprintf("%d seconds", int64(j.PendingUserTTL/time.Second))
	return j.exec(ctx, TargetPendingUsers,
		`DELETE FROM users WHERE finalized_at IS NULL AND created_at < now() - $1::interval`,
		interval,
	)
}

func (j *CleanupJob) exec(ctx context.Context, target, query string, args ...interface{}) (int64, error) {
	result, err := j.db.ExecContext(ctx, query, args...)
	if err != nil {
		j.logger.Error("クリーンアップの実行に失敗しました",
			slog.String("target", target),
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("%sのクリーンアップに失敗: %w", target, err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		j.logger.Error("削除件数の取得に失敗しました",
			slog.String("target", target),
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("%sの削除件数の取得に失敗: %w", target, err)
	}

	if j.recorder != nil {
		j.recorder.RecordCleanupDeleted(target, deleted)
	}
	return deleted, nil
}
