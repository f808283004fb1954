package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/flashblog/flashblog-server/internal/domain"
	"github.com/flashblog/flashblog-server/internal/store"
)

// likeCountTable maps a like target to the table carrying its counter.
func likeCountTable(target domain.LikeTarget) (string, error) {
	switch target {
	case domain.LikeTargetBlog:
		return "blogs", nil
	case domain.LikeTargetComment:
		return "comments", nil
	default:
		return "", fmt.Errorf("unknown like target: %s", target)
	}
}

// CreateLike records a like and bumps the target's counter in one transaction.
// Returns store.ErrAlreadyExists if the user already liked this target.
func (s *Store) CreateLike(ctx context.Context, l *domain.Like) error {
	table, err := likeCountTable(l.TargetType)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO likes (id, user_id, target_type, target_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		l.ID,
		l.UserID,
		string(l.TargetType),
		l.TargetID,
		formatTime(l.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE `+table+` SET like_count = like_count + 1 WHERE id = ?`, l.TargetID)
	if err != nil {
		return fmt.Errorf("increment like count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Target vanished; don't record an orphan like.
		return store.ErrNotFound
	}

	return tx.Commit()
}

// DeleteLike removes a like and lowers the target's counter in one transaction.
// Returns store.ErrNotFound if the user had not liked this target.
func (s *Store) DeleteLike(ctx context.Context, userID string, targetType domain.LikeTarget, targetID string) error {
	table, err := likeCountTable(targetType)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM likes WHERE user_id = ? AND target_type = ? AND target_id = ?`,
		userID, string(targetType), targetID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE `+table+` SET like_count = MAX(like_count - 1, 0) WHERE id = ?`, targetID)
	if err != nil {
		return fmt.Errorf("decrement like count: %w", err)
	}

	return tx.Commit()
}

// HasLiked reports whether the user has liked the given target.
func (s *Store) HasLiked(ctx context.Context, userID string, targetType domain.LikeTarget, targetID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM likes WHERE user_id = ? AND target_type = ? AND target_id = ?`,
		userID, string(targetType), targetID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
