package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/flashblog/flashblog-server/internal/domain"
	"github.com/flashblog/flashblog-server/internal/store"
)

// commentColumns is the ordered list of columns selected in comment queries.
// Must match the scan order in scanComment.
const commentColumns = `id, blog_id, author_id, parent_id, content, edited, like_count,
	created_at, updated_at`

// scanComment scans a sql.Row (or sql.Rows via its Scan method) into a domain.Comment.
func scanComment(scanner interface{ Scan(dest ...any) error }) (*domain.Comment, error) {
	var c domain.Comment

	var (
		parentID  sql.NullString
		edited    int
		createdAt string
		updatedAt string
	)

	err := scanner.Scan(
		&c.ID,
		&c.BlogID,
		&c.AuthorID,
		&parentID,
		&c.Content,
		&edited,
		&c.LikeCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Edited = edited != 0
	if parentID.Valid {
		c.ParentID = &parentID.String
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &c, nil
}

// CreateComment inserts a comment and bumps the post's comment counter
// in one transaction.
func (s *Store) CreateComment(ctx context.Context, c *domain.Comment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	edited := 0
	if c.Edited {
		edited = 1
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO comments (id, blog_id, author_id, parent_id, content, edited,
			like_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		c.BlogID,
		c.AuthorID,
		nullableString(c.ParentID),
		c.Content,
		edited,
		c.LikeCount,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE blogs SET comment_count = comment_count + 1 WHERE id = ?`, c.BlogID)
	if err != nil {
		return fmt.Errorf("increment comment count: %w", err)
	}

	return tx.Commit()
}

// GetComment retrieves a comment by ID.
// Returns store.ErrNotFound if the comment does not exist.
func (s *Store) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)

	c, err := scanComment(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateComment persists changes to a comment's content and edited flag.
func (s *Store) UpdateComment(ctx context.Context, c *domain.Comment) error {
	edited := 0
	if c.Edited {
		edited = 1
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE comments
		SET content = ?, edited = ?, updated_at = ?
		WHERE id = ?`,
		c.Content,
		edited,
		formatTime(c.UpdatedAt),
		c.ID,
	)
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
	return nil
}

// DeleteCommentSubtree removes a comment and all of its descendants,
// adjusting the post's comment counter by the number of rows removed.
// Likes on the removed comments are cleaned up in the same transaction.
// Returns the number of comments deleted.
func (s *Store) DeleteCommentSubtree(ctx context.Context, id string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var blogID string
	err = tx.QueryRowContext(ctx,
		`SELECT blog_id FROM comments WHERE id = ?`, id).Scan(&blogID)
	if err == sql.ErrNoRows {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	const subtreeCTE = `
		WITH RECURSIVE subtree(id) AS (
			SELECT id FROM comments WHERE id = ?
			UNION ALL
			SELECT c.id FROM comments c JOIN subtree s ON c.parent_id = s.id
		)`

	// Count before deleting. The parent_id cascade removes descendants as
	// a side effect of the root delete, so RowsAffected undercounts.
	var deleted int
	err = tx.QueryRowContext(ctx, subtreeCTE+`
		SELECT COUNT(*) FROM subtree`, id).Scan(&deleted)
	if err != nil {
		return 0, fmt.Errorf("count subtree: %w", err)
	}

	// Likes reference comments only by ID, so the cascade won't catch them.
	_, err = tx.ExecContext(ctx, subtreeCTE+`
		DELETE FROM likes WHERE target_type = 'comment' AND target_id IN (SELECT id FROM subtree)`, id)
	if err != nil {
		return 0, fmt.Errorf("delete comment likes: %w", err)
	}

	_, err = tx.ExecContext(ctx, subtreeCTE+`
		DELETE FROM comments WHERE id IN (SELECT id FROM subtree)`, id)
	if err != nil {
		return 0, fmt.Errorf("delete comments: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE blogs SET comment_count = MAX(comment_count - ?, 0) WHERE id = ?`,
		deleted, blogID)
	if err != nil {
		return 0, fmt.Errorf("decrement comment count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return deleted, nil
}

// ListComments returns one page of top-level comments for a post, newest
// first, with their reply trees attached. Replies sort oldest first.
func (s *Store) ListComments(ctx context.Context, blogID string, params store.PaginationParams) (*store.Page[*domain.Comment], error) {
	params.Validate()

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE blog_id = ? AND parent_id IS NULL`,
		blogID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commentColumns+` FROM comments
		WHERE blog_id = ? AND parent_id IS NULL
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`,
		blogID, params.PerPage, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var roots []*domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		roots = append(roots, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(roots) > 0 {
		if err := s.attachReplies(ctx, blogID, roots); err != nil {
			return nil, err
		}
	}

	page := store.NewPage(roots, total, params)
	return &page, nil
}

// ListReplies returns one page of direct replies to a comment, oldest first.
func (s *Store) ListReplies(ctx context.Context, parentID string, params store.PaginationParams) (*store.Page[*domain.Comment], error) {
	params.Validate()

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE parent_id = ?`, parentID).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count replies: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commentColumns+` FROM comments
		WHERE parent_id = ?
		ORDER BY created_at ASC
		LIMIT ? OFFSET ?`,
		parentID, params.PerPage, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("query replies: %w", err)
	}
	defer rows.Close()

	replies := []*domain.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		replies = append(replies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	page := store.NewPage(replies, total, params)
	return &page, nil
}

// attachReplies loads every reply on the post and hangs each under its
// parent. One query for the whole post beats a query per comment.
func (s *Store) attachReplies(ctx context.Context, blogID string, roots []*domain.Comment) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commentColumns+` FROM comments
		WHERE blog_id = ? AND parent_id IS NOT NULL
		ORDER BY created_at ASC`, blogID)
	if err != nil {
		return fmt.Errorf("query replies: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*domain.Comment, len(roots))
	for _, root := range roots {
		byID[root.ID] = root
	}

	// Replies arrive in creation order, so a parent reply is always
	// registered before its children.
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return err
		}
		byID[c.ID] = c

		parent, ok := byID[*c.ParentID]
		if !ok {
			// Parent root is on another page; skip this subtree.
			continue
		}
		parent.Replies = append(parent.Replies, c)
	}
	return rows.Err()
}
