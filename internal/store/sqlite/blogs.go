package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/flashblog/flashblog-server/internal/domain"
	"github.com/flashblog/flashblog-server/internal/store"
)

// blogColumns is the ordered list of columns selected in blog queries.
// Must match the scan order in scanBlog.
const blogColumns = `id, title, content, slug, author_id, published, published_at,
	view_count, like_count, comment_count, created_at, updated_at`

// scanBlog scans a sql.Row (or sql.Rows via its Scan method) into a domain.Blog.
// Tags are left empty; the caller loads them separately.
func scanBlog(scanner interface{ Scan(dest ...any) error }) (*domain.Blog, error) {
	var b domain.Blog

	var (
		published   int
		publishedAt sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&b.ID,
		&b.Title,
		&b.Content,
		&b.Slug,
		&b.AuthorID,
		&published,
		&publishedAt,
		&b.ViewCount,
		&b.LikeCount,
		&b.CommentCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Published = published != 0

	b.PublishedAt, err = parseNullableTime(publishedAt)
	if err != nil {
		return nil, err
	}
	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// CreateBlog inserts a new post and attaches its tags in one transaction,
// so a failed tag write never commits a half-tagged post.
// Returns store.ErrAlreadyExists on duplicate slug.
func (s *Store) CreateBlog(ctx context.Context, b *domain.Blog, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	published := 0
	if b.Published {
		published = 1
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO blogs (id, title, content, slug, author_id, published, published_at,
			view_count, like_count, comment_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.Title,
		b.Content,
		b.Slug,
		b.AuthorID,
		published,
		nullTimeString(b.PublishedAt),
		b.ViewCount,
		b.LikeCount,
		b.CommentCount,
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	if tagIDs != nil {
		if err := replaceBlogTags(ctx, tx, b.ID, tagIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.syncBlogIndex(ctx, b)
	return nil
}

// GetBlog retrieves a post by ID with its tags loaded.
// Returns store.ErrNotFound if the post does not exist.
func (s *Store) GetBlog(ctx context.Context, id string) (*domain.Blog, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+blogColumns+` FROM blogs WHERE id = ?`, id)

	b, err := scanBlog(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	b.Tags, err = s.GetBlogTags(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBlogBySlug retrieves a post by its slug with its tags loaded.
// Returns store.ErrNotFound if the post does not exist.
func (s *Store) GetBlogBySlug(ctx context.Context, slug string) (*domain.Blog, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+blogColumns+` FROM blogs WHERE slug = ?`, slug)

	b, err := scanBlog(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	b.Tags, err = s.GetBlogTags(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// SlugExists reports whether a slug is already taken by another post.
// excludeID skips one post, so updates don't collide with themselves.
func (s *Store) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM blogs WHERE slug = ? AND id != ?`, slug, excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateBlog persists changes to an existing post. A non-nil tagIDs
// replaces the tag set in the same transaction.
// Returns store.ErrNotFound if the post does not exist.
func (s *Store) UpdateBlog(ctx context.Context, b *domain.Blog, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	published := 0
	if b.Published {
		published = 1
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE blogs
		SET title = ?, content = ?, slug = ?, published = ?, published_at = ?, updated_at = ?
		WHERE id = ?`,
		b.Title,
		b.Content,
		b.Slug,
		published,
		nullTimeString(b.PublishedAt),
		formatTime(b.UpdatedAt),
		b.ID,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	if tagIDs != nil {
		if err := replaceBlogTags(ctx, tx, b.ID, tagIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.syncBlogIndex(ctx, b)
	return nil
}

// DeleteBlog removes a post and adjusts tag usage counts in one transaction.
// Comments and tag associations go with it via foreign key cascades; likes
// reference their targets only by ID, so the post's and its comments' like
// rows are cleaned up explicitly.
func (s *Store) DeleteBlog(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Release this post's tags before the cascade removes the join rows.
	_, err = tx.ExecContext(ctx, `
		UPDATE tags SET usage_count = MAX(usage_count - 1, 0)
		WHERE id IN (SELECT tag_id FROM blog_tags WHERE blog_id = ?)`, id)
	if err != nil {
		return fmt.Errorf("decrement tag usage: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM likes WHERE target_type = 'comment'
			AND target_id IN (SELECT id FROM comments WHERE blog_id = ?)`, id)
	if err != nil {
		return fmt.Errorf("delete comment likes: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM likes WHERE target_type = 'blog' AND target_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete blog likes: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM blogs WHERE id = ?`, id)
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

	if err := tx.Commit(); err != nil {
		return err
	}

	if err := s.searchIndexer.DeleteBlog(ctx, id); err != nil {
		s.logger.Warn("failed to remove post from search index", "blog_id", id, "error", err)
	}
	return nil
}

// ListBlogs returns one page of posts matching the filter, newest first.
// Published posts sort by publish date, drafts by creation date.
func (s *Store) ListBlogs(ctx context.Context, filter store.BlogFilter, params store.PaginationParams) (*store.Page[*domain.Blog], error) {
	params.Validate()

	where, args := blogFilterClause(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM blogs b` + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count blogs: %w", err)
	}

	query := `SELECT ` + prefixColumns(blogColumns, "b") + ` FROM blogs b` + where +
		` ORDER BY COALESCE(b.published_at, b.created_at) DESC LIMIT ? OFFSET ?`
	args = append(args, params.PerPage, params.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query blogs: %w", err)
	}
	defer rows.Close()

	var blogs []*domain.Blog
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, b := range blogs {
		b.Tags, err = s.GetBlogTags(ctx, b.ID)
		if err != nil {
			return nil, err
		}
	}

	page := store.NewPage(blogs, total, params)
	return &page, nil
}

// IncrementViewCount bumps the view counter for a post.
// Missing posts are ignored; a view of a just-deleted post is not an error.
func (s *Store) IncrementViewCount(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE blogs SET view_count = view_count + 1 WHERE id = ?`, id)
	return err
}

// blogFilterClause builds the WHERE clause and arguments for a BlogFilter.
func blogFilterClause(filter store.BlogFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.PublishedOnly {
		if filter.IncludeDraftsBy != "" {
			conditions = append(conditions, `(b.published = 1 OR b.author_id = ?)`)
			args = append(args, filter.IncludeDraftsBy)
		} else {
			conditions = append(conditions, `b.published = 1`)
		}
	}
	if filter.Published != nil {
		if *filter.Published {
			conditions = append(conditions, `b.published = 1`)
		} else {
			conditions = append(conditions, `b.published = 0`)
		}
	}
	if filter.AuthorID != "" {
		conditions = append(conditions, `b.author_id = ?`)
		args = append(args, filter.AuthorID)
	}
	if filter.TagSlug != "" {
		conditions = append(conditions, `b.id IN (
			SELECT bt.blog_id FROM blog_tags bt
			JOIN tags t ON t.id = bt.tag_id
			WHERE t.slug = ?)`)
		args = append(args, filter.TagSlug)
	}
	if filter.Search != "" {
		conditions = append(conditions, `(b.title LIKE ? COLLATE NOCASE OR b.content LIKE ? COLLATE NOCASE)`)
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// prefixColumns qualifies each column in a comma-separated list with a table alias.
func prefixColumns(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// syncBlogIndex keeps the search index in line with the post's publish state.
// Index failures are logged, not returned; search lags rather than writes failing.
func (s *Store) syncBlogIndex(ctx context.Context, b *domain.Blog) {
	var err error
	if b.Published {
		err = s.searchIndexer.IndexBlog(ctx, b)
	} else {
		err = s.searchIndexer.DeleteBlog(ctx, b.ID)
	}
	if err != nil {
		s.logger.Warn("failed to update search index", "blog_id", b.ID, "error", err)
	}
}
