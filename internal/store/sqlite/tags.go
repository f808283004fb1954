package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/flashblog/flashblog-server/internal/domain"
	"github.com/flashblog/flashblog-server/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, name, slug, description, color, usage_count, created_at, updated_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag

	var (
		description sql.NullString
		color       sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&t.ID,
		&t.Name,
		&t.Slug,
		&description,
		&color,
		&t.UsageCount,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		t.Description = description.String
	}
	if color.Valid {
		t.Color = color.String
	}

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// CreateTag inserts a new tag into the database.
// Returns store.ErrAlreadyExists on duplicate name or slug.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, name, slug, description, color, usage_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.Name,
		t.Slug,
		nullString(t.Description),
		nullString(t.Color),
		t.UsageCount,
		formatTime(t.CreatedAt),
		formatTime(t.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetTag retrieves a tag by its ID.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTag(ctx context.Context, id string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTagBySlug retrieves a tag by its slug.
// Returns store.ErrNotFound if the tag does not exist.
func (s *Store) GetTagBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE slug = ?`, slug)

	t, err := scanTag(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// TagNameExists reports whether a tag name is already taken (case-insensitive).
// excludeID skips one tag, so renames don't collide with themselves.
func (s *Store) TagNameExists(ctx context.Context, name, excludeID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tags WHERE name = ? COLLATE NOCASE AND id != ?`,
		name, excludeID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateTag persists changes to an existing tag.
// UsageCount is never written here; it only moves through the counting SQL.
func (s *Store) UpdateTag(ctx context.Context, t *domain.Tag) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tags
		SET name = ?, slug = ?, description = ?, color = ?, updated_at = ?
		WHERE id = ?`,
		t.Name,
		t.Slug,
		nullString(t.Description),
		nullString(t.Color),
		formatTime(t.UpdatedAt),
		t.ID,
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
	return nil
}

// DeleteTag removes an unused tag.
// The usage check rides on the delete itself, so the transaction opens
// with the write lock and a concurrent attach cannot commit between check
// and delete. Returns store.TagInUseError when the tag is still attached
// to posts.
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM tags WHERE id = ? AND usage_count = 0`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return tx.Commit()
	}

	// Nothing deleted: the tag is missing or still in use.
	var usageCount int
	err = tx.QueryRowContext(ctx,
		`SELECT usage_count FROM tags WHERE id = ?`, id).Scan(&usageCount)
	if err == sql.ErrNoRows {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	return &store.TagInUseError{UsageCount: usageCount}
}

// ListTags returns a page of tags matching the filter.
func (s *Store) ListTags(ctx context.Context, filter store.TagFilter, params store.PaginationParams) (*store.Page[*domain.Tag], error) {
	params.Validate()

	where := ""
	var args []any
	if filter.Search != "" {
		where = ` WHERE name LIKE ? COLLATE NOCASE`
		args = append(args, "%"+filter.Search+"%")
	}

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tags`+where, args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count tags: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags`+where+tagOrderClause(filter)+` LIMIT ? OFFSET ?`,
		append(args, params.PerPage, params.Offset())...)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	tags, err := collectTags(rows)
	if err != nil {
		return nil, err
	}

	page := store.NewPage(tags, total, params)
	return &page, nil
}

// tagOrderClause maps the filter's sort to a safe ORDER BY clause.
// Unknown sorts fall back to name so the column never comes from input.
func tagOrderClause(filter store.TagFilter) string {
	dir := "ASC"
	if filter.SortDesc {
		dir = "DESC"
	}
	switch filter.SortBy {
	case "usage_count":
		return ` ORDER BY usage_count ` + dir + `, name COLLATE NOCASE ASC`
	case "created_at":
		return ` ORDER BY created_at ` + dir + `, name COLLATE NOCASE ASC`
	default:
		return ` ORDER BY name COLLATE NOCASE ` + dir
	}
}

// GetTagsByNames returns the tags whose names match (case-insensitive).
// Names with no matching tag are simply absent from the result; callers
// diff against the input to report unknown names.
func (s *Store) GetTagsByNames(ctx context.Context, names []string) ([]*domain.Tag, error) {
	if len(names) == 0 {
		return []*domain.Tag{}, nil
	}

	placeholders := strings.Repeat("?,", len(names))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(names))
	for i, name := range names {
		args[i] = name
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE name COLLATE NOCASE IN (`+placeholders+`)
		 ORDER BY name COLLATE NOCASE ASC`, args...)
	if err != nil {
		return nil, fmt.Errorf("query tags by names: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

// ListPopularTags returns the most used tags, ties broken by name.
// Unused tags are omitted.
func (s *Store) ListPopularTags(ctx context.Context, limit int) ([]*domain.Tag, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+tagColumns+` FROM tags
		WHERE usage_count > 0
		ORDER BY usage_count DESC, name COLLATE NOCASE ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTags(rows)
}

// collectTags drains a tag result set.
func collectTags(rows *sql.Rows) ([]*domain.Tag, error) {
	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if tags == nil {
		tags = []*domain.Tag{}
	}
	return tags, nil
}

// SetBlogTags replaces the tag set for a post in a single transaction.
// Only the difference is written: kept tags are untouched, removed tags are
// decremented, added tags are incremented. Calling it twice with the same
// set is a no-op.
func (s *Store) SetBlogTags(ctx context.Context, blogID string, tagIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := replaceBlogTags(ctx, tx, blogID, tagIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// replaceBlogTags diffs the desired tag set against the current one inside
// the caller's transaction, so post writes can carry their tags atomically.
func replaceBlogTags(ctx context.Context, tx *sql.Tx, blogID string, tagIDs []string) error {
	// Load the current tag set.
	rows, err := tx.QueryContext(ctx,
		`SELECT tag_id FROM blog_tags WHERE blog_id = ?`, blogID)
	if err != nil {
		return fmt.Errorf("query blog_tags: %w", err)
	}
	current := make(map[string]bool)
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			rows.Close()
			return fmt.Errorf("scan blog_tag: %w", err)
		}
		current[tagID] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("rows iteration: %w", err)
	}
	rows.Close()

	desired := make(map[string]bool, len(tagIDs))
	for _, tagID := range tagIDs {
		desired[tagID] = true
	}

	now := formatTime(time.Now().UTC())

	// Attach new tags.
	for tagID := range desired {
		if current[tagID] {
			continue
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO blog_tags (blog_id, tag_id, created_at)
			VALUES (?, ?, ?)`,
			blogID, tagID, now)
		if err != nil {
			return fmt.Errorf("insert blog_tag: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE tags SET usage_count = usage_count + 1 WHERE id = ?`, tagID)
		if err != nil {
			return fmt.Errorf("increment tag usage: %w", err)
		}
	}

	// Detach removed tags.
	for tagID := range current {
		if desired[tagID] {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`DELETE FROM blog_tags WHERE blog_id = ? AND tag_id = ?`, blogID, tagID)
		if err != nil {
			return fmt.Errorf("delete blog_tag: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE tags SET usage_count = MAX(usage_count - 1, 0) WHERE id = ?`, tagID)
		if err != nil {
			return fmt.Errorf("decrement tag usage: %w", err)
		}
	}

	return nil
}

// GetBlogTags returns the tags attached to a post, ordered by name.
func (s *Store) GetBlogTags(ctx context.Context, blogID string) ([]domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+prefixColumns(tagColumns, "t")+` FROM tags t
		JOIN blog_tags bt ON bt.tag_id = t.id
		WHERE bt.blog_id = ?
		ORDER BY t.name COLLATE NOCASE ASC`, blogID)
	if err != nil {
		return nil, fmt.Errorf("query blog tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tags, nil
}
