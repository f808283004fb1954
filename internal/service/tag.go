package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/flashblog/flashblog-server/internal/domain"
	domainerrors "github.com/flashblog/flashblog-server/internal/errors"
	"github.com/flashblog/flashblog-server/internal/id"
	"github.com/flashblog/flashblog-server/internal/slug"
	"github.com/flashblog/flashblog-server/internal/store"
)

// TagService handles the admin-provisioned tag vocabulary.
type TagService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		logger: logger,
	}
}

// CreateTagRequest contains the data for a new tag.
type CreateTagRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=50"`
	Description string `json:"description,omitempty" validate:"max=500"`
	Color       string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// UpdateTagRequest contains partial tag updates. Nil fields are unchanged.
type UpdateTagRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Color       *string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

// ListTagsRequest contains tag listing filters.
type ListTagsRequest struct {
	Search   string
	SortBy   string // name | usage_count | created_at
	SortDesc bool
	Page     int
	PerPage  int
}

// Create provisions a new tag. Names are unique case-insensitively.
func (s *TagService) Create(ctx context.Context, req CreateTagRequest) (*domain.Tag, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domainerrors.Validation("name is required")
	}

	taken, err := s.store.TagNameExists(ctx, name, "")
	if err != nil {
		return nil, fmt.Errorf("check tag name: %w", err)
	}
	if taken {
		return nil, domainerrors.Conflictf("tag %q already exists", name)
	}

	tagID, err := id.Generate("tag")
	if err != nil {
		return nil, fmt.Errorf("generate tag ID: %w", err)
	}

	tagSlug, err := s.uniqueSlug(ctx, name, tagID)
	if err != nil {
		return nil, err
	}

	tag := &domain.Tag{
		ID:          tagID,
		Name:        name,
		Slug:        tagSlug,
		Description: strings.TrimSpace(req.Description),
		Color:       req.Color,
	}
	tag.Touch()

	if err := s.store.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflictf("tag %q already exists", name)
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}

	s.logger.Info("tag created", "tag_id", tag.ID, "name", tag.Name)
	return tag, nil
}

// Get returns a tag by ID.
func (s *TagService) Get(ctx context.Context, tagID string) (*domain.Tag, error) {
	tag, err := s.store.GetTag(ctx, tagID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("tag not found")
		}
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}

// GetBySlug returns a tag by slug.
func (s *TagService) GetBySlug(ctx context.Context, tagSlug string) (*domain.Tag, error) {
	tag, err := s.store.GetTagBySlug(ctx, tagSlug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("tag not found")
		}
		return nil, fmt.Errorf("get tag by slug: %w", err)
	}
	return tag, nil
}

// Update applies partial changes to a tag. A rename re-derives the slug.
func (s *TagService) Update(ctx context.Context, tagID string, req UpdateTagRequest) (*domain.Tag, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	tag, err := s.Get(ctx, tagID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domainerrors.Validation("name cannot be empty")
		}
		if !strings.EqualFold(name, tag.Name) {
			taken, err := s.store.TagNameExists(ctx, name, tag.ID)
			if err != nil {
				return nil, fmt.Errorf("check tag name: %w", err)
			}
			if taken {
				return nil, domainerrors.Conflictf("tag %q already exists", name)
			}
			tag.Slug, err = s.uniqueSlug(ctx, name, tag.ID)
			if err != nil {
				return nil, err
			}
		}
		tag.Name = name
	}
	if req.Description != nil {
		tag.Description = strings.TrimSpace(*req.Description)
	}
	if req.Color != nil {
		tag.Color = *req.Color
	}
	tag.Touch()

	if err := s.store.UpdateTag(ctx, tag); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.Conflictf("tag %q already exists", tag.Name)
		}
		return nil, fmt.Errorf("update tag: %w", err)
	}

	s.logger.Info("tag updated", "tag_id", tag.ID)
	return tag, nil
}

// Delete removes an unused tag. Tags still attached to posts refuse to go.
func (s *TagService) Delete(ctx context.Context, tagID string) error {
	err := s.store.DeleteTag(ctx, tagID)
	if err == nil {
		s.logger.Info("tag deleted", "tag_id", tagID)
		return nil
	}

	var inUse *store.TagInUseError
	if errors.As(err, &inUse) {
		return domainerrors.TagInUse(inUse.UsageCount)
	}
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound("tag not found")
	}
	return fmt.Errorf("delete tag: %w", err)
}

// List returns a page of tags matching the filters.
func (s *TagService) List(ctx context.Context, req ListTagsRequest) (*store.Page[*domain.Tag], error) {
	filter := store.TagFilter{
		Search:   req.Search,
		SortBy:   req.SortBy,
		SortDesc: req.SortDesc,
	}

	page, err := s.store.ListTags(ctx, filter, store.PaginationParams{Page: req.Page, PerPage: req.PerPage})
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return page, nil
}

// ListPopular returns the most used tags.
func (s *TagService) ListPopular(ctx context.Context, limit int) ([]*domain.Tag, error) {
	tags, err := s.store.ListPopularTags(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list popular tags: %w", err)
	}
	return tags, nil
}

// uniqueSlug derives a slug from the tag name and resolves collisions
// against other tag slugs.
func (s *TagService) uniqueSlug(ctx context.Context, name, tagID string) (string, error) {
	base := slug.Generate(name, slugMaxLength)
	if base == "" {
		base = tagID
	}
	return slug.ResolveUnique(ctx, base, s.tagSlugExists, tagID)
}

// tagSlugExists adapts GetTagBySlug to the uniqueness resolver.
func (s *TagService) tagSlugExists(ctx context.Context, candidate, excludeID string) (bool, error) {
	tag, err := s.store.GetTagBySlug(ctx, candidate)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return tag.ID != excludeID, nil
}
