package content

import (
	"context"
	"strings"

	"github.com/agutorres/lineup-server/internal/utils/platformerrors"
	"github.com/agutorres/lineup-server/utils/lineupid"
)

// Repository defines persistence operations for the content hierarchy.
type Repository interface {
	CreateMap(ctx context.Context, m *Map) error
	GetMap(ctx context.Context, id string) (*Map, error)
	ListMaps(ctx context.Context, includeInactive bool) ([]*Map, error)
	UpdateMap(ctx context.Context, m *Map) error
	DeleteMap(ctx context.Context, id string) error

	CreateCategory(ctx context.Context, c *Category) error
	ListCategories(ctx context.Context) ([]*Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreateSection(ctx context.Context, s *Section) error
	GetSection(ctx context.Context, id string) (*Section, error)
	ListSections(ctx context.Context, mapID, categoryID string) ([]*Section, error)
	DeleteSection(ctx context.Context, id string) error

	CreateCallout(ctx context.Context, c *Callout) error
	ListCallouts(ctx context.Context, mapID string) ([]*Callout, error)
	DeleteCallout(ctx context.Context, id string) error
}

// Service manages the map -> category -> section hierarchy and callouts.
type Service struct {
	repo Repository
}

// NewService builds the content service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateMap registers a new map. Name is the stable slug, display name the
// user facing label.
func (s *Service) CreateMap(ctx context.Context, name, displayName, thumbnailURL string, sortOrder int) (*Map, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, validationError("map name is required")
	}
	if strings.TrimSpace(displayName) == "" {
		displayName = name
	}
	m := &Map{
		ID:           lineupid.New(lineupid.PrefixMap),
		Name:         name,
		DisplayName:  displayName,
		ThumbnailURL: thumbnailURL,
		Active:       true,
		SortOrder:    sortOrder,
	}
	if err := s.repo.CreateMap(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// GetMap loads one map.
func (s *Service) GetMap(ctx context.Context, id string) (*Map, error) {
	return s.repo.GetMap(ctx, id)
}

// ListMaps returns maps ordered by sort order.
func (s *Service) ListMaps(ctx context.Context, includeInactive bool) ([]*Map, error) {
	return s.repo.ListMaps(ctx, includeInactive)
}

// UpdateMap edits a map's mutable fields.
func (s *Service) UpdateMap(ctx context.Context, m *Map) (*Map, error) {
	if strings.TrimSpace(m.DisplayName) == "" {
		return nil, validationError("display_name is required")
	}
	if err := s.repo.UpdateMap(ctx, m); err != nil {
		return nil, err
	}
	return s.repo.GetMap(ctx, m.ID)
}

// DeleteMap removes a map and, via foreign keys, everything beneath it.
func (s *Service) DeleteMap(ctx context.Context, id string) error {
	return s.repo.DeleteMap(ctx, id)
}

// CreateCategory registers a utility family.
func (s *Service) CreateCategory(ctx context.Context, name, iconURL string, sortOrder int) (*Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, validationError("category name is required")
	}
	c := &Category{
		ID:        lineupid.New(lineupid.PrefixCategory),
		Name:      name,
		IconURL:   iconURL,
		SortOrder: sortOrder,
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCategories returns all categories ordered by sort order.
func (s *Service) ListCategories(ctx context.Context) ([]*Category, error) {
	return s.repo.ListCategories(ctx)
}

// DeleteCategory removes a category and its sections.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.repo.DeleteCategory(ctx, id)
}

// CreateSection registers a target area under a map and category.
func (s *Service) CreateSection(ctx context.Context, mapID, categoryID, name string, sortOrder int) (*Section, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationError("section name is required")
	}
	if _, err := s.repo.GetMap(ctx, mapID); err != nil {
		return nil, err
	}
	sec := &Section{
		ID:         lineupid.New(lineupid.PrefixSection),
		MapID:      mapID,
		CategoryID: categoryID,
		Name:       name,
		SortOrder:  sortOrder,
	}
	if err := s.repo.CreateSection(ctx, sec); err != nil {
		return nil, err
	}
	return sec, nil
}

// GetSection loads one section.
func (s *Service) GetSection(ctx context.Context, id string) (*Section, error) {
	return s.repo.GetSection(ctx, id)
}

// ListSections returns sections filtered by map and optionally category.
func (s *Service) ListSections(ctx context.Context, mapID, categoryID string) ([]*Section, error) {
	return s.repo.ListSections(ctx, mapID, categoryID)
}

// DeleteSection removes a section and its videos.
func (s *Service) DeleteSection(ctx context.Context, id string) error {
	return s.repo.DeleteSection(ctx, id)
}

// CreateCallout pins a named position on a map overview.
func (s *Service) CreateCallout(ctx context.Context, mapID, name string, x, y float64) (*Callout, error) {
	if strings.TrimSpace(name) == "" {
		return nil, validationError("callout name is required")
	}
	if x < 0 || x > 1 || y < 0 || y > 1 {
		return nil, validationError("callout coordinates must be within [0, 1]")
	}
	if _, err := s.repo.GetMap(ctx, mapID); err != nil {
		return nil, err
	}
	c := &Callout{
		ID:    lineupid.New(lineupid.PrefixCallout),
		MapID: mapID,
		Name:  name,
		X:     x,
		Y:     y,
	}
	if err := s.repo.CreateCallout(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCallouts returns the pins of a map.
func (s *Service) ListCallouts(ctx context.Context, mapID string) ([]*Callout, error) {
	return s.repo.ListCallouts(ctx, mapID)
}

// DeleteCallout removes one pin.
func (s *Service) DeleteCallout(ctx context.Context, id string) error {
	return s.repo.DeleteCallout(ctx, id)
}

func validationError(message string) error {
	return platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
		platformerrors.ErrorTypeValidation, message, nil, "")
}
