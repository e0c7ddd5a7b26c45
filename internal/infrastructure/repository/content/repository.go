package content

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/agutorres/lineup-server/internal/domain/content"
	"github.com/agutorres/lineup-server/internal/infrastructure/database/entities"
	"github.com/agutorres/lineup-server/internal/utils/platformerrors"
)

// Repository handles content hierarchy persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateMap(ctx context.Context, m *domain.Map) error {
	entity := entities.GameMap{
		ID:           m.ID,
		Name:         m.Name,
		DisplayName:  m.DisplayName,
		ThumbnailURL: m.ThumbnailURL,
		Active:       m.Active,
		SortOrder:    m.SortOrder,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return r.wrap(ctx, err, "failed to create map")
	}
	return nil
}

func (r *Repository) GetMap(ctx context.Context, id string) (*domain.Map, error) {
	var entity entities.GameMap
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, r.notFound(ctx, "map not found", err)
		}
		return nil, r.wrap(ctx, err, "failed to load map")
	}
	m := mapGameMap(entity)
	return &m, nil
}

func (r *Repository) ListMaps(ctx context.Context, includeInactive bool) ([]*domain.Map, error) {
	query := r.db.WithContext(ctx).Model(&entities.GameMap{})
	if !includeInactive {
		query = query.Where("active = TRUE")
	}
	var rows []entities.GameMap
	if err := query.Order("sort_order ASC, name ASC").Find(&rows).Error; err != nil {
		return nil, r.wrap(ctx, err, "failed to list maps")
	}
	maps := make([]*domain.Map, 0, len(rows))
	for i := range rows {
		m := mapGameMap(rows[i])
		maps = append(maps, &m)
	}
	return maps, nil
}

func (r *Repository) UpdateMap(ctx context.Context, m *domain.Map) error {
	updates := map[string]any{
		"display_name":  m.DisplayName,
		"thumbnail_url": m.ThumbnailURL,
		"active":        m.Active,
		"sort_order":    m.SortOrder,
	}
	result := r.db.WithContext(ctx).Model(&entities.GameMap{}).Where("id = ?", m.ID).Updates(updates)
	if result.Error != nil {
		return r.wrap(ctx, result.Error, "failed to update map")
	}
	if result.RowsAffected == 0 {
		return r.notFound(ctx, "map not found", nil)
	}
	return nil
}

func (r *Repository) DeleteMap(ctx context.Context, id string) error {
	return r.deleteByID(ctx, &entities.GameMap{}, id, "map not found")
}

func (r *Repository) CreateCategory(ctx context.Context, c *domain.Category) error {
	entity := entities.Category{
		ID:        c.ID,
		Name:      c.Name,
		IconURL:   c.IconURL,
		SortOrder: c.SortOrder,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return r.wrap(ctx, err, "failed to create category")
	}
	return nil
}

func (r *Repository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	var rows []entities.Category
	err := r.db.WithContext(ctx).Order("sort_order ASC, name ASC").Find(&rows).Error
	if err != nil {
		return nil, r.wrap(ctx, err, "failed to list categories")
	}
	categories := make([]*domain.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, &domain.Category{
			ID:        row.ID,
			Name:      row.Name,
			IconURL:   row.IconURL,
			SortOrder: row.SortOrder,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return categories, nil
}

func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	return r.deleteByID(ctx, &entities.Category{}, id, "category not found")
}

func (r *Repository) CreateSection(ctx context.Context, s *domain.Section) error {
	entity := entities.CategorySection{
		ID:         s.ID,
		MapID:      s.MapID,
		CategoryID: s.CategoryID,
		Name:       s.Name,
		SortOrder:  s.SortOrder,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return r.wrap(ctx, err, "failed to create section")
	}
	return nil
}

func (r *Repository) GetSection(ctx context.Context, id string) (*domain.Section, error) {
	var entity entities.CategorySection
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, r.notFound(ctx, "section not found", err)
		}
		return nil, r.wrap(ctx, err, "failed to load section")
	}
	s := mapSection(entity)
	return &s, nil
}

func (r *Repository) ListSections(ctx context.Context, mapID, categoryID string) ([]*domain.Section, error) {
	query := r.db.WithContext(ctx).Model(&entities.CategorySection{})
	if mapID != "" {
		query = query.Where("map_id = ?", mapID)
	}
	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	var rows []entities.CategorySection
	if err := query.Order("sort_order ASC, name ASC").Find(&rows).Error; err != nil {
		return nil, r.wrap(ctx, err, "failed to list sections")
	}
	sections := make([]*domain.Section, 0, len(rows))
	for i := range rows {
		s := mapSection(rows[i])
		sections = append(sections, &s)
	}
	return sections, nil
}

func (r *Repository) DeleteSection(ctx context.Context, id string) error {
	return r.deleteByID(ctx, &entities.CategorySection{}, id, "section not found")
}

func (r *Repository) CreateCallout(ctx context.Context, c *domain.Callout) error {
	entity := entities.Callout{
		ID:    c.ID,
		MapID: c.MapID,
		Name:  c.Name,
		X:     c.X,
		Y:     c.Y,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return r.wrap(ctx, err, "failed to create callout")
	}
	return nil
}

func (r *Repository) ListCallouts(ctx context.Context, mapID string) ([]*domain.Callout, error) {
	var rows []entities.Callout
	err := r.db.WithContext(ctx).Where("map_id = ?", mapID).Order("name ASC").Find(&rows).Error
	if err != nil {
		return nil, r.wrap(ctx, err, "failed to list callouts")
	}
	callouts := make([]*domain.Callout, 0, len(rows))
	for _, row := range rows {
		callouts = append(callouts, &domain.Callout{
			ID:        row.ID,
			MapID:     row.MapID,
			Name:      row.Name,
			X:         row.X,
			Y:         row.Y,
			CreatedAt: row.CreatedAt,
			UpdatedAt: row.UpdatedAt,
		})
	}
	return callouts, nil
}

func (r *Repository) DeleteCallout(ctx context.Context, id string) error {
	return r.deleteByID(ctx, &entities.Callout{}, id, "callout not found")
}

func (r *Repository) deleteByID(ctx context.Context, model any, id, notFoundMsg string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return r.wrap(ctx, result.Error, "failed to delete record")
	}
	if result.RowsAffected == 0 {
		return r.notFound(ctx, notFoundMsg, nil)
	}
	return nil
}

func (r *Repository) wrap(ctx context.Context, err error, message string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository,
		platformerrors.ErrorTypeDatabaseError, message, err,
		"4d5e6f7a-8b9c-4d0e-9f1a-2b3c4d5e6f7a")
}

func (r *Repository) notFound(ctx context.Context, message string, err error) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository,
		platformerrors.ErrorTypeNotFound, message, err, "")
}

func mapGameMap(entity entities.GameMap) domain.Map {
	return domain.Map{
		ID:           entity.ID,
		Name:         entity.Name,
		DisplayName:  entity.DisplayName,
		ThumbnailURL: entity.ThumbnailURL,
		Active:       entity.Active,
		SortOrder:    entity.SortOrder,
		CreatedAt:    entity.CreatedAt,
		UpdatedAt:    entity.UpdatedAt,
	}
}

func mapSection(entity entities.CategorySection) domain.Section {
	return domain.Section{
		ID:         entity.ID,
		MapID:      entity.MapID,
		CategoryID: entity.CategoryID,
		Name:       entity.Name,
		SortOrder:  entity.SortOrder,
		CreatedAt:  entity.CreatedAt,
		UpdatedAt:  entity.UpdatedAt,
	}
}
