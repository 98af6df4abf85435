package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"innoportal/internal/apperr"
	"innoportal/internal/models"
	"innoportal/internal/policy"
)

type CategoryService struct {
	db *gorm.DB
}

func NewCategoryService(conn *gorm.DB) *CategoryService {
	return &CategoryService{db: conn}
}

func (s *CategoryService) Create(ctx context.Context, actor *models.User, name, slug string) (*models.Category, error) {
	if actor == nil {
		return nil, apperr.ErrAuthRequired
	}
	if !policy.CanManageCategories(actor.Role) {
		return nil, apperr.Forbidden("create category")
	}
	category := &models.Category{
		Name: strings.TrimSpace(name),
		Slug: strings.ToLower(strings.TrimSpace(slug)),
	}
	if err := validateStruct(category); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("category slug %q: %w", category.Slug, apperr.ErrConflict)
		}
		return nil, apperr.FromDB(err)
	}
	return category, nil
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperr.FromDB(err)
	}
	return categories, nil
}

func (s *CategoryService) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).Where("slug = ?", strings.ToLower(slug)).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category")
		}
		return nil, apperr.FromDB(err)
	}
	return &category, nil
}

// Delete removes a category. Content in it keeps existing with no category.
func (s *CategoryService) Delete(ctx context.Context, actor *models.User, id string) (bool, error) {
	if actor == nil {
		return false, apperr.ErrAuthRequired
	}
	if !policy.CanDeleteCategories(actor.Role) {
		return false, apperr.Forbidden("delete category")
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	if res.Error != nil {
		return false, apperr.FromDB(res.Error)
	}
	return res.RowsAffected > 0, nil
}
