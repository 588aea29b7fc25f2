package services

import (
	"context"
	"errors"
	"strings"

	"bookingpro-backend/models"

	"gorm.io/gorm"
)

// OptionInput describes one option. On update, a known ID edits that option
// in place so bookings keyed by it keep resolving.
type OptionInput struct {
	ID        uint                  `json:"id"`
	Label     string                `json:"label" binding:"required"`
	Type      models.OptionType     `json:"type" binding:"required,oneof=checkbox radio dropdown number text"`
	Price     float64               `json:"price"`
	Choices   []models.OptionChoice `json:"choices"`
	SortOrder int                   `json:"sortOrder"`
}

type ServiceInput struct {
	Title           string        `json:"title" binding:"required"`
	Subtitle        string        `json:"subtitle"`
	Description     string        `json:"description"`
	Price           float64       `json:"price" binding:"min=0"`
	Icon            string        `json:"icon"`
	DurationMinutes int           `json:"durationMinutes" binding:"min=0"`
	SortOrder       int           `json:"sortOrder"`
	Options         []OptionInput `json:"options" binding:"dive"`
}

type ServiceUpdate struct {
	Title           *string        `json:"title"`
	Subtitle        *string        `json:"subtitle"`
	Description     *string        `json:"description"`
	Price           *float64       `json:"price" binding:"omitempty,min=0"`
	Icon            *string        `json:"icon"`
	DurationMinutes *int           `json:"durationMinutes" binding:"omitempty,min=0"`
	SortOrder       *int           `json:"sortOrder"`
	IsActive        *bool          `json:"isActive"`
	Options         *[]OptionInput `json:"options" binding:"omitempty,dive"`
}

type ServiceStore struct {
	db *gorm.DB
}

func NewServiceStore(db *gorm.DB) *ServiceStore {
	return &ServiceStore{db: db}
}

func (s *ServiceStore) Get(ctx context.Context, id uint) (*models.Service, error) {
	var service models.Service
	err := s.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, id") }).
		First(&service, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, persistence("load service", err)
	}
	return &service, nil
}

// List returns services in display order.
func (s *ServiceStore) List(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	q := s.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order, id") }).
		Order("sort_order, id")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	services := []models.Service{}
	if err := q.Find(&services).Error; err != nil {
		return nil, persistence("list services", err)
	}
	return services, nil
}

func (s *ServiceStore) Create(ctx context.Context, in ServiceInput) (*models.Service, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, MissingField("title")
	}
	service := models.Service{
		Title:           strings.TrimSpace(in.Title),
		Subtitle:        in.Subtitle,
		Description:     in.Description,
		Price:           in.Price,
		Icon:            in.Icon,
		DurationMinutes: in.DurationMinutes,
		SortOrder:       in.SortOrder,
		IsActive:        true,
		Options:         buildOptions(0, in.Options),
	}
	if err := s.db.WithContext(ctx).Create(&service).Error; err != nil {
		return nil, persistence("create service", err)
	}
	return &service, nil
}

func (s *ServiceStore) Update(ctx context.Context, id uint, in ServiceUpdate) (*models.Service, error) {
	service, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Title != nil {
		service.Title = strings.TrimSpace(*in.Title)
	}
	if in.Subtitle != nil {
		service.Subtitle = *in.Subtitle
	}
	if in.Description != nil {
		service.Description = *in.Description
	}
	if in.Price != nil {
		service.Price = *in.Price
	}
	if in.Icon != nil {
		service.Icon = *in.Icon
	}
	if in.DurationMinutes != nil {
		service.DurationMinutes = *in.DurationMinutes
	}
	if in.SortOrder != nil {
		service.SortOrder = *in.SortOrder
	}
	if in.IsActive != nil {
		service.IsActive = *in.IsActive
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Options").Save(service).Error; err != nil {
			return err
		}
		if in.Options == nil {
			return nil
		}
		return syncOptions(tx, service, *in.Options)
	})
	if err != nil {
		return nil, persistence("update service", err)
	}
	return s.Get(ctx, id)
}

// Delete removes the service and its options. Bookings keep the stale id.
func (s *ServiceStore) Delete(ctx context.Context, id uint) error {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_id = ?", id).Delete(&models.ServiceOption{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Service{}, id)
		affected = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return persistence("delete service", err)
	}
	if affected == 0 {
		return ErrServiceNotFound
	}
	return nil
}

// syncOptions makes the service's options match in. Inputs carrying the ID of
// an existing option update it; the rest are created; options not mentioned
// are removed.
func syncOptions(tx *gorm.DB, service *models.Service, in []OptionInput) error {
	existing := make(map[uint]bool, len(service.Options))
	for _, o := range service.Options {
		existing[o.ID] = true
	}
	keep := []uint{}
	for _, o := range in {
		opt := buildOptions(service.ID, []OptionInput{o})[0]
		if o.ID != 0 && existing[o.ID] {
			opt.ID = o.ID
			err := tx.Model(&models.ServiceOption{ID: o.ID}).
				Select("label", "type", "price", "choices", "sort_order").
				Updates(&opt).Error
			if err != nil {
				return err
			}
		} else if err := tx.Create(&opt).Error; err != nil {
			return err
		}
		keep = append(keep, opt.ID)
	}
	q := tx.Where("service_id = ?", service.ID)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	return q.Delete(&models.ServiceOption{}).Error
}

func buildOptions(serviceID uint, in []OptionInput) []models.ServiceOption {
	options := make([]models.ServiceOption, 0, len(in))
	for _, o := range in {
		options = append(options, models.ServiceOption{
			ServiceID: serviceID,
			Label:     o.Label,
			Type:      o.Type,
			Price:     o.Price,
			Choices:   models.EncodeChoices(o.Choices),
			SortOrder: o.SortOrder,
		})
	}
	return options
}
