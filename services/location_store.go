package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"bookingpro-backend/models"
	"bookingpro-backend/utils"

	"gorm.io/gorm"
)

var locationOrderColumns = map[string]bool{
	"id": true, "country": true, "city": true, "zip_code": true, "price_adjustment": true, "created_at": true,
}

// LocationQuery is what a booking form may submit to locate the customer:
// a postal code, or a country/city/area triple.
type LocationQuery struct {
	ZipCode string `json:"zip_code" form:"zip_code"`
	Country string `json:"country" form:"country"`
	City    string `json:"city" form:"city"`
	Area    string `json:"area" form:"area"`
}

func (q LocationQuery) Empty() bool {
	return strings.TrimSpace(q.ZipCode) == "" &&
		strings.TrimSpace(q.Country) == "" &&
		strings.TrimSpace(q.City) == "" &&
		strings.TrimSpace(q.Area) == ""
}

// LocationPricing is the resolved pricing of a serviceable area. The zero
// value means "no location supplied".
type LocationPricing struct {
	LocationID      uint    `json:"location_id,omitempty"`
	ZipCode         string  `json:"zip_code"`
	Country         string  `json:"country"`
	City            string  `json:"city"`
	Area            string  `json:"area"`
	PriceAdjustment float64 `json:"price_adjustment"`
	ServiceFee      float64 `json:"service_fee"`
}

// LocationResolver turns a submitted location into pricing.
type LocationResolver interface {
	Resolve(ctx context.Context, q LocationQuery) (*LocationPricing, error)
}

type LocationInput struct {
	Country         string  `json:"country" binding:"required"`
	City            string  `json:"city"`
	AreaName        string  `json:"areaName"`
	ZipCode         string  `json:"zipCode" binding:"required"`
	PriceAdjustment float64 `json:"priceAdjustment"`
	ServiceFee      float64 `json:"serviceFee" binding:"min=0"`
	IsServiceable   *bool   `json:"isServiceable"`
}

type LocationUpdate struct {
	Country         *string  `json:"country"`
	City            *string  `json:"city"`
	AreaName        *string  `json:"areaName"`
	ZipCode         *string  `json:"zipCode"`
	PriceAdjustment *float64 `json:"priceAdjustment"`
	ServiceFee      *float64 `json:"serviceFee" binding:"omitempty,min=0"`
	IsServiceable   *bool    `json:"isServiceable"`
}

type LocationFilter struct {
	ListParams
	Country     string `form:"country"`
	City        string `form:"city"`
	Serviceable *bool  `form:"serviceable"`
	Q           string `form:"q"`
}

type LocationStore struct {
	db *gorm.DB
}

func NewLocationStore(db *gorm.DB) *LocationStore {
	return &LocationStore{db: db}
}

func (s *LocationStore) Get(ctx context.Context, id uint) (*models.LocationArea, error) {
	var loc models.LocationArea
	if err := s.db.WithContext(ctx).First(&loc, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, persistence("load location", err)
	}
	return &loc, nil
}

func (s *LocationStore) GetByZip(ctx context.Context, code string) (*models.LocationArea, error) {
	var loc models.LocationArea
	if err := s.db.WithContext(ctx).Where("zip_code = ?", utils.NormZip(code)).First(&loc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotFound
		}
		return nil, persistence("load location", err)
	}
	return &loc, nil
}

func (s *LocationStore) List(ctx context.Context, f LocationFilter) ([]models.LocationArea, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.LocationArea{})
	if f.Country != "" {
		q = q.Where("LOWER(country) = ?", strings.ToLower(f.Country))
	}
	if f.City != "" {
		q = q.Where("LOWER(city) = ?", strings.ToLower(f.City))
	}
	if f.Serviceable != nil {
		q = q.Where("is_serviceable = ?", *f.Serviceable)
	}
	if f.Q != "" {
		like := "%" + strings.ToLower(f.Q) + "%"
		q = q.Where("LOWER(zip_code) LIKE ? OR LOWER(area_name) LIKE ? OR LOWER(city) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, persistence("count locations", err)
	}
	locations := []models.LocationArea{}
	if err := f.apply(q, locationOrderColumns, "country").Find(&locations).Error; err != nil {
		return nil, 0, persistence("list locations", err)
	}
	return locations, total, nil
}

func (s *LocationStore) Create(ctx context.Context, in LocationInput) (*models.LocationArea, error) {
	loc := models.LocationArea{
		Country:         strings.TrimSpace(in.Country),
		City:            strings.TrimSpace(in.City),
		AreaName:        strings.TrimSpace(in.AreaName),
		ZipCode:         utils.NormZip(in.ZipCode),
		PriceAdjustment: in.PriceAdjustment,
		ServiceFee:      in.ServiceFee,
		IsServiceable:   in.IsServiceable == nil || *in.IsServiceable,
	}
	if err := validateLocation(&loc); err != nil {
		return nil, err
	}
	if _, err := s.GetByZip(ctx, loc.ZipCode); err == nil {
		return nil, invalidField("zip_code", "A location with this postal code already exists")
	} else if !errors.Is(err, ErrLocationNotFound) {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&loc).Error; err != nil {
		return nil, persistence("create location", err)
	}
	return &loc, nil
}

func (s *LocationStore) Update(ctx context.Context, id uint, in LocationUpdate) (*models.LocationArea, error) {
	loc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Country != nil {
		loc.Country = strings.TrimSpace(*in.Country)
	}
	if in.City != nil {
		loc.City = strings.TrimSpace(*in.City)
	}
	if in.AreaName != nil {
		loc.AreaName = strings.TrimSpace(*in.AreaName)
	}
	if in.ZipCode != nil {
		loc.ZipCode = utils.NormZip(*in.ZipCode)
	}
	if in.PriceAdjustment != nil {
		loc.PriceAdjustment = *in.PriceAdjustment
	}
	if in.ServiceFee != nil {
		loc.ServiceFee = *in.ServiceFee
	}
	if in.IsServiceable != nil {
		loc.IsServiceable = *in.IsServiceable
	}
	if err := validateLocation(loc); err != nil {
		return nil, err
	}
	if in.ZipCode != nil {
		if other, err := s.GetByZip(ctx, loc.ZipCode); err == nil && other.ID != loc.ID {
			return nil, invalidField("zip_code", "A location with this postal code already exists")
		} else if err != nil && !errors.Is(err, ErrLocationNotFound) {
			return nil, err
		}
	}
	if err := s.db.WithContext(ctx).Save(loc).Error; err != nil {
		return nil, persistence("update location", err)
	}
	return loc, nil
}

func (s *LocationStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.LocationArea{}, id)
	if result.Error != nil {
		return persistence("delete location", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLocationNotFound
	}
	return nil
}

func (s *LocationStore) Countries(ctx context.Context) ([]string, error) {
	countries := []string{}
	err := s.db.WithContext(ctx).Model(&models.LocationArea{}).
		Distinct("country").Order("country").Pluck("country", &countries).Error
	if err != nil {
		return nil, persistence("list countries", err)
	}
	return countries, nil
}

func (s *LocationStore) Cities(ctx context.Context, country string) ([]string, error) {
	cities := []string{}
	err := s.db.WithContext(ctx).Model(&models.LocationArea{}).
		Where("LOWER(country) = ? AND city <> ''", strings.ToLower(strings.TrimSpace(country))).
		Distinct("city").Order("city").Pluck("city", &cities).Error
	if err != nil {
		return nil, persistence("list cities", err)
	}
	return cities, nil
}

func (s *LocationStore) Areas(ctx context.Context, country, city string) ([]models.LocationArea, error) {
	areas := []models.LocationArea{}
	err := s.db.WithContext(ctx).
		Where("LOWER(country) = ? AND LOWER(city) = ?",
			strings.ToLower(strings.TrimSpace(country)), strings.ToLower(strings.TrimSpace(city))).
		Order("area_name, zip_code").Find(&areas).Error
	if err != nil {
		return nil, persistence("list areas", err)
	}
	return areas, nil
}

// Resolve finds the pricing for a submitted location. A postal code takes
// precedence over the country/city/area triple. Unknown or non-serviceable
// areas yield ErrLocationNotServiceable.
func (s *LocationStore) Resolve(ctx context.Context, q LocationQuery) (*LocationPricing, error) {
	if q.Empty() {
		return &LocationPricing{}, nil
	}

	query := s.db.WithContext(ctx).Model(&models.LocationArea{})
	country := strings.ToLower(strings.TrimSpace(q.Country))
	switch {
	case strings.TrimSpace(q.ZipCode) != "":
		query = query.Where("zip_code = ?", utils.NormZip(q.ZipCode))
		if country != "" {
			query = query.Where("LOWER(country) = ?", country)
		}
	case country != "" && strings.TrimSpace(q.City) != "":
		query = query.Where("LOWER(country) = ? AND LOWER(city) = ?", country, strings.ToLower(strings.TrimSpace(q.City)))
		if area := strings.TrimSpace(q.Area); area != "" {
			query = query.Where("LOWER(area_name) = ?", strings.ToLower(area))
		}
		query = query.Where("is_serviceable = ?", true).Order("id")
	case country == "":
		return nil, MissingField("country")
	default:
		return nil, MissingField("city")
	}

	var loc models.LocationArea
	if err := query.First(&loc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLocationNotServiceable
		}
		return nil, persistence("resolve location", err)
	}
	if !loc.IsServiceable {
		return nil, ErrLocationNotServiceable
	}
	return &LocationPricing{
		LocationID:      loc.ID,
		ZipCode:         loc.ZipCode,
		Country:         loc.Country,
		City:            loc.City,
		Area:            loc.AreaName,
		PriceAdjustment: loc.PriceAdjustment,
		ServiceFee:      loc.ServiceFee,
	}, nil
}

func validateLocation(loc *models.LocationArea) error {
	if loc.ZipCode == "" {
		return MissingField("zip_code")
	}
	if loc.Country == "" {
		return MissingField("country")
	}
	if math.IsNaN(loc.PriceAdjustment) || math.IsInf(loc.PriceAdjustment, 0) {
		return invalidField("price_adjustment", "Price adjustment must be a finite number")
	}
	if math.IsNaN(loc.ServiceFee) || math.IsInf(loc.ServiceFee, 0) || loc.ServiceFee < 0 {
		return invalidField("service_fee", "Service fee must not be negative")
	}
	return nil
}
