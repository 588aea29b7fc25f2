package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookingpro-backend/models"
	"bookingpro-backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var clientOrderColumns = map[string]bool{
	"id": true, "name": true, "email": true, "total_spent": true, "created_at": true,
}

type ClientInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// ClientUpdate writes only the non-nil fields.
type ClientUpdate struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Notes   *string `json:"notes"`
}

type ClientFilter struct {
	ListParams
	Email string `form:"email"`
	Name  string `form:"name"`
}

type ClientStore struct {
	db *gorm.DB
}

func NewClientStore(db *gorm.DB) *ClientStore {
	return &ClientStore{db: db}
}

// WithTx returns a copy of the store bound to tx.
func (s *ClientStore) WithTx(tx *gorm.DB) *ClientStore {
	return &ClientStore{db: tx}
}

func (s *ClientStore) Get(ctx context.Context, id uint) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, persistence("load client", err)
	}
	return &client, nil
}

func (s *ClientStore) List(ctx context.Context, f ClientFilter) ([]models.Client, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Client{})
	if f.Email != "" {
		q = q.Where("email = ?", strings.ToLower(strings.TrimSpace(f.Email)))
	}
	if f.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Name)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, persistence("count clients", err)
	}

	clients := []models.Client{}
	if err := f.apply(q, clientOrderColumns, "created_at").Find(&clients).Error; err != nil {
		return nil, 0, persistence("list clients", err)
	}
	return clients, total, nil
}

func (s *ClientStore) Create(ctx context.Context, in ClientInput) (*models.Client, error) {
	email, ok := utils.NormEmail(in.Email)
	if !ok {
		return nil, ErrInvalidEmail
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, MissingField("name")
	}
	client := models.Client{
		Name:    strings.TrimSpace(in.Name),
		Email:   email,
		Phone:   strings.TrimSpace(in.Phone),
		Address: in.Address,
		Notes:   in.Notes,
	}
	if err := s.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, persistence("create client", err)
	}
	return &client, nil
}

func (s *ClientStore) Update(ctx context.Context, id uint, in ClientUpdate) (*models.Client, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if in.Name != nil {
		changes["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email, ok := utils.NormEmail(*in.Email)
		if !ok {
			return nil, ErrInvalidEmail
		}
		changes["email"] = email
	}
	if in.Phone != nil {
		changes["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.Address != nil {
		changes["address"] = *in.Address
	}
	if in.Notes != nil {
		changes["notes"] = *in.Notes
	}
	if len(changes) == 0 {
		return client, nil
	}

	if err := s.db.WithContext(ctx).Model(client).Updates(changes).Error; err != nil {
		return nil, persistence("update client", err)
	}
	return s.Get(ctx, id)
}

// Delete removes the client row only; its bookings keep the stale id.
func (s *ClientStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Client{}, id)
	if result.Error != nil {
		return persistence("delete client", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrClientNotFound
	}
	return nil
}

// AddNote prepends a timestamped line to the client's notes.
func (s *ClientStore) AddNote(ctx context.Context, id uint, text string) (*models.Client, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, MissingField("note")
	}
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	entry := "[" + time.Now().Format("2006-01-02 15:04") + "] " + text
	notes := entry
	if client.Notes != "" {
		notes = entry + "\n" + client.Notes
	}
	if err := s.db.WithContext(ctx).Model(client).Update("notes", notes).Error; err != nil {
		return nil, persistence("add client note", err)
	}
	client.Notes = notes
	return client, nil
}

// GetOrCreate resolves the client for an email. The insert is a no-op on
// conflict with the unique email index, so concurrent submissions converge on
// one row. An existing client only gets name and phone refreshed, and only
// when the submitted value is non-empty and differs.
func (s *ClientStore) GetOrCreate(ctx context.Context, in ClientInput) (*models.Client, error) {
	email, ok := utils.NormEmail(in.Email)
	if !ok {
		return nil, ErrInvalidEmail
	}
	name := strings.TrimSpace(in.Name)
	phone := strings.TrimSpace(in.Phone)

	candidate := models.Client{Name: name, Email: email, Phone: phone, Address: in.Address}
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).
		Create(&candidate)
	if result.Error != nil {
		return nil, persistence("create client", result.Error)
	}

	var client models.Client
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&client).Error; err != nil {
		return nil, persistence("load client", err)
	}
	if result.RowsAffected > 0 {
		return &client, nil
	}

	changes := map[string]interface{}{}
	if name != "" && name != client.Name {
		changes["name"] = name
	}
	if phone != "" && phone != client.Phone {
		changes["phone"] = phone
	}
	if len(changes) == 0 {
		return &client, nil
	}
	if err := s.db.WithContext(ctx).Model(&client).Updates(changes).Error; err != nil {
		return nil, persistence("update client", err)
	}
	if v, ok := changes["name"]; ok {
		client.Name = v.(string)
	}
	if v, ok := changes["phone"]; ok {
		client.Phone = v.(string)
	}
	return &client, nil
}

// RecalculateStats derives spend and visit counters from completed bookings.
func (s *ClientStore) RecalculateStats(ctx context.Context, id uint) error {
	var agg struct {
		Total float64
		Count int64
	}
	completed := s.db.WithContext(ctx).Model(&models.Booking{}).
		Where("client_id = ? AND status = ?", id, models.StatusCompleted)
	if err := completed.Select("COALESCE(SUM(total_price), 0) AS total, COUNT(*) AS count").
		Scan(&agg).Error; err != nil {
		return persistence("aggregate client bookings", err)
	}

	var lastBookingAt *time.Time
	if agg.Count > 0 {
		var last models.Booking
		if err := s.db.WithContext(ctx).
			Where("client_id = ? AND status = ?", id, models.StatusCompleted).
			Order("booking_date DESC").First(&last).Error; err != nil {
			return persistence("load last booking", err)
		}
		lastBookingAt = &last.BookingDate
	}

	result := s.db.WithContext(ctx).Model(&models.Client{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_spent":     agg.Total,
			"total_bookings":  agg.Count,
			"last_booking_at": lastBookingAt,
		})
	if result.Error != nil {
		return persistence("update client stats", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrClientNotFound
	}
	return nil
}
