package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"bookingpro-backend/models"
	"bookingpro-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var bookingOrderColumns = map[string]bool{
	"id": true, "booking_date": true, "created_at": true, "total_price": true, "status": true,
}

type BookingFilter struct {
	ListParams
	Status    string    `form:"status"`
	ClientID  uint      `form:"client_id"`
	ServiceID uint      `form:"service_id"`
	Email     string    `form:"email"`
	From      time.Time `form:"from" time_format:"2006-01-02"`
	To        time.Time `form:"to" time_format:"2006-01-02"`
}

// BookingUpdate writes only the non-nil fields. Status changes go through
// the workflow.
type BookingUpdate struct {
	BookingDate   *time.Time `json:"bookingDate"`
	CustomerName  *string    `json:"customerName"`
	CustomerEmail *string    `json:"customerEmail"`
	CustomerPhone *string    `json:"customerPhone"`
	AccessInfo    *string    `json:"accessInfo"`
	Comments      *string    `json:"comments"`
	TotalPrice    *float64   `json:"totalPrice"`
}

type BookingStore struct {
	db *gorm.DB
}

func NewBookingStore(db *gorm.DB) *BookingStore {
	return &BookingStore{db: db}
}

func (s *BookingStore) WithTx(tx *gorm.DB) *BookingStore {
	return &BookingStore{db: tx}
}

func (s *BookingStore) Get(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.WithContext(ctx).Preload("Service").First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, persistence("load booking", err)
	}
	return &booking, nil
}

func (s *BookingStore) List(ctx context.Context, f BookingFilter) ([]models.Booking, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Booking{})
	if f.Status != "" {
		if !models.BookingStatus(f.Status).Valid() {
			return nil, 0, ErrInvalidStatus
		}
		q = q.Where("status = ?", f.Status)
	}
	if f.ClientID != 0 {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.ServiceID != 0 {
		q = q.Where("service_id = ?", f.ServiceID)
	}
	if f.Email != "" {
		q = q.Where("customer_email = ?", strings.ToLower(strings.TrimSpace(f.Email)))
	}
	if !f.From.IsZero() {
		q = q.Where("booking_date >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("booking_date < ?", f.To.AddDate(0, 0, 1))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, persistence("count bookings", err)
	}
	bookings := []models.Booking{}
	if err := f.apply(q.Preload("Service"), bookingOrderColumns, "booking_date").Find(&bookings).Error; err != nil {
		return nil, 0, persistence("list bookings", err)
	}
	return bookings, total, nil
}

func (s *BookingStore) Create(ctx context.Context, booking *models.Booking) error {
	if err := s.db.WithContext(ctx).Omit("Service").Create(booking).Error; err != nil {
		return persistence("create booking", err)
	}
	return nil
}

func (s *BookingStore) Update(ctx context.Context, id uint, in BookingUpdate) (*models.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	changes := map[string]interface{}{}
	if in.BookingDate != nil {
		changes["booking_date"] = *in.BookingDate
		// A moved booking is due a fresh reminder.
		changes["reminder_sent_at"] = nil
	}
	if in.CustomerName != nil {
		if strings.TrimSpace(*in.CustomerName) == "" {
			return nil, MissingField("name")
		}
		changes["customer_name"] = strings.TrimSpace(*in.CustomerName)
	}
	if in.CustomerEmail != nil {
		email, ok := utils.NormEmail(*in.CustomerEmail)
		if !ok {
			return nil, ErrInvalidEmail
		}
		changes["customer_email"] = email
	}
	if in.CustomerPhone != nil {
		changes["customer_phone"] = strings.TrimSpace(*in.CustomerPhone)
	}
	if in.AccessInfo != nil {
		changes["access_info"] = *in.AccessInfo
	}
	if in.Comments != nil {
		changes["comments"] = *in.Comments
	}
	if in.TotalPrice != nil {
		changes["total_price"] = *in.TotalPrice
	}
	if len(changes) == 0 {
		return booking, nil
	}
	if err := s.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Updates(changes).Error; err != nil {
		return nil, persistence("update booking", err)
	}
	return s.Get(ctx, id)
}

func (s *BookingStore) UpdateStatus(ctx context.Context, id uint, status models.BookingStatus) error {
	result := s.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return persistence("update booking status", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// Delete removes the booking row; its notes and logs are kept.
func (s *BookingStore) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Booking{}, id)
	if result.Error != nil {
		return persistence("delete booking", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

// AddNote appends an audit entry. uuid.Nil marks a system entry.
func (s *BookingStore) AddNote(ctx context.Context, bookingID uint, content string, createdBy uuid.UUID) (*models.BookingNote, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, MissingField("note")
	}
	note := models.BookingNote{BookingID: bookingID, NoteContent: content}
	if createdBy != uuid.Nil {
		note.CreatedBy = &createdBy
	}
	if err := s.db.WithContext(ctx).Create(&note).Error; err != nil {
		return nil, persistence("add booking note", err)
	}
	return &note, nil
}

// Notes lists the audit trail newest first.
func (s *BookingStore) Notes(ctx context.Context, bookingID uint) ([]models.BookingNote, error) {
	notes := []models.BookingNote{}
	if err := s.db.WithContext(ctx).Where("booking_id = ?", bookingID).
		Order("created_at DESC, id DESC").Find(&notes).Error; err != nil {
		return nil, persistence("list booking notes", err)
	}
	return notes, nil
}

// DueForReminder lists confirmed bookings in [from, to) not yet reminded.
func (s *BookingStore) DueForReminder(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := s.db.WithContext(ctx).Preload("Service").
		Where("status = ? AND booking_date >= ? AND booking_date < ? AND reminder_sent_at IS NULL",
			models.StatusConfirmed, from, to).
		Order("booking_date").Find(&bookings).Error
	if err != nil {
		return nil, persistence("list due reminders", err)
	}
	return bookings, nil
}

func (s *BookingStore) MarkReminded(ctx context.Context, id uint, at time.Time) error {
	if err := s.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).
		Update("reminder_sent_at", at).Error; err != nil {
		return persistence("mark reminder sent", err)
	}
	return nil
}

func (s *BookingStore) CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error) {
	var rows []struct {
		Status models.BookingStatus
		Count  int64
	}
	if err := s.db.WithContext(ctx).Model(&models.Booking{}).
		Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, persistence("count bookings by status", err)
	}
	counts := make(map[models.BookingStatus]int64, len(models.BookingStatuses))
	for _, st := range models.BookingStatuses {
		counts[st] = 0
	}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
