package services

import (
	"context"
	"fmt"
	"time"

	"bookingpro-backend/config"
	"bookingpro-backend/models"
	"bookingpro-backend/utils"

	"gorm.io/gorm"
)

type DashboardOverview struct {
	TotalClients     int64                          `json:"totalClients"`
	TotalBookings    int64                          `json:"totalBookings"`
	MonthlyRevenue   float64                        `json:"monthlyRevenue"`
	StatusCounts     map[models.BookingStatus]int64 `json:"statusCounts"`
	UpcomingBookings []UpcomingBooking              `json:"upcomingBookings"`
	RecentBookings   []RecentBooking                `json:"recentBookings"`
}

type UpcomingBooking struct {
	ID       uint                 `json:"id"`
	Customer string               `json:"customer"`
	Service  string               `json:"service"`
	Status   models.BookingStatus `json:"status"`
	When     string               `json:"when"` // "Today", "Tomorrow", "3 days"
}

type RecentBooking struct {
	ID         uint    `json:"id"`
	Customer   string  `json:"customer"`
	Service    string  `json:"service"`
	TotalPrice float64 `json:"totalPrice"`
	Created    string  `json:"created"` // "Today", "Yesterday", "4 days ago"
}

// AnalyticsSummary is revenue from completed bookings with period-over-period
// growth.
type AnalyticsSummary struct {
	CurrentMonthRevenue   float64          `json:"currentMonthRevenue"`
	MonthGrowth           float64          `json:"monthGrowth"`
	CurrentQuarterRevenue float64          `json:"currentQuarterRevenue"`
	QuarterGrowth         float64          `json:"quarterGrowth"`
	CurrentYearRevenue    float64          `json:"currentYearRevenue"`
	YearGrowth            float64          `json:"yearGrowth"`
	TopServices           []ServiceSummary `json:"topServices"`
	TopClients            []ClientSummary  `json:"topClients"`
	QuickStats            QuickStatistics  `json:"quickStats"`
}

type ServiceSummary struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

type ClientSummary struct {
	Name   string  `json:"name"`
	Visits int     `json:"visits"`
	Spent  float64 `json:"spent"`
}

type QuickStatistics struct {
	TotalClients     int     `json:"totalClients"`
	CompletedCount   int     `json:"completedBookings"`
	AvgMonthlyVisits float64 `json:"avgMonthlyVisits"`
	AvgOrderValue    float64 `json:"avgOrderValue"`
}

type ReportService struct {
	db       *gorm.DB
	bookings *BookingStore
	settings *config.Settings
}

func NewReportService(db *gorm.DB, bookings *BookingStore, settings *config.Settings) *ReportService {
	return &ReportService{db: db, bookings: bookings, settings: settings}
}

func (r *ReportService) Dashboard(ctx context.Context, now time.Time) (*DashboardOverview, error) {
	now = now.In(r.settings.Location())
	db := r.db.WithContext(ctx)
	out := &DashboardOverview{UpcomingBookings: []UpcomingBooking{}, RecentBookings: []RecentBooking{}}

	if err := db.Model(&models.Client{}).Count(&out.TotalClients).Error; err != nil {
		return nil, persistence("count clients", err)
	}
	if err := db.Model(&models.Booking{}).Count(&out.TotalBookings).Error; err != nil {
		return nil, persistence("count bookings", err)
	}

	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	revenue, err := r.revenue(ctx, firstOfMonth, firstOfMonth.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	out.MonthlyRevenue = revenue

	if out.StatusCounts, err = r.bookings.CountByStatus(ctx); err != nil {
		return nil, err
	}

	today := utils.BeginningOfDay(now)
	var upcoming []models.Booking
	if err := db.Preload("Service").
		Where("status IN ? AND booking_date >= ? AND booking_date < ?",
			[]models.BookingStatus{models.StatusPending, models.StatusConfirmed}, today, today.AddDate(0, 0, 7)).
		Order("booking_date").Limit(7).Find(&upcoming).Error; err != nil {
		return nil, persistence("list upcoming bookings", err)
	}
	for _, b := range upcoming {
		var label string
		switch days := utils.DaysBetween(now, b.BookingDate.In(now.Location())); days {
		case 0:
			label = "Today"
		case 1:
			label = "Tomorrow"
		default:
			label = fmt.Sprintf("%d days", days)
		}
		out.UpcomingBookings = append(out.UpcomingBookings, UpcomingBooking{
			ID:       b.ID,
			Customer: b.CustomerName,
			Service:  serviceTitle(b),
			Status:   b.Status,
			When:     label,
		})
	}

	var recent []models.Booking
	if err := db.Preload("Service").Order("created_at DESC, id DESC").Limit(5).Find(&recent).Error; err != nil {
		return nil, persistence("list recent bookings", err)
	}
	for _, b := range recent {
		var label string
		switch days := utils.DaysBetween(b.CreatedAt.In(now.Location()), now); days {
		case 0:
			label = "Today"
		case 1:
			label = "Yesterday"
		default:
			label = fmt.Sprintf("%d days ago", days)
		}
		out.RecentBookings = append(out.RecentBookings, RecentBooking{
			ID:         b.ID,
			Customer:   b.CustomerName,
			Service:    serviceTitle(b),
			TotalPrice: b.TotalPrice,
			Created:    label,
		})
	}
	return out, nil
}

func (r *ReportService) Analytics(ctx context.Context, now time.Time) (*AnalyticsSummary, error) {
	now = now.In(r.settings.Location())
	loc := now.Location()
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	quarterStart := getQuarterStart(now)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, loc)

	type period struct{ start, end time.Time }
	periods := []period{
		{firstOfMonth, firstOfMonth.AddDate(0, 1, 0)},
		{firstOfMonth.AddDate(0, -1, 0), firstOfMonth},
		{quarterStart, quarterStart.AddDate(0, 3, 0)},
		{quarterStart.AddDate(0, -3, 0), quarterStart},
		{yearStart, yearStart.AddDate(1, 0, 0)},
		{yearStart.AddDate(-1, 0, 0), yearStart},
	}
	revenue := make([]float64, len(periods))
	for i, p := range periods {
		total, err := r.revenue(ctx, p.start, p.end)
		if err != nil {
			return nil, err
		}
		revenue[i] = total
	}

	summary := &AnalyticsSummary{
		CurrentMonthRevenue:   revenue[0],
		MonthGrowth:           growthPercentage(revenue[0], revenue[1]),
		CurrentQuarterRevenue: revenue[2],
		QuarterGrowth:         growthPercentage(revenue[2], revenue[3]),
		CurrentYearRevenue:    revenue[4],
		YearGrowth:            growthPercentage(revenue[4], revenue[5]),
	}

	var err error
	if summary.TopServices, err = r.topServices(ctx, firstOfMonth, firstOfMonth.AddDate(0, 1, 0), 4); err != nil {
		return nil, err
	}
	if summary.TopClients, err = r.topClients(ctx, firstOfMonth, firstOfMonth.AddDate(0, 1, 0), 4); err != nil {
		return nil, err
	}
	if summary.QuickStats, err = r.quickStatistics(ctx, now); err != nil {
		return nil, err
	}
	return summary, nil
}

// revenue sums completed bookings dated in [start, end).
func (r *ReportService) revenue(ctx context.Context, start, end time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("status = ? AND booking_date >= ? AND booking_date < ?", models.StatusCompleted, start, end).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, persistence("sum revenue", err)
	}
	return total, nil
}

func getQuarterStart(date time.Time) time.Time {
	quarter := (int(date.Month())-1)/3 + 1
	startMonth := time.Month((quarter-1)*3 + 1)
	return time.Date(date.Year(), startMonth, 1, 0, 0, 0, 0, date.Location())
}

func growthPercentage(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / previous) * 100
}

func (r *ReportService) topServices(ctx context.Context, start, end time.Time, limit int) ([]ServiceSummary, error) {
	services := []ServiceSummary{}
	err := r.db.WithContext(ctx).Table("bookings").
		Select("services.title AS name, COUNT(bookings.id) AS count, SUM(bookings.total_price) AS revenue").
		Joins("JOIN services ON services.id = bookings.service_id").
		Where("bookings.status = ? AND bookings.booking_date >= ? AND bookings.booking_date < ?", models.StatusCompleted, start, end).
		Group("services.title").
		Order("revenue DESC").
		Limit(limit).
		Scan(&services).Error
	if err != nil {
		return nil, persistence("top services", err)
	}
	return services, nil
}

func (r *ReportService) topClients(ctx context.Context, start, end time.Time, limit int) ([]ClientSummary, error) {
	clients := []ClientSummary{}
	err := r.db.WithContext(ctx).Table("bookings").
		Select("clients.name AS name, COUNT(bookings.id) AS visits, SUM(bookings.total_price) AS spent").
		Joins("JOIN clients ON clients.id = bookings.client_id").
		Where("bookings.status = ? AND bookings.booking_date >= ? AND bookings.booking_date < ?", models.StatusCompleted, start, end).
		Group("clients.id, clients.name").
		Order("spent DESC").
		Limit(limit).
		Scan(&clients).Error
	if err != nil {
		return nil, persistence("top clients", err)
	}
	return clients, nil
}

func (r *ReportService) quickStatistics(ctx context.Context, now time.Time) (QuickStatistics, error) {
	var stats QuickStatistics
	db := r.db.WithContext(ctx)

	var totalClients int64
	if err := db.Model(&models.Client{}).Count(&totalClients).Error; err != nil {
		return stats, persistence("count clients", err)
	}
	stats.TotalClients = int(totalClients)

	var agg struct {
		Count int64
		Total float64
	}
	if err := db.Model(&models.Booking{}).Where("status = ?", models.StatusCompleted).
		Select("COUNT(*) AS count, COALESCE(SUM(total_price), 0) AS total").
		Scan(&agg).Error; err != nil {
		return stats, persistence("aggregate completed bookings", err)
	}
	stats.CompletedCount = int(agg.Count)
	if agg.Count == 0 {
		return stats, nil
	}
	stats.AvgOrderValue = agg.Total / float64(agg.Count)

	var first models.Booking
	if err := db.Where("status = ?", models.StatusCompleted).Order("booking_date").First(&first).Error; err != nil {
		return stats, persistence("load first completed booking", err)
	}
	start := first.BookingDate.In(now.Location())
	months := (now.Year()-start.Year())*12 + int(now.Month()-start.Month()) + 1
	if months < 1 {
		months = 1
	}
	stats.AvgMonthlyVisits = float64(agg.Count) / float64(months)
	return stats, nil
}

func serviceTitle(b models.Booking) string {
	if b.Service == nil {
		return ""
	}
	return b.Service.Title
}
