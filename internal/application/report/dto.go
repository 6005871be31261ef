package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DashboardWindowDays is the length of the daily sales series
const DashboardWindowDays = 30

// ExpiringWindowDays is how far ahead the dashboard looks for expiring products
const ExpiringWindowDays = 7

// DashboardResponse summarizes the store for the back office
type DashboardResponse struct {
	Users         int64             `json:"users"`
	Products      int64             `json:"products"`
	Suppliers     int64             `json:"suppliers"`
	PendingOrders int64             `json:"pending_orders"`
	ExpiringSoon  []ExpiringProduct `json:"expiring_soon"`
	DailySales    []DailySales      `json:"daily_sales"`
}

// ExpiringProduct is a product close to its expiry date
type ExpiringProduct struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand,omitempty"`
	CurrentStock int       `json:"current_stock"`
	ExpiryDate   string    `json:"expiry_date"`
	DaysLeft     int       `json:"days_left"`
}

// DailySales is the revenue of one day
type DailySales struct {
	Date   string          `json:"date"`
	Total  decimal.Decimal `json:"total"`
	Orders int64           `json:"orders"`
}

// Format selects the export encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates an export format, defaulting to CSV
func ParseFormat(raw string) (Format, bool) {
	switch Format(raw) {
	case "", FormatCSV:
		return FormatCSV, true
	case FormatXLSX:
		return FormatXLSX, true
	}
	return "", false
}

// ExportRequest are the query parameters of an export
type ExportRequest struct {
	Format string `form:"format" binding:"omitempty,oneof=csv xlsx"`
	Store  bool   `form:"store"`
}

// File is a generated export
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// StoredFile is an export uploaded to object storage
type StoredFile struct {
	Key       string    `json:"key"`
	Filename  string    `json:"filename"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
