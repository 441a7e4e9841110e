package models

import "time"

const (
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
	MonthLayout     = "2006-01"
)

// Timestamp renders as "YYYY-MM-DD HH:MM:SS" in CSV output.
type Timestamp time.Time

func (t Timestamp) MarshalCSV() (string, error) {
	return time.Time(t).Format(TimestampLayout), nil
}

func (t Timestamp) Time() time.Time { return time.Time(t) }

// Date renders as "YYYY-MM-DD" in CSV output.
type Date time.Time

func (d Date) MarshalCSV() (string, error) {
	return time.Time(d).Format(DateLayout), nil
}

func (d Date) Time() time.Time { return time.Time(d) }

type Customer struct {
	CustomerID         int    `csv:"customer_id"`
	FullName           string `csv:"full_name"`
	Email              string `csv:"email"`
	Age                int    `csv:"age"`
	Country            string `csv:"country"`
	SignupDate         Date   `csv:"signup_date"`
	AcquisitionChannel string `csv:"acquisition_channel"`
	IsLoyaltyMember    int    `csv:"is_loyalty_member"`
}

type Product struct {
	ProductID   int     `csv:"product_id"`
	ProductName string  `csv:"product_name"`
	Category    string  `csv:"category"`
	Subcategory string  `csv:"subcategory"`
	Price       float64 `csv:"price"`
	Cost        float64 `csv:"cost"`
	Margin      float64 `csv:"margin"`
	Rating      float64 `csv:"rating"`
	Stock       int     `csv:"stock"`
}

// Order carries the derived signup_date, days_since_signup and order_month
// columns joined in from the customer table at generation time.
type Order struct {
	OrderID         int       `csv:"order_id"`
	CustomerID      int       `csv:"customer_id"`
	ProductID       int       `csv:"product_id"`
	OrderDate       Timestamp `csv:"order_date"`
	Quantity        int       `csv:"quantity"`
	UnitPrice       float64   `csv:"unit_price"`
	DiscountPct     int       `csv:"discount_pct"`
	TotalValue      float64   `csv:"total_value"`
	Status          string    `csv:"status"`
	PaymentMethod   string    `csv:"payment_method"`
	Device          string    `csv:"device"`
	Platform        string    `csv:"platform"`
	SignupDate      Date      `csv:"signup_date"`
	DaysSinceSignup int       `csv:"days_since_signup"`
	OrderMonth      string    `csv:"order_month"`
}

type Session struct {
	SessionID          int       `csv:"session_id"`
	CustomerID         int       `csv:"customer_id"`
	SessionStart       Timestamp `csv:"session_start"`
	DurationSeconds    int       `csv:"duration_seconds"`
	Pages              int       `csv:"pages"`
	Device             string    `csv:"device"`
	AcquisitionChannel string    `csv:"acquisition_channel"`
}

type AdSpend struct {
	Month    string  `csv:"month"`
	Channel  string  `csv:"channel"`
	SpendUSD float64 `csv:"spend_usd"`
}
