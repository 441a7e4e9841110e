// Package generator produces the synthetic customer, product, order, session
// and ad spend tables.
package generator

import (
	"fmt"
	"math"
	"time"

	"ecomsim/internal/config"
	"ecomsim/internal/models"
)

const (
	priceLocation = 3.5
	priceScale    = 0.9
	minPrice      = 0.05

	sessionMeanSeconds = 300
	sessionPagesLambda = 4

	adSpendBase      = 20000
	adSpendPerMonth  = 50
	adSpendFloor     = 1000
	loyaltyRate      = 0.2
	minAge, maxAge   = 18, 75
	maxStock         = 2000
	minRating        = 2.5
	maxRating        = 5.0
	minCostRatio     = 0.4
	maxCostRatio     = 0.8
	minPriceJitter   = 0.85
	maxPriceJitter   = 1.2
	minSpendNoise    = 0.6
	maxSpendNoise    = 1.6
	day              = 24 * time.Hour
)

type Config struct {
	Seed      int64
	Customers int
	Products  int
	Orders    int
	Sessions  int

	// Start is inclusive, End exclusive.
	Start time.Time
	End   time.Time

	SignupStart time.Time
	SignupDays  int
}

func ConfigFrom(g config.GeneratorConfig) (Config, error) {
	start, end, err := g.Window()
	if err != nil {
		return Config{}, err
	}
	signupStart, err := g.SignupWindowStart()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Seed:        g.Seed,
		Customers:   g.Customers,
		Products:    g.Products,
		Orders:      g.Orders,
		Sessions:    g.Sessions,
		Start:       start,
		End:         end,
		SignupStart: signupStart,
		SignupDays:  g.SignupDays,
	}, nil
}

func (c Config) days() int {
	return int(c.End.Sub(c.Start) / day)
}

func (c Config) validate() error {
	if c.Customers <= 0 || c.Products <= 0 || c.Orders <= 0 || c.Sessions <= 0 {
		return fmt.Errorf("row counts must be positive: customers=%d products=%d orders=%d sessions=%d",
			c.Customers, c.Products, c.Orders, c.Sessions)
	}
	if c.days() <= 0 {
		return fmt.Errorf("simulation window must span at least one day")
	}
	if c.SignupDays <= 0 {
		return fmt.Errorf("signup window must span at least one day")
	}
	return nil
}

type Dataset struct {
	Customers []models.Customer
	Products  []models.Product
	Orders    []models.Order
	Sessions  []models.Session
	AdSpend   []models.AdSpend
}

// Generate builds all five tables from one seeded source. Tables are drawn in
// a fixed order (customers, products, orders, sessions, ad spend) so output
// is reproducible.
func Generate(cfg Config) (*Dataset, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	src := NewSource(cfg.Seed)
	ds := &Dataset{}
	ds.Customers = customers(src, cfg)
	ds.Products = products(src, cfg)
	ds.Orders = orders(src, cfg, ds.Customers, ds.Products)
	ds.Sessions = sessions(src, cfg)
	ds.AdSpend = adSpend(src, cfg)
	return ds, nil
}

func customers(src *Source, cfg Config) []models.Customer {
	out := make([]models.Customer, cfg.Customers)
	for i := range out {
		id := i + 1
		loyal := 0
		if src.Bernoulli(loyaltyRate) {
			loyal = 1
		}
		out[i] = models.Customer{
			CustomerID:         id,
			FullName:           Pick(src, firstNames) + " " + Pick(src, lastNames),
			Email:              fmt.Sprintf("user%d@example.com", id),
			Age:                src.IntN(minAge, maxAge),
			Country:            countries.Pick(src),
			SignupDate:         models.Date(src.Day(cfg.SignupStart, cfg.SignupDays)),
			AcquisitionChannel: acquisitionChannels.Pick(src),
			IsLoyaltyMember:    loyal,
		}
	}
	return out
}

func products(src *Source, cfg Config) []models.Product {
	out := make([]models.Product, cfg.Products)
	for i := range out {
		id := i + 1
		category := categories.Pick(src)
		price := math.Max(minPrice, round(src.LogNormal(priceLocation, priceScale), 2))
		cost := round(price*src.Uniform(minCostRatio, maxCostRatio), 2)
		out[i] = models.Product{
			ProductID:   id,
			ProductName: fmt.Sprintf("P-%05d", id),
			Category:    category.Name,
			Subcategory: Pick(src, category.Subcategories),
			Price:       price,
			Cost:        cost,
			Margin:      Margin(price, cost),
			Rating:      round(src.Uniform(minRating, maxRating), 2),
			Stock:       src.IntN(0, maxStock),
		}
	}
	return out
}

func orders(src *Source, cfg Config, cs []models.Customer, ps []models.Product) []models.Order {
	days := cfg.days()
	out := make([]models.Order, cfg.Orders)
	for i := range out {
		orderDate := src.Moment(cfg.Start, days)
		customer := cs[src.IntN(0, len(cs))]
		product := ps[src.IntN(0, len(ps))]
		quantity := quantities.Pick(src)
		unitPrice := round(product.Price*src.Uniform(minPriceJitter, maxPriceJitter), 2)
		discount := discounts.Pick(src)

		out[i] = models.Order{
			OrderID:         i + 1,
			CustomerID:      customer.CustomerID,
			ProductID:       product.ProductID,
			OrderDate:       models.Timestamp(orderDate),
			Quantity:        quantity,
			UnitPrice:       unitPrice,
			DiscountPct:     discount,
			TotalValue:      TotalValue(unitPrice, quantity, discount),
			Status:          statuses.Pick(src),
			PaymentMethod:   paymentMethods.Pick(src),
			Device:          devices.Pick(src),
			Platform:        platforms.Pick(src),
			SignupDate:      customer.SignupDate,
			DaysSinceSignup: DaysSince(customer.SignupDate.Time(), orderDate),
			OrderMonth:      orderDate.Format(models.MonthLayout),
		}
	}
	return out
}

func sessions(src *Source, cfg Config) []models.Session {
	days := cfg.days()
	out := make([]models.Session, cfg.Sessions)
	for i := range out {
		out[i] = models.Session{
			SessionID:          i + 1,
			SessionStart:       models.Timestamp(src.Moment(cfg.Start, days)),
			CustomerID:         src.IntN(1, cfg.Customers+1),
			DurationSeconds:    int(src.Exponential(sessionMeanSeconds)),
			Pages:              src.Poisson(sessionPagesLambda) + 1,
			Device:             devices.Pick(src),
			AcquisitionChannel: acquisitionChannels.Pick(src),
		}
	}
	return out
}

// adSpend emits one row per (month, channel), months chronological and
// channels in adChannels order. The trend is linear in the month's offset
// from the window start.
func adSpend(src *Source, cfg Config) []models.AdSpend {
	first := time.Date(cfg.Start.Year(), cfg.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := cfg.End.Add(-time.Nanosecond)

	var out []models.AdSpend
	for idx, month := 0, first; !month.After(last); idx, month = idx+1, month.AddDate(0, 1, 0) {
		base := float64(adSpendBase + idx*adSpendPerMonth)
		for _, ch := range adChannels {
			spend := math.Max(adSpendFloor, base*src.Uniform(minSpendNoise, maxSpendNoise))
			out = append(out, models.AdSpend{
				Month:    month.Format(models.MonthLayout),
				Channel:  ch,
				SpendUSD: round(spend, 2),
			})
		}
	}
	return out
}

// TotalValue is unit price × quantity less the percentage discount, to cents.
func TotalValue(unitPrice float64, quantity, discountPct int) float64 {
	return round(unitPrice*float64(quantity)*(1-float64(discountPct)/100), 2)
}

func Margin(price, cost float64) float64 {
	return round((price-cost)/price, 3)
}

// DaysSince counts whole days from signup to at, flooring, clipped at zero.
func DaysSince(signup, at time.Time) int {
	days := int(math.Floor(at.Sub(signup).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}
