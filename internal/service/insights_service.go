package service

import (
	"sort"

	"stockly-api/internal/model"
	"stockly-api/internal/repository"
)

// Snapshot is the fully derived analytics view of the product
// collection. It is recomputed from scratch on every request and never
// persisted.
type Snapshot struct {
	TotalProducts   int     `json:"total_products"`
	TotalValue      float64 `json:"total_value"`
	TotalQuantity   int     `json:"total_quantity"`
	AveragePrice    float64 `json:"average_price"`
	LowStockItems   int     `json:"low_stock_items"`
	OutOfStockItems int     `json:"out_of_stock_items"`

	// StockUtilization is the percentage of products with stock on
	// hand. ValueDensity and StockCoverage are value and quantity
	// averaged per product.
	StockUtilization float64 `json:"stock_utilization"`
	ValueDensity     float64 `json:"value_density"`
	StockCoverage    float64 `json:"stock_coverage"`

	CategoryDistribution   []CategoryShare   `json:"category_distribution"`
	StatusDistribution     []StatusCount     `json:"status_distribution"`
	PriceRangeDistribution []PriceBand       `json:"price_range_distribution"`
	MonthlyTrend           []MonthPoint      `json:"monthly_trend"`
	TopProducts            []TopProduct      `json:"top_products"`
	LowStockProducts       []LowStockProduct `json:"low_stock_products"`
}

// CategoryShare aggregates one category. Value is the quantity sum so
// pie charts weight slices by stock, not product count.
type CategoryShare struct {
	Name       string  `json:"name"`
	Value      int     `json:"value"`
	Count      int     `json:"count"`
	TotalValue float64 `json:"total_value"`
}

type StatusCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type PriceBand struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// MonthPoint is one calendar month of the reporting year. Products is
// the running cumulative count, MonthlyAdded the additions in that
// month alone.
type MonthPoint struct {
	Month        string `json:"month"`
	Products     int    `json:"products"`
	MonthlyAdded int    `json:"monthly_added"`
}

type TopProduct struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Quantity int     `json:"quantity"`
}

type LowStockProduct struct {
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// A product is low-stock when it has stock on hand but no more than
// LowStockThreshold units. Zero quantity is out-of-stock, never
// low-stock.
const LowStockThreshold = 20

var monthNames = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// ComputeSnapshot derives the analytics snapshot from a product
// collection in a single pass plus the final sorts. It is pure: no
// I/O, no mutation of the input, and an empty collection yields a
// zeroed snapshot with empty collections rather than an error.
func ComputeSnapshot(products []model.Product) *Snapshot {
	snap := &Snapshot{
		CategoryDistribution:   []CategoryShare{},
		StatusDistribution:     []StatusCount{},
		PriceRangeDistribution: []PriceBand{},
		MonthlyTrend:           []MonthPoint{},
		TopProducts:            []TopProduct{},
		LowStockProducts:       []LowStockProduct{},
	}
	if len(products) == 0 {
		return snap
	}

	snap.TotalProducts = len(products)

	categories := map[string]*CategoryShare{}
	statuses := map[string]int{}
	bands := []PriceBand{
		{Name: "$0-$100"},
		{Name: "$100-$500"},
		{Name: "$500-$1000"},
		{Name: "$1000-$2000"},
		{Name: "$2000+"},
	}
	var monthlyAdded [12]int

	// The reporting year is pinned to the UTC year of the first
	// product, not the wall clock, so the trend chart lines up with
	// the data actually loaded.
	dataYear := products[0].CreatedAt.UTC().Year()

	for i := range products {
		p := &products[i]
		qty := int(p.Quantity)

		snap.TotalValue += p.Value()
		snap.TotalQuantity += qty

		switch {
		case qty == 0:
			snap.OutOfStockItems++
		case qty > 0 && qty <= LowStockThreshold:
			snap.LowStockItems++
		}

		cat := p.CategoryOrUnknown()
		share, ok := categories[cat]
		if !ok {
			share = &CategoryShare{Name: cat}
			categories[cat] = share
		}
		share.Count++
		share.Value += qty
		share.TotalValue += p.Value()

		statuses[p.StatusOrUnknown()]++

		// Band boundaries are asymmetric on purpose: $1000-$2000 is
		// the only band closed at its upper bound, so exactly 2000
		// lands there and $2000+ starts strictly above it.
		switch {
		case p.Price < 100:
			bands[0].Value++
		case p.Price < 500:
			bands[1].Value++
		case p.Price < 1000:
			bands[2].Value++
		case p.Price <= 2000:
			bands[3].Value++
		default:
			bands[4].Value++
		}

		created := p.CreatedAt.UTC()
		if created.Year() == dataYear {
			monthlyAdded[created.Month()-1]++
		}
	}

	if snap.TotalQuantity > 0 {
		snap.AveragePrice = snap.TotalValue / float64(snap.TotalQuantity)
	}
	snap.StockUtilization = float64(snap.TotalProducts-snap.OutOfStockItems) / float64(snap.TotalProducts) * 100
	snap.ValueDensity = snap.TotalValue / float64(snap.TotalProducts)
	snap.StockCoverage = float64(snap.TotalQuantity) / float64(snap.TotalProducts)

	for _, share := range categories {
		snap.CategoryDistribution = append(snap.CategoryDistribution, *share)
	}
	sort.Slice(snap.CategoryDistribution, func(i, j int) bool {
		return snap.CategoryDistribution[i].Name < snap.CategoryDistribution[j].Name
	})

	for name, count := range statuses {
		snap.StatusDistribution = append(snap.StatusDistribution, StatusCount{Name: name, Value: count})
	}
	sort.Slice(snap.StatusDistribution, func(i, j int) bool {
		return snap.StatusDistribution[i].Name < snap.StatusDistribution[j].Name
	})

	snap.PriceRangeDistribution = bands

	cumulative := 0
	for i, name := range monthNames {
		cumulative += monthlyAdded[i]
		snap.MonthlyTrend = append(snap.MonthlyTrend, MonthPoint{
			Month:        name,
			Products:     cumulative,
			MonthlyAdded: monthlyAdded[i],
		})
	}

	snap.TopProducts = topProductsByValue(products, 5)
	snap.LowStockProducts = lowStockProducts(products, 5)

	return snap
}

// topProductsByValue returns the n highest-value products. The sort is
// stable so equal values keep their original collection order.
func topProductsByValue(products []model.Product, n int) []TopProduct {
	sorted := make([]model.Product, len(products))
	copy(sorted, products)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value() > sorted[j].Value()
	})

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	top := make([]TopProduct, 0, len(sorted))
	for i := range sorted {
		top = append(top, TopProduct{
			Name:     sorted[i].Name,
			Value:    sorted[i].Value(),
			Quantity: int(sorted[i].Quantity),
		})
	}
	return top
}

// lowStockProducts returns up to n low-stock products ordered by
// ascending quantity, ties kept in collection order.
func lowStockProducts(products []model.Product, n int) []LowStockProduct {
	var low []model.Product
	for i := range products {
		if products[i].Quantity > 0 && int(products[i].Quantity) <= LowStockThreshold {
			low = append(low, products[i])
		}
	}
	sort.SliceStable(low, func(i, j int) bool {
		return low[i].Quantity < low[j].Quantity
	})

	if len(low) > n {
		low = low[:n]
	}
	out := make([]LowStockProduct, 0, len(low))
	for i := range low {
		out = append(out, LowStockProduct{
			Name:     low[i].Name,
			SKU:      low[i].SKU,
			Quantity: int(low[i].Quantity),
		})
	}
	return out
}

type InsightsService interface {
	GetSnapshot() (*Snapshot, error)
}

type insightsService struct {
	productRepo repository.ProductRepository
}

func NewInsightsService(productRepo repository.ProductRepository) InsightsService {
	return &insightsService{productRepo: productRepo}
}

func (s *insightsService) GetSnapshot() (*Snapshot, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, err
	}
	return ComputeSnapshot(products), nil
}
