package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pos-storefront-backend/internal/models"
	"pos-storefront-backend/internal/repositories"

	"github.com/shopspring/decimal"
)

const (
	reportDateLayout = "2006-01-02"
	maxReportDays    = 366
	topProductsLimit = 5
)

type ReportService struct {
	orderRepo repositories.OrderRepository
}

func NewReportService(orderRepo repositories.OrderRepository) *ReportService {
	return &ReportService{orderRepo: orderRepo}
}

type ProductSales struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	NameEn    string          `json:"name_en,omitempty"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type DailyRevenue struct {
	Date    string          `json:"date"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

type DashboardReport struct {
	From              string          `json:"from"`
	To                string          `json:"to"`
	OrderCount        int             `json:"order_count"`
	Revenue           decimal.Decimal `json:"revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	ByStatus          map[string]int  `json:"by_status"`
	TopProducts       []ProductSales  `json:"top_products"`
	Daily             []DailyRevenue  `json:"daily"`
}

// ParseReportRange parses inclusive YYYY-MM-DD bounds. Empty bounds default
// to the 30 days ending today.
func ParseReportRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := today
	if to != "" {
		t, err := time.Parse(reportDateLayout, to)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: to must be YYYY-MM-DD", ErrInvalidInput)
		}
		end = t
	}
	start := end.AddDate(0, 0, -29)
	if from != "" {
		t, err := time.Parse(reportDateLayout, from)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: from must be YYYY-MM-DD", ErrInvalidInput)
		}
		start = t
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from is after to", ErrInvalidInput)
	}
	if int(end.Sub(start).Hours()/24)+1 > maxReportDays {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: range exceeds %d days", ErrInvalidInput, maxReportDays)
	}
	return start, end, nil
}

// Dashboard aggregates the orders created between from and to, both inclusive days.
func (s *ReportService) Dashboard(ctx context.Context, from, to time.Time) (*DashboardReport, error) {
	orders, err := s.orderRepo.ListCreatedBetween(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return BuildDashboard(orders, from, to), nil
}

func BuildDashboard(orders []models.Order, from, to time.Time) *DashboardReport {
	report := &DashboardReport{
		From:        from.Format(reportDateLayout),
		To:          to.Format(reportDateLayout),
		Revenue:     decimal.Zero,
		ByStatus:    map[string]int{},
		TopProducts: []ProductSales{},
	}

	daily := map[string]*DailyRevenue{}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(reportDateLayout)
		daily[key] = &DailyRevenue{Date: key, Revenue: decimal.Zero}
	}

	products := map[string]*ProductSales{}
	counted := 0
	for _, order := range orders {
		report.OrderCount++
		report.ByStatus[order.Status]++
		if order.Status == models.OrderStatusCancelled {
			continue
		}
		counted++
		report.Revenue = report.Revenue.Add(order.Total)

		if point, ok := daily[order.CreatedAt.UTC().Format(reportDateLayout)]; ok {
			point.Orders++
			point.Revenue = point.Revenue.Add(order.Total)
		}

		for _, item := range order.Items {
			ps, ok := products[item.ProductID]
			if !ok {
				ps = &ProductSales{ProductID: item.ProductID, Name: item.Name, NameEn: item.NameEn, Revenue: decimal.Zero}
				products[item.ProductID] = ps
			}
			ps.Quantity += item.Quantity
			ps.Revenue = ps.Revenue.Add(item.LineTotal)
		}
	}

	if counted > 0 {
		report.AverageOrderValue = report.Revenue.Div(decimal.NewFromInt(int64(counted))).Round(2)
	} else {
		report.AverageOrderValue = decimal.Zero
	}

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		report.Daily = append(report.Daily, *daily[day.Format(reportDateLayout)])
	}

	for _, ps := range products {
		report.TopProducts = append(report.TopProducts, *ps)
	}
	sort.Slice(report.TopProducts, func(i, j int) bool {
		a, b := report.TopProducts[i], report.TopProducts[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.ProductID < b.ProductID
	})
	if len(report.TopProducts) > topProductsLimit {
		report.TopProducts = report.TopProducts[:topProductsLimit]
	}
	return report
}
