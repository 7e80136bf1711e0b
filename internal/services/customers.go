package services

import (
	"sort"
	"strings"
	"time"

	"github.com/nettalink/insights-backend/internal/config"
	"github.com/nettalink/insights-backend/internal/ingest"
	"github.com/nettalink/insights-backend/internal/normalize"
	"github.com/nettalink/insights-backend/internal/platform/logger"
	"github.com/nettalink/insights-backend/internal/scoring"
	"github.com/nettalink/insights-backend/internal/types"
)

// CustomerFilter holds the optional query filters for the customer list.
// Empty fields match everything; Search matches ID, name or phone.
type CustomerFilter struct {
	Status   string
	Package  string
	Location string
	Sales    string
	Search   string
}

func (f CustomerFilter) matches(c *types.Customer) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Package != "" && c.Package != f.Package {
		return false
	}
	if f.Location != "" && c.Location != f.Location {
		return false
	}
	if f.Sales != "" && c.Sales != f.Sales {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(c.CustomerID), q) &&
			!strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.Phone), q) {
			return false
		}
	}
	return true
}

// CustomerService serves the row-level endpoints: filtered listings, new
// install (PSB) windows, unpaid blacklists and the coordinate map feed.
type CustomerService struct {
	log     *logger.Logger
	cfg     config.Config
	dataset *ingest.Dataset
}

func NewCustomerService(cfg config.Config, dataset *ingest.Dataset, baseLog *logger.Logger) *CustomerService {
	return &CustomerService{
		log:     baseLog.With("service", "CustomerService"),
		cfg:     cfg,
		dataset: dataset,
	}
}

// List returns filtered customer rows, capped at the display limit.
func (s *CustomerService) List(filter CustomerFilter) (M, error) {
	customers, err := s.dataset.Load()
	if err != nil {
		return nil, err
	}

	displayed := []M{}
	filtered := 0
	for i := range customers {
		c := &customers[i]
		if !filter.matches(c) {
			continue
		}
		filtered++
		if len(displayed) < s.cfg.MaxDisplayRows {
			displayed = append(displayed, M{
				types.ColCustomerID:   c.CustomerID,
				types.ColName:         c.Name,
				types.ColPhone:        c.Phone,
				types.ColPackage:      c.Package,
				types.ColPrice:        c.Price,
				types.ColStatus:       c.Status,
				types.ColLocation:     c.Location,
				types.ColSales:        c.Sales,
				types.ColRegistration: c.Registration,
				types.ColLastPayment:  c.LastPayment,
				types.ColDueDay:       c.DueDay,
				types.ColAddress:      c.Address,
			})
		}
	}

	return M{
		"total_customers": len(customers),
		"filtered_count":  filtered,
		"displayed_count": len(displayed),
		"customers":       displayed,
	}, nil
}

// PSBCheck reports new installs (pemasangan baru) registered inside the
// requested date window, with daily, sales, package and location rollups.
func (s *CustomerService) PSBCheck(startDate, endDate, sales string) (M, error) {
	customers, err := s.dataset.Load()
	if err != nil {
		return nil, err
	}

	var start, end time.Time
	hasStart, hasEnd := false, false
	if startDate != "" {
		start, hasStart = normalize.ParseFlexibleDate(startDate)
	}
	if endDate != "" {
		end, hasEnd = normalize.ParseFlexibleDate(endDate)
	}

	salesCounts := bucketMap{}
	packageCounts := map[string]int{}
	locationCounts := map[string]int{}
	daily := map[string]int{}
	matches := []M{}

	for i := range customers {
		c := &customers[i]
		reg, ok := normalize.ParseFlexibleDate(c.Registration)
		if !ok {
			continue
		}
		if hasStart && reg.Before(start) {
			continue
		}
		if hasEnd && reg.After(end) {
			continue
		}
		if sales != "" && c.Sales != sales {
			continue
		}

		price := normalize.CleanPrice(c.Price)
		if c.Sales != "" {
			b := salesCounts.get(c.Sales)
			b.Count++
			b.Revenue += price
			b.Cost += normalize.CleanIncentive(c.Incentive)
		}
		if c.Package != "" {
			packageCounts[c.Package]++
		}
		if c.Location != "" {
			locationCounts[c.Location]++
		}
		daily[reg.Format("2006-01-02")]++

		matches = append(matches, M{
			types.ColCustomerID:   c.CustomerID,
			types.ColName:         c.Name,
			types.ColPhone:        c.Phone,
			types.ColPackage:      c.Package,
			types.ColPrice:        c.Price,
			types.ColStatus:       c.Status,
			types.ColLocation:     c.Location,
			types.ColSales:        c.Sales,
			types.ColRegistration: reg.Format("2006-01-02"),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i][types.ColRegistration].(string) < matches[j][types.ColRegistration].(string)
	})

	salesSummary := []M{}
	for _, b := range salesCounts.sortedBy(byCountDesc, 0) {
		salesSummary = append(salesSummary, M{
			"sales_name":    b.Name,
			"install_count": b.Count,
			"revenue":       b.Revenue,
			"incentive_fee": b.Cost,
		})
	}

	days := make([]string, 0, len(daily))
	for d := range daily {
		days = append(days, d)
	}
	sort.Strings(days)
	dailySummary := []M{}
	for _, d := range days {
		dailySummary = append(dailySummary, M{"date": d, "count": daily[d]})
	}

	return M{
		"summary": M{
			"total_psb":  len(matches),
			"start_date": startDate,
			"end_date":   endDate,
			"sales":      sales,
		},
		"by_sales":       salesSummary,
		"by_package":     packageCounts,
		"by_location":    locationCounts,
		"daily_installs": dailySummary,
		"customers":      matches,
	}, nil
}

// Blacklist lists customers that have never paid since signing up,
// regardless of subscription status. Candidates are rows carrying the
// no-payment sentinel; months unpaid count from the registration date, so
// a fresh signup is not blacklisted yet.
func (s *CustomerService) Blacklist(minMonths int, sales string) (M, error) {
	if minMonths <= 0 {
		minMonths = 3
	}
	customers, err := s.dataset.Load()
	if err != nil {
		return nil, err
	}
	derived := scoring.Derive(customers, time.Now())

	rows := []M{}
	totalUnpaidRevenue := 0
	bySales := map[string]int{}
	byLocation := map[string]int{}
	for i := range derived {
		d := &derived[i]
		c := d.Customer
		if strings.TrimSpace(c.LastPayment) != types.NoPaymentSentinel {
			continue
		}
		if sales != "" && c.Sales != sales {
			continue
		}
		monthsUnpaid := d.TenureDays / 30
		if monthsUnpaid < minMonths {
			continue
		}
		totalUnpaidRevenue += d.Price * monthsUnpaid
		if c.Sales != "" {
			bySales[c.Sales]++
		}
		if c.Location != "" {
			byLocation[c.Location]++
		}
		rows = append(rows, M{
			types.ColCustomerID:   c.CustomerID,
			types.ColName:         c.Name,
			types.ColPhone:        c.Phone,
			types.ColPackage:      c.Package,
			types.ColPrice:        c.Price,
			types.ColLocation:     c.Location,
			types.ColSales:        c.Sales,
			types.ColStatus:       c.Status,
			types.ColRegistration: c.Registration,
			"Days_Unpaid":         d.TenureDays,
			"Months_Unpaid":       monthsUnpaid,
			"Estimated_Arrears":   d.Price * monthsUnpaid,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i]["Days_Unpaid"].(int) > rows[j]["Days_Unpaid"].(int)
	})

	return M{
		"summary": M{
			"total_blacklisted": len(rows),
			"min_months":        minMonths,
			"sales":             sales,
			"estimated_arrears": totalUnpaidRevenue,
			"arrears_formatted": formatRupiah(totalUnpaidRevenue),
		},
		"by_sales":    bySales,
		"by_location": byLocation,
		"customers":   rows,
	}, nil
}

// MapData returns every customer with a usable coordinate, for the map
// overlay.
func (s *CustomerService) MapData() (M, error) {
	customers, err := s.dataset.Load()
	if err != nil {
		return nil, err
	}

	points := []M{}
	skipped := 0
	for i := range customers {
		c := &customers[i]
		lat, lng, ok := normalize.ParseCoordinate(c.Coordinate)
		if !ok || (lat == 0 && lng == 0) {
			skipped++
			continue
		}
		points = append(points, M{
			"id":       c.CustomerID,
			"name":     c.Name,
			"lat":      lat,
			"lng":      lng,
			"status":   c.Status,
			"package":  c.Package,
			"price":    normalize.CleanPrice(c.Price),
			"location": c.Location,
			"sales":    c.Sales,
			"address":  c.Address,
		})
	}

	return M{
		"total_customers":     len(customers),
		"mapped_customers":    len(points),
		"missing_coordinates": skipped,
		"points":              points,
	}, nil
}

// Filters returns the distinct values for each filterable column, sorted.
func (s *CustomerService) Filters() (M, error) {
	customers, err := s.dataset.Load()
	if err != nil {
		return nil, err
	}

	statuses := map[string]bool{}
	packages := map[string]bool{}
	locations := map[string]bool{}
	sales := map[string]bool{}
	for i := range customers {
		c := &customers[i]
		if c.Status != "" {
			statuses[c.Status] = true
		}
		if c.Package != "" {
			packages[c.Package] = true
		}
		if c.Location != "" {
			locations[c.Location] = true
		}
		if c.Sales != "" {
			sales[c.Sales] = true
		}
	}

	return M{
		"statuses":  sortedKeys(statuses),
		"packages":  sortedKeys(packages),
		"locations": sortedKeys(locations),
		"sales":     sortedKeys(sales),
	}, nil
}

// Locations returns every service location with customer counts.
func (s *CustomerService) Locations() (M, error) {
	customers, err := s.dataset.Load()
	if err != nil {
		return nil, err
	}

	counts := bucketMap{}
	for i := range customers {
		c := &customers[i]
		if c.Location == "" {
			continue
		}
		b := counts.get(c.Location)
		b.Count++
		if c.Active() {
			b.Revenue += normalize.CleanPrice(c.Price)
		}
	}

	locations := []M{}
	for _, b := range counts.sortedBy(byCountDesc, 0) {
		locations = append(locations, M{
			"name":           b.Name,
			"customer_count": b.Count,
			"revenue":        b.Revenue,
		})
	}

	return M{
		"total_locations": len(locations),
		"locations":       locations,
	}, nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
