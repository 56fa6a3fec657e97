package http

import (
	"net/http"
	"testing"
)

func TestVehicleSummary(t *testing.T) {
	srv, _ := newTestServer(t)
	veh := createRecord(t, srv, "vehicles", "", `{"name":"Family SUV","status":"active"}`)
	createRecord(t, srv, "maintenance_records", veh.ID, `{"description":"Oil change","service_date":"2026-01-10","cost_cents":2500}`)
	createRecord(t, srv, "maintenance_records", veh.ID, `{"description":"Brakes","service_date":"2026-02-01","cost_cents":4999,"due_date":"2026-03-20"}`)
	createRecord(t, srv, "maintenance_records", veh.ID, `{"description":"Wash","service_date":"2026-02-15"}`)
	createRecord(t, srv, "odometer_logs", veh.ID, `{"read_date":"2026-01-01","reading":41000}`)
	createRecord(t, srv, "odometer_logs", veh.ID, `{"read_date":"2026-03-01","reading":42500}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/vehicles/"+veh.ID+"/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	var got vehicleSummary
	decodeInto(t, rec, &got)

	if got.MaintenanceCount != 3 {
		t.Errorf("MaintenanceCount = %d, want 3", got.MaintenanceCount)
	}
	// Missing cost contributes zero, not an error.
	if got.TotalCostCents != 7499 {
		t.Errorf("TotalCostCents = %d, want 7499", got.TotalCostCents)
	}
	if got.TotalCost != "$74.99" {
		t.Errorf("TotalCost = %q", got.TotalCost)
	}
	if got.LatestOdometer == nil || *got.LatestOdometer != 42500 {
		t.Errorf("LatestOdometer = %v, want 42500", got.LatestOdometer)
	}
	if got.NextDue == nil || got.NextDue.DaysUntil != 5 || got.NextDue.Label != "In 5 days" {
		t.Errorf("NextDue = %+v", got.NextDue)
	}
}

func TestVehicleSummaryUnknownVehicle(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/vehicles/nope/summary", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestLowStockStrictThreshold(t *testing.T) {
	srv, _ := newTestServer(t)
	createRecord(t, srv, "inventory_items", "", `{"name":"AA batteries","quantity":1,"min_quantity":4}`)
	createRecord(t, srv, "inventory_items", "", `{"name":"Paper towels","quantity":4,"min_quantity":4}`)
	createRecord(t, srv, "inventory_items", "", `{"name":"Soap","quantity":9}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/inventory/low-stock", "")
	var got struct {
		Items []lowStockRow `json:"items"`
		Count int           `json:"count"`
	}
	decodeInto(t, rec, &got)
	if got.Count != 1 || got.Items[0].Name != "AA batteries" {
		t.Fatalf("low stock = %+v", got)
	}
}

func TestInventoryByLocationFallbackBucket(t *testing.T) {
	srv, _ := newTestServer(t)
	createRecord(t, srv, "inventory_items", "", `{"name":"Drill","location":"Garage","quantity":1}`)
	createRecord(t, srv, "inventory_items", "", `{"name":"Ladder","location":"Garage","quantity":1}`)
	createRecord(t, srv, "inventory_items", "", `{"name":"Mystery box","quantity":1}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/inventory/by-location", "")
	var got struct {
		Locations []string                  `json:"locations"`
		Groups    map[string][]inventoryRow `json:"groups"`
	}
	decodeInto(t, rec, &got)

	if len(got.Locations) != 2 {
		t.Fatalf("locations = %v", got.Locations)
	}
	if len(got.Groups["Garage"]) != 2 {
		t.Errorf("Garage has %d items", len(got.Groups["Garage"]))
	}
	if len(got.Groups["Unspecified Location"]) != 1 {
		t.Errorf("fallback bucket = %+v", got.Groups["Unspecified Location"])
	}
}

func TestInventoryByLocationEmpty(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/inventory/by-location", "")
	var got struct {
		Locations []string `json:"locations"`
	}
	decodeInto(t, rec, &got)
	// No records means no buckets, not an empty fallback bucket.
	if len(got.Locations) != 0 {
		t.Fatalf("locations = %v, want none", got.Locations)
	}
}

func TestNutritionDay(t *testing.T) {
	srv, _ := newTestServer(t)
	meal := createRecord(t, srv, "meals", "", `{"meal_date":"2026-03-15","meal_type":"lunch"}`)
	createRecord(t, srv, "meal_entries", meal.ID, `{"food_name":"Sandwich","calories":450,"protein_g":22}`)
	createRecord(t, srv, "meal_entries", meal.ID, `{"food_name":"Apple","calories":80}`)
	other := createRecord(t, srv, "meals", "", `{"meal_date":"2026-03-14","meal_type":"dinner"}`)
	createRecord(t, srv, "meal_entries", other.ID, `{"food_name":"Pasta","calories":700}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/nutrition/day?date=2026-03-15", "")
	var got nutritionDay
	decodeInto(t, rec, &got)

	if got.Meals != 1 || got.Entries != 2 {
		t.Fatalf("meals=%d entries=%d", got.Meals, got.Entries)
	}
	if got.Totals.Calories != 530 {
		t.Errorf("Calories = %d, want 530", got.Totals.Calories)
	}
	// Absent macros sum as zero.
	if got.Totals.ProteinG != 22 {
		t.Errorf("ProteinG = %d, want 22", got.Totals.ProteinG)
	}
	if p := got.Progress["calories"]; p.Percent != 27 || p.BarWidth != 27 {
		t.Errorf("calories progress = %+v", p)
	}
}

func TestNutritionDayBadDate(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/nutrition/day?date=tomorrow", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestTripCountdown(t *testing.T) {
	srv, _ := newTestServer(t)
	trip := createRecord(t, srv, "trips", "", `{"name":"Lisbon","status":"booked","start_date":"2026-03-20"}`)
	past := createRecord(t, srv, "trips", "", `{"name":"Old","status":"completed","start_date":"2026-03-14"}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/trips/"+trip.ID+"/countdown", "")
	var got tripCountdown
	decodeInto(t, rec, &got)
	if got.DaysUntil != 5 || got.Label != "In 5 days" {
		t.Fatalf("countdown = %+v", got)
	}

	rec = doJSON(t, srv, http.MethodGet, "/api/trips/"+past.ID+"/countdown", "")
	decodeInto(t, rec, &got)
	if got.DaysUntil != -1 || got.Label != "1 day ago" {
		t.Fatalf("past countdown = %+v", got)
	}
}

func TestShoppingProgressUsesUnclampedPercent(t *testing.T) {
	srv, _ := newTestServer(t)
	list := createRecord(t, srv, "shopping_lists", "", `{"name":"Weekly"}`)
	createRecord(t, srv, "shopping_items", list.ID, `{"name":"milk","is_done":true}`)
	createRecord(t, srv, "shopping_items", list.ID, `{"name":"eggs","is_done":true}`)
	createRecord(t, srv, "shopping_items", list.ID, `{"name":"bread"}`)
	createRecord(t, srv, "shopping_items", list.ID, `{"name":"jam"}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/shopping/"+list.ID+"/progress", "")
	var got shoppingProgress
	decodeInto(t, rec, &got)
	if got.Total != 4 || got.Done != 2 {
		t.Fatalf("progress = %+v", got)
	}
	if got.Progress.Percent != 50 || got.Progress.Remaining != 2 {
		t.Fatalf("progress detail = %+v", got.Progress)
	}
}

func TestReadingProgressOverTarget(t *testing.T) {
	srv, _ := newTestServer(t)
	book := createRecord(t, srv, "books", "", `{"title":"Dune","status":"reading","total_pages":200}`)
	createRecord(t, srv, "reading_logs", book.ID, `{"log_date":"2026-03-01","pages_read":120}`)
	createRecord(t, srv, "reading_logs", book.ID, `{"log_date":"2026-03-10","pages_read":100}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/reading/"+book.ID+"/progress", "")
	var got readingProgress
	decodeInto(t, rec, &got)

	if got.PagesRead != 220 {
		t.Fatalf("PagesRead = %d", got.PagesRead)
	}
	// Percent reports the true overshoot; only the bar clamps.
	if got.Progress.Percent != 110 || got.Progress.BarWidth != 100 {
		t.Fatalf("progress = %+v", got.Progress)
	}
	if got.Progress.Remaining != -20 {
		t.Fatalf("Remaining = %d, want -20", got.Progress.Remaining)
	}
	if got.LastRead != "2026-03-10" {
		t.Fatalf("LastRead = %q", got.LastRead)
	}
}

func TestFinanceMonthCalendarBoundaries(t *testing.T) {
	srv, _ := newTestServer(t)
	acct := createRecord(t, srv, "accounts", "", `{"name":"Checking"}`)
	createRecord(t, srv, "transactions", acct.ID, `{"description":"Rent","category":"Housing","tx_date":"2026-03-01","amount_cents":-150000}`)
	createRecord(t, srv, "transactions", acct.ID, `{"description":"Groceries","tx_date":"2026-03-14","amount_cents":-8250}`)
	createRecord(t, srv, "transactions", acct.ID, `{"description":"Salary","category":"Income","tx_date":"2026-03-05","amount_cents":400000}`)
	// Same day last year and late February stay out of March 2026.
	createRecord(t, srv, "transactions", acct.ID, `{"description":"Old rent","category":"Housing","tx_date":"2025-03-01","amount_cents":-140000}`)
	createRecord(t, srv, "transactions", acct.ID, `{"description":"Feb dinner","tx_date":"2026-02-28","amount_cents":-5000}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/finance/month", "")
	var got financeMonth
	decodeInto(t, rec, &got)

	if got.Year != 2026 || got.Month != 3 || got.Count != 3 {
		t.Fatalf("month view = %+v", got)
	}
	if got.SpentCents != 158250 || got.IncomeCents != 400000 {
		t.Fatalf("spent=%d income=%d", got.SpentCents, got.IncomeCents)
	}
	if got.NetCents != 241750 {
		t.Fatalf("NetCents = %d", got.NetCents)
	}
	if got.ByCategory["Uncategorized"] != -8250 {
		t.Fatalf("ByCategory = %+v", got.ByCategory)
	}
}

func TestFinanceMonthBadMonth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/finance/month?month=13", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestUpcomingRenewals(t *testing.T) {
	srv, _ := newTestServer(t)
	prop := createRecord(t, srv, "properties", "", `{"name":"Home"}`)
	createRecord(t, srv, "renewals", prop.ID, `{"name":"Internet","cadence":"monthly","start_date":"2026-01-20","cost_cents":5999}`)
	createRecord(t, srv, "renewals", prop.ID, `{"name":"Insurance","cadence":"yearly","start_date":"2025-09-01","cost_cents":120000}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/household/renewals/upcoming?days=30", "")
	var got struct {
		Renewals       []upcomingRenewal `json:"renewals"`
		TotalCostCents int64             `json:"total_cost_cents"`
	}
	decodeInto(t, rec, &got)

	// Internet renews 2026-03-20; insurance not until September.
	if len(got.Renewals) != 1 || got.Renewals[0].Name != "Internet" {
		t.Fatalf("renewals = %+v", got.Renewals)
	}
	if got.Renewals[0].NextDate != "2026-03-20" || got.Renewals[0].DaysUntil != 5 {
		t.Fatalf("renewal detail = %+v", got.Renewals[0])
	}
	if got.TotalCostCents != 5999 {
		t.Fatalf("TotalCostCents = %d", got.TotalCostCents)
	}
}

func TestDashboardAssemblesWidgets(t *testing.T) {
	srv, _ := newTestServer(t)
	createRecord(t, srv, "inventory_items", "", `{"name":"AA","quantity":0,"min_quantity":2}`)
	createRecord(t, srv, "trips", "", `{"name":"Lisbon","status":"booked","start_date":"2026-03-20"}`)
	list := createRecord(t, srv, "shopping_lists", "", `{"name":"Weekly"}`)
	createRecord(t, srv, "shopping_items", list.ID, `{"name":"milk"}`)
	createRecord(t, srv, "media_items", "", `{"title":"Heat","status":"planned"}`)

	rec := doJSON(t, srv, http.MethodGet, "/api/dashboard", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
	var got dashboard
	decodeInto(t, rec, &got)

	if got.LowStockCount != 1 {
		t.Errorf("LowStockCount = %d", got.LowStockCount)
	}
	if got.NextTrip == nil || got.NextTrip.DaysUntil != 5 {
		t.Errorf("NextTrip = %+v", got.NextTrip)
	}
	if got.OpenShoppingRows != 1 {
		t.Errorf("OpenShoppingRows = %d", got.OpenShoppingRows)
	}
	if got.MediaByStatus["planned"] != 1 {
		t.Errorf("MediaByStatus = %+v", got.MediaByStatus)
	}
}

func TestViewCacheInvalidatedByMutation(t *testing.T) {
	srv, _ := newTestServer(t)
	createRecord(t, srv, "inventory_items", "", `{"name":"AA","quantity":0,"min_quantity":2}`)

	first := doJSON(t, srv, http.MethodGet, "/api/inventory/low-stock", "")
	if first.Header().Get("X-Cache") == "hit" {
		t.Fatal("first read should miss the cache")
	}
	second := doJSON(t, srv, http.MethodGet, "/api/inventory/low-stock", "")
	if second.Header().Get("X-Cache") != "hit" {
		t.Fatal("second read should hit the cache")
	}

	createRecord(t, srv, "inventory_items", "", `{"name":"Bulbs","quantity":0,"min_quantity":1}`)

	third := doJSON(t, srv, http.MethodGet, "/api/inventory/low-stock", "")
	if third.Header().Get("X-Cache") == "hit" {
		t.Fatal("mutation must invalidate the cached view")
	}
	var got struct {
		Count int `json:"count"`
	}
	decodeInto(t, third, &got)
	if got.Count != 2 {
		t.Fatalf("count = %d after second item", got.Count)
	}
}
