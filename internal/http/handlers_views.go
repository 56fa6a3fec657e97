package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"lifedash/internal/core"
	"lifedash/internal/derive"
	"lifedash/internal/record"
)

// cachedView serves a derived view from the LRU cache, computing and
// storing it on miss. Keys are prefixed with the view's collection so
// mutations can invalidate by prefix.
func (s *Server) cachedView(w http.ResponseWriter, key string, compute func() (any, int, error)) {
	if data, ok := s.viewCache.Get(key); ok {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("X-Cache", "hit")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}

	v, status, err := compute()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if status != http.StatusOK {
		writeJSON(w, status, v)
		return
	}

	data, err := marshalView(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode view")
		return
	}
	s.viewCache.Set(key, data)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// item pairs a decoded payload with its record id so views can reference
// records without re-exposing the whole envelope.
type item[T any] struct {
	ID string
	P  T
}

func decodeItems[T any](recs []record.Record) []item[T] {
	out := make([]item[T], 0, len(recs))
	for _, r := range recs {
		p, err := record.Decode[T](r)
		if err != nil {
			continue
		}
		out = append(out, item[T]{ID: r.ID, P: p})
	}
	return out
}

// --- vehicles ---

type dueInfo struct {
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	DaysUntil   int    `json:"days_until"`
	Label       string `json:"label"`
}

type vehicleSummary struct {
	VehicleID        string   `json:"vehicle_id"`
	Name             string   `json:"name"`
	Status           string   `json:"status"`
	MaintenanceCount int      `json:"maintenance_count"`
	TotalCostCents   int64    `json:"total_cost_cents"`
	TotalCost        string   `json:"total_cost"`
	LatestOdometer   *int64   `json:"latest_odometer,omitempty"`
	NextDue          *dueInfo `json:"next_due,omitempty"`
}

func (s *Server) handleVehicleSummary(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.cachedView(w, "vehicles:summary:"+id, func() (any, int, error) {
		return s.vehicleSummary(r.Context(), id)
	})
}

func (s *Server) vehicleSummary(ctx context.Context, id string) (any, int, error) {
	rec, err := s.svc.Get(ctx, "vehicles", id)
	if err != nil {
		return nil, 0, err
	}
	veh, err := record.Decode[record.Vehicle](rec)
	if err != nil {
		return nil, 0, err
	}

	maintRecs, err := s.svc.List(ctx, "maintenance_records", id)
	if err != nil {
		return nil, 0, err
	}
	maints := decodeItems[record.MaintenanceRecord](maintRecs)

	odoRecs, err := s.svc.List(ctx, "odometer_logs", id)
	if err != nil {
		return nil, 0, err
	}
	odos := decodeItems[record.OdometerLog](odoRecs)

	totalCost := derive.Sum(maints, func(m item[record.MaintenanceRecord]) int64 {
		return derive.Coalesce(m.P.CostCents)
	})

	summary := vehicleSummary{
		VehicleID:        id,
		Name:             veh.Name,
		Status:           veh.Status,
		MaintenanceCount: len(maints),
		TotalCostCents:   totalCost,
		TotalCost:        core.FormatCents(totalCost),
	}

	if len(odos) > 0 {
		derive.SortByISODate(odos, func(o item[record.OdometerLog]) string { return o.P.ReadDate })
		latest := odos[len(odos)-1].P.Reading
		summary.LatestOdometer = &latest
	}

	// Earliest pending due date wins; overdue work surfaces first.
	now := s.now()
	var due []item[record.MaintenanceRecord]
	for _, m := range maints {
		if m.P.DueDate != "" {
			due = append(due, m)
		}
	}
	derive.SortByISODate(due, func(m item[record.MaintenanceRecord]) string { return m.P.DueDate })
	if len(due) > 0 {
		d, err := core.ParseDate(due[0].P.DueDate)
		if err == nil {
			days := derive.DaysUntil(d.Time, now)
			summary.NextDue = &dueInfo{
				Description: due[0].P.Description,
				DueDate:     due[0].P.DueDate,
				DaysUntil:   days,
				Label:       derive.CountdownLabel(days),
			}
		}
	}

	return summary, http.StatusOK, nil
}

// --- inventory ---

type lowStockRow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location,omitempty"`
	Quantity    int64  `json:"quantity"`
	MinQuantity int64  `json:"min_quantity"`
}

func (s *Server) handleLowStock(w http.ResponseWriter, r *http.Request) {
	s.cachedView(w, "inventory_items:low-stock", func() (any, int, error) {
		recs, err := s.svc.List(r.Context(), "inventory_items", "")
		if err != nil {
			return nil, 0, err
		}
		rows := []lowStockRow{}
		for _, it := range decodeItems[record.InventoryItem](recs) {
			if derive.LowStock(it.P.Quantity, it.P.MinQuantity) {
				rows = append(rows, lowStockRow{
					ID:          it.ID,
					Name:        it.P.Name,
					Location:    it.P.Location,
					Quantity:    it.P.Quantity,
					MinQuantity: it.P.MinQuantity,
				})
			}
		}
		return map[string]any{"items": rows, "count": len(rows)}, http.StatusOK, nil
	})
}

type inventoryRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Quantity int64  `json:"quantity"`
}

func (s *Server) handleInventoryByLocation(w http.ResponseWriter, r *http.Request) {
	s.cachedView(w, "inventory_items:by-location", func() (any, int, error) {
		recs, err := s.svc.List(r.Context(), "inventory_items", "")
		if err != nil {
			return nil, 0, err
		}
		items := decodeItems[record.InventoryItem](recs)
		groups := derive.GroupBy(items, func(it item[record.InventoryItem]) string {
			return it.P.Location
		}, "Unspecified Location")

		buckets := make(map[string][]inventoryRow, groups.Len())
		for _, key := range groups.Keys {
			rows := make([]inventoryRow, 0, len(groups.Buckets[key]))
			for _, it := range groups.Buckets[key] {
				rows = append(rows, inventoryRow{
					ID:       it.ID,
					Name:     it.P.Name,
					Category: it.P.Category,
					Quantity: it.P.Quantity,
				})
			}
			buckets[key] = rows
		}
		return map[string]any{"locations": groups.Keys, "groups": buckets}, http.StatusOK, nil
	})
}

// --- nutrition ---

type macroTotals struct {
	Calories int64 `json:"calories"`
	ProteinG int64 `json:"protein_g"`
	CarbsG   int64 `json:"carbs_g"`
	FatG     int64 `json:"fat_g"`
}

type nutritionDay struct {
	Date     string                     `json:"date"`
	Meals    int                        `json:"meals"`
	Entries  int                        `json:"entries"`
	Totals   macroTotals                `json:"totals"`
	Progress map[string]derive.Progress `json:"progress"`
}

func (s *Server) handleNutritionDay(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = s.now().UTC().Format(core.ISOLayout)
	}
	if _, err := core.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	s.cachedView(w, "meals:day:"+date, func() (any, int, error) {
		return s.nutritionDay(r.Context(), date)
	})
}

func (s *Server) nutritionDay(ctx context.Context, date string) (any, int, error) {
	mealRecs, err := s.svc.List(ctx, "meals", "")
	if err != nil {
		return nil, 0, err
	}

	day := nutritionDay{Date: date, Progress: map[string]derive.Progress{}}
	var entries []item[record.MealEntry]
	for _, m := range decodeItems[record.Meal](mealRecs) {
		if m.P.MealDate != date {
			continue
		}
		day.Meals++
		entryRecs, err := s.svc.List(ctx, "meal_entries", m.ID)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, decodeItems[record.MealEntry](entryRecs)...)
	}

	day.Entries = len(entries)
	day.Totals = macroTotals{
		Calories: derive.Sum(entries, func(e item[record.MealEntry]) int64 { return derive.Coalesce(e.P.Calories) }),
		ProteinG: derive.Sum(entries, func(e item[record.MealEntry]) int64 { return derive.Coalesce(e.P.ProteinG) }),
		CarbsG:   derive.Sum(entries, func(e item[record.MealEntry]) int64 { return derive.Coalesce(e.P.CarbsG) }),
		FatG:     derive.Sum(entries, func(e item[record.MealEntry]) int64 { return derive.Coalesce(e.P.FatG) }),
	}
	day.Progress["calories"] = derive.ProgressOf(day.Totals.Calories, s.targets.Calories)
	day.Progress["protein_g"] = derive.ProgressOf(day.Totals.ProteinG, s.targets.ProteinG)
	day.Progress["carbs_g"] = derive.ProgressOf(day.Totals.CarbsG, s.targets.CarbsG)
	day.Progress["fat_g"] = derive.ProgressOf(day.Totals.FatG, s.targets.FatG)

	return day, http.StatusOK, nil
}

// --- travel ---

type tripCountdown struct {
	TripID    string `json:"trip_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
	DaysUntil int    `json:"days_until"`
	Label     string `json:"label"`
}

func (s *Server) handleTripCountdown(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.cachedView(w, "trips:countdown:"+id, func() (any, int, error) {
		rec, err := s.svc.Get(r.Context(), "trips", id)
		if err != nil {
			return nil, 0, err
		}
		trip, err := record.Decode[record.Trip](rec)
		if err != nil {
			return nil, 0, err
		}
		start, err := core.ParseDate(trip.StartDate)
		if err != nil {
			return nil, 0, fmt.Errorf("trip %s has invalid start date: %w", id, err)
		}
		days := derive.DaysUntil(start.Time, s.now())
		return tripCountdown{
			TripID:    id,
			Name:      trip.Name,
			Status:    trip.Status,
			StartDate: trip.StartDate,
			DaysUntil: days,
			Label:     derive.CountdownLabel(days),
		}, http.StatusOK, nil
	})
}

// --- media ---

type mediaRow struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Kind   string `json:"kind,omitempty"`
	Rating *int64 `json:"rating,omitempty"`
}

func (s *Server) handleMediaByStatus(w http.ResponseWriter, r *http.Request) {
	s.cachedView(w, "media_items:by-status", func() (any, int, error) {
		recs, err := s.svc.List(r.Context(), "media_items", "")
		if err != nil {
			return nil, 0, err
		}
		items := decodeItems[record.MediaItem](recs)
		groups := derive.GroupBy(items, func(it item[record.MediaItem]) string {
			return it.P.Status
		}, "Unspecified Status")

		buckets := make(map[string][]mediaRow, groups.Len())
		for _, key := range groups.Keys {
			rows := make([]mediaRow, 0, len(groups.Buckets[key]))
			for _, it := range groups.Buckets[key] {
				rows = append(rows, mediaRow{ID: it.ID, Title: it.P.Title, Kind: it.P.Kind, Rating: it.P.Rating})
			}
			buckets[key] = rows
		}
		return map[string]any{"statuses": groups.Keys, "groups": buckets}, http.StatusOK, nil
	})
}

// --- shopping ---

type shoppingProgress struct {
	ListID   string          `json:"list_id"`
	Name     string          `json:"name"`
	Total    int             `json:"total"`
	Done     int             `json:"done"`
	Progress derive.Progress `json:"progress"`
}

func (s *Server) handleShoppingProgress(w http.ResponseWriter, r *http.Request) {
	listID := r.PathValue("list")
	s.cachedView(w, "shopping_lists:progress:"+listID, func() (any, int, error) {
		rec, err := s.svc.Get(r.Context(), "shopping_lists", listID)
		if err != nil {
			return nil, 0, err
		}
		list, err := record.Decode[record.ShoppingList](rec)
		if err != nil {
			return nil, 0, err
		}

		itemRecs, err := s.svc.List(r.Context(), "shopping_items", listID)
		if err != nil {
			return nil, 0, err
		}
		items := decodeItems[record.ShoppingItem](itemRecs)
		done := 0
		for _, it := range items {
			if it.P.IsDone {
				done++
			}
		}
		return shoppingProgress{
			ListID:   listID,
			Name:     list.Name,
			Total:    len(items),
			Done:     done,
			Progress: derive.ProgressOf(int64(done), int64(len(items))),
		}, http.StatusOK, nil
	})
}

// --- reading ---

type readingProgress struct {
	BookID    string          `json:"book_id"`
	Title     string          `json:"title"`
	Status    string          `json:"status"`
	PagesRead int64           `json:"pages_read"`
	LastRead  string          `json:"last_read,omitempty"`
	Progress  derive.Progress `json:"progress"`
}

func (s *Server) handleReadingProgress(w http.ResponseWriter, r *http.Request) {
	bookID := r.PathValue("book")
	s.cachedView(w, "books:progress:"+bookID, func() (any, int, error) {
		rec, err := s.svc.Get(r.Context(), "books", bookID)
		if err != nil {
			return nil, 0, err
		}
		book, err := record.Decode[record.Book](rec)
		if err != nil {
			return nil, 0, err
		}

		logRecs, err := s.svc.List(r.Context(), "reading_logs", bookID)
		if err != nil {
			return nil, 0, err
		}
		logs := decodeItems[record.ReadingLog](logRecs)

		pagesRead := derive.Sum(logs, func(l item[record.ReadingLog]) int64 { return l.P.PagesRead })

		out := readingProgress{
			BookID:    bookID,
			Title:     book.Title,
			Status:    book.Status,
			PagesRead: pagesRead,
			Progress:  derive.ProgressOf(pagesRead, derive.Coalesce(book.TotalPages)),
		}
		if len(logs) > 0 {
			derive.SortByISODate(logs, func(l item[record.ReadingLog]) string { return l.P.LogDate })
			out.LastRead = logs[len(logs)-1].P.LogDate
		}
		return out, http.StatusOK, nil
	})
}

// --- finance ---

type financeMonth struct {
	Year        int              `json:"year"`
	Month       int              `json:"month"`
	SpentCents  int64            `json:"spent_cents"`
	Spent       string           `json:"spent"`
	IncomeCents int64            `json:"income_cents"`
	Income      string           `json:"income"`
	NetCents    int64            `json:"net_cents"`
	Net         string           `json:"net"`
	Count       int              `json:"count"`
	Categories  []string         `json:"categories"`
	ByCategory  map[string]int64 `json:"by_category_cents"`
}

func (s *Server) handleFinanceMonth(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	year := queryInt(r, "year", now.Year())
	month := queryInt(r, "month", int(now.Month()))
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	key := fmt.Sprintf("transactions:month:%04d-%02d", year, month)
	s.cachedView(w, key, func() (any, int, error) {
		return s.financeMonth(r.Context(), year, month)
	})
}

func (s *Server) financeMonth(ctx context.Context, year, month int) (any, int, error) {
	recs, err := s.svc.List(ctx, "transactions", "")
	if err != nil {
		return nil, 0, err
	}

	// Calendar month membership, not a rolling window.
	var inMonth []item[record.Transaction]
	for _, tx := range decodeItems[record.Transaction](recs) {
		d, err := core.ParseDate(tx.P.TxDate)
		if err != nil {
			continue
		}
		if d.Year() == year && int(d.Month()) == month {
			inMonth = append(inMonth, tx)
		}
	}

	out := financeMonth{Year: year, Month: month, Count: len(inMonth)}
	for _, tx := range inMonth {
		if tx.P.AmountCents < 0 {
			out.SpentCents += -tx.P.AmountCents
		} else {
			out.IncomeCents += tx.P.AmountCents
		}
	}
	out.NetCents = out.IncomeCents - out.SpentCents
	out.Spent = core.FormatCents(out.SpentCents)
	out.Income = core.FormatCents(out.IncomeCents)
	out.Net = core.FormatCents(out.NetCents)

	groups := derive.GroupBy(inMonth, func(tx item[record.Transaction]) string {
		return tx.P.Category
	}, "Uncategorized")
	out.Categories = groups.Keys
	out.ByCategory = make(map[string]int64, groups.Len())
	for _, key := range groups.Keys {
		out.ByCategory[key] = derive.Sum(groups.Buckets[key], func(tx item[record.Transaction]) int64 {
			return tx.P.AmountCents
		})
	}
	if out.Categories == nil {
		out.Categories = []string{}
	}

	return out, http.StatusOK, nil
}

// --- household ---

type upcomingRenewal struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Provider  string `json:"provider,omitempty"`
	NextDate  string `json:"next_date"`
	DaysUntil int    `json:"days_until"`
	Label     string `json:"label"`
	CostCents int64  `json:"cost_cents"`
}

func (s *Server) handleUpcomingRenewals(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	if days < 0 {
		writeError(w, http.StatusBadRequest, "days must not be negative")
		return
	}

	key := fmt.Sprintf("renewals:upcoming:%d", days)
	s.cachedView(w, key, func() (any, int, error) {
		return s.upcomingRenewals(r.Context(), days)
	})
}

func (s *Server) upcomingRenewals(ctx context.Context, days int) (any, int, error) {
	recs, err := s.svc.List(ctx, "renewals", "")
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	rows := []upcomingRenewal{}
	var totalCost int64
	for _, rn := range decodeItems[record.Renewal](recs) {
		start, err := core.ParseDate(rn.P.StartDate)
		if err != nil {
			continue
		}
		next, err := derive.NextOccurrence(derive.Cadence(rn.P.Cadence), start.Time, now)
		if err != nil {
			continue
		}
		du := derive.DaysUntil(next, now)
		if du > days {
			continue
		}
		cost := derive.Coalesce(rn.P.CostCents)
		rows = append(rows, upcomingRenewal{
			ID:        rn.ID,
			Name:      rn.P.Name,
			Provider:  rn.P.Provider,
			NextDate:  next.Format(core.ISOLayout),
			DaysUntil: du,
			Label:     derive.CountdownLabel(du),
			CostCents: cost,
		})
		totalCost += cost
	}
	derive.SortByISODate(rows, func(r upcomingRenewal) string { return r.NextDate })

	return map[string]any{
		"window_days":      days,
		"renewals":         rows,
		"total_cost_cents": totalCost,
		"total_cost":       core.FormatCents(totalCost),
	}, http.StatusOK, nil
}

// --- dashboard ---

type dashboard struct {
	LowStockCount    int            `json:"low_stock_count"`
	UpcomingRenewals int            `json:"upcoming_renewals"`
	FinanceMonth     financeMonth   `json:"finance_month"`
	NutritionToday   nutritionDay   `json:"nutrition_today"`
	NextTrip         *tripCountdown `json:"next_trip,omitempty"`
	MediaByStatus    map[string]int `json:"media_by_status"`
	OpenShoppingRows int            `json:"open_shopping_items"`
}

// handleDashboard assembles the home view by fanning the per-module
// aggregations out concurrently: the slowest widget bounds the latency
// instead of their sum.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.cachedView(w, "dashboard:home", func() (any, int, error) {
		return s.dashboard(r.Context())
	})
}

func (s *Server) dashboard(ctx context.Context) (any, int, error) {
	now := s.now()
	var out dashboard

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		recs, err := s.svc.List(gctx, "inventory_items", "")
		if err != nil {
			return err
		}
		for _, it := range decodeItems[record.InventoryItem](recs) {
			if derive.LowStock(it.P.Quantity, it.P.MinQuantity) {
				out.LowStockCount++
			}
		}
		return nil
	})

	g.Go(func() error {
		v, _, err := s.upcomingRenewals(gctx, 30)
		if err != nil {
			return err
		}
		out.UpcomingRenewals = len(v.(map[string]any)["renewals"].([]upcomingRenewal))
		return nil
	})

	g.Go(func() error {
		v, _, err := s.financeMonth(gctx, now.Year(), int(now.Month()))
		if err != nil {
			return err
		}
		out.FinanceMonth = v.(financeMonth)
		return nil
	})

	g.Go(func() error {
		v, _, err := s.nutritionDay(gctx, now.UTC().Format(core.ISOLayout))
		if err != nil {
			return err
		}
		out.NutritionToday = v.(nutritionDay)
		return nil
	})

	g.Go(func() error {
		trip, err := s.nextTrip(gctx, now)
		if err != nil {
			return err
		}
		out.NextTrip = trip
		return nil
	})

	g.Go(func() error {
		recs, err := s.svc.List(gctx, "media_items", "")
		if err != nil {
			return err
		}
		counts := map[string]int{}
		for _, it := range decodeItems[record.MediaItem](recs) {
			status := it.P.Status
			if status == "" {
				status = "Unspecified Status"
			}
			counts[status]++
		}
		out.MediaByStatus = counts
		return nil
	})

	g.Go(func() error {
		recs, err := s.svc.List(gctx, "shopping_items", "")
		if err != nil {
			return err
		}
		for _, it := range decodeItems[record.ShoppingItem](recs) {
			if !it.P.IsDone {
				out.OpenShoppingRows++
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return out, http.StatusOK, nil
}

// nextTrip returns the countdown for the soonest not-yet-started trip,
// or nil when no trip lies ahead.
func (s *Server) nextTrip(ctx context.Context, now time.Time) (*tripCountdown, error) {
	recs, err := s.svc.List(ctx, "trips", "")
	if err != nil {
		return nil, err
	}
	trips := decodeItems[record.Trip](recs)
	derive.SortByISODate(trips, func(t item[record.Trip]) string { return t.P.StartDate })

	for _, t := range trips {
		if t.P.Status == "completed" {
			continue
		}
		start, err := core.ParseDate(t.P.StartDate)
		if err != nil {
			continue
		}
		days := derive.DaysUntil(start.Time, now)
		if days < 0 {
			continue
		}
		return &tripCountdown{
			TripID:    t.ID,
			Name:      t.P.Name,
			Status:    t.P.Status,
			StartDate: t.P.StartDate,
			DaysUntil: days,
			Label:     derive.CountdownLabel(days),
		}, nil
	}
	return nil, nil
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	return fallback
}
