package record

// Typed payloads per module. Optional numeric fields are pointers so an
// absent value sums as zero instead of being conflated with an explicit
// zero. Dates are ISO YYYY-MM-DD strings.

// --- vehicles ---

type Vehicle struct {
	Name   string `json:"name"`
	Make   string `json:"make,omitempty"`
	Model  string `json:"model,omitempty"`
	Year   int    `json:"year,omitempty"`
	Status string `json:"status"`
}

type MaintenanceRecord struct {
	Description string `json:"description"`
	ServiceDate string `json:"service_date"`
	DueDate     string `json:"due_date,omitempty"`
	CostCents   *int64 `json:"cost_cents,omitempty"`
	Shop        string `json:"shop,omitempty"`
	Odometer    *int64 `json:"odometer,omitempty"`
}

type OdometerLog struct {
	ReadDate string `json:"read_date"`
	Reading  int64  `json:"reading"`
}

// --- finance ---

type Account struct {
	Name        string `json:"name"`
	Institution string `json:"institution,omitempty"`
	Kind        string `json:"kind,omitempty"`
}

type Transaction struct {
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
	TxDate      string `json:"tx_date"`
	AmountCents int64  `json:"amount_cents"` // negative for spending, positive for income
}

// --- household ---

type Property struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

type Renewal struct {
	Name      string `json:"name"`
	Provider  string `json:"provider,omitempty"`
	Cadence   string `json:"cadence"` // daily/weekly/monthly/yearly
	StartDate string `json:"start_date"`
	CostCents *int64 `json:"cost_cents,omitempty"`
}

type Chore struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	DueDate string `json:"due_date,omitempty"`
}

// --- inventory ---

type InventoryItem struct {
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Location    string `json:"location,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Quantity    int64  `json:"quantity"`
	MinQuantity int64  `json:"min_quantity,omitempty"`
}

// --- media ---

type MediaItem struct {
	Title    string `json:"title"`
	Kind     string `json:"kind,omitempty"` // movie, show, ...
	Status   string `json:"status"`
	Rating   *int64 `json:"rating,omitempty"`
	Notes    string `json:"notes,omitempty"`
	DueDate  string `json:"due_date,omitempty"` // e.g. leaving a streaming service
	Episodes *int64 `json:"episodes,omitempty"`
	Watched  *int64 `json:"watched,omitempty"`
}

// --- notes ---

type Note struct {
	Title string   `json:"title"`
	Body  string   `json:"body,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// --- nutrition ---

type Meal struct {
	MealDate string `json:"meal_date"`
	MealType string `json:"meal_type"` // breakfast/lunch/dinner/snack
}

type MealEntry struct {
	FoodName string `json:"food_name"`
	Calories *int64 `json:"calories,omitempty"`
	ProteinG *int64 `json:"protein_g,omitempty"`
	CarbsG   *int64 `json:"carbs_g,omitempty"`
	FatG     *int64 `json:"fat_g,omitempty"`
}

// NutritionTargets are the per-day goals a day view is measured against.
type NutritionTargets struct {
	Calories int64 `json:"calories"`
	ProteinG int64 `json:"protein_g"`
	CarbsG   int64 `json:"carbs_g"`
	FatG     int64 `json:"fat_g"`
}

// --- reading ---

type Book struct {
	Title      string `json:"title"`
	Author     string `json:"author,omitempty"`
	Status     string `json:"status"`
	TotalPages *int64 `json:"total_pages,omitempty"`
}

type ReadingLog struct {
	LogDate   string `json:"log_date"`
	PagesRead int64  `json:"pages_read"`
	EndPage   *int64 `json:"end_page,omitempty"`
}

type Highlight struct {
	Text string `json:"text"`
	Note string `json:"note,omitempty"`
	Page *int64 `json:"page,omitempty"`
}

// --- shopping ---

type ShoppingList struct {
	Name string `json:"name"`
}

type ShoppingItem struct {
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Quantity    int64  `json:"quantity,omitempty"`
	IsDone      bool   `json:"is_done"`
	PurchasedAt string `json:"purchased_at,omitempty"` // RFC3339 stamp set on completion
}

// --- travel ---

type Trip struct {
	Name        string `json:"name"`
	Destination string `json:"destination,omitempty"`
	Status      string `json:"status"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
}

type ItineraryItem struct {
	Title     string `json:"title"`
	Location  string `json:"location,omitempty"`
	EntryDate string `json:"entry_date"`
}

type JournalEntry struct {
	Title     string `json:"title,omitempty"`
	Body      string `json:"body"`
	EntryDate string `json:"entry_date"`
}
