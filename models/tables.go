package models

import "time"

const (
	// TimestampLayout keeps lexicographic order equal to chronological order.
	TimestampLayout = "2006-01-02T15:04:05.000000"
	LogTimeLayout   = "2006-01-02 15:04:05"

	DefaultCategoryIcon = "📁"
	DefaultCategoryID   = "other"
)

type Resource struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"` // category id, may be empty
	Link        string   `json:"link"`
	Size        string   `json:"size"`
	Tags        []string `json:"tags"`
	Clicks      int      `json:"clicks"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Catalog is the resources.json document.
type Catalog struct {
	Categories []Category `json:"categories"`
	Resources  []Resource `json:"resources"`
}

type Config struct {
	SiteTitle       string `json:"site_title"`
	SiteDescription string `json:"site_description"`
	AdminPassword   string `json:"admin_password"` // plaintext (legacy) or bcrypt hash
	ItemsPerPage    int    `json:"items_per_page"`
	SecretKey       string `json:"secret_key"`
	SessionEpoch    int    `json:"session_epoch"` // bumped on logout, older sessions are rejected
}

type Announcement struct {
	Enabled      bool   `json:"enabled"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	PopupEnabled bool   `json:"popup_enabled"`
	PopupTitle   string `json:"popup_title"`
	PopupContent string `json:"popup_content"`
	UpdatedAt    string `json:"updated_at"`
}

type LoginEntry struct {
	Time      string `json:"time"`
	IP        string `json:"ip"`
	Success   bool   `json:"success"`
	UserAgent string `json:"user_agent"`
}

// ClickEvent lives in the optional analytics database, never in the JSON documents.
type ClickEvent struct {
	ID         uint      `gorm:"primary_key;autoIncrement" json:"id"`
	ResourceID string    `gorm:"not null;index" json:"resource_id"`
	IP         string    `gorm:"not null" json:"ip"`
	Browser    *string   `json:"browser,omitempty"`
	Language   *string   `json:"language,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// ResourceView is a resource with its transient category record attached.
type ResourceView struct {
	Resource
	CategoryInfo *Category `json:"category_info,omitempty"`
}

type CategoryCount struct {
	Category
	Count int `json:"count"`
}

func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

func DefaultConfig() *Config {
	return &Config{
		SiteTitle:       "Link Vault",
		SiteDescription: "Curated shared resources",
		AdminPassword:   "admin123",
		ItemsPerPage:    12,
		SecretKey:       "default-secret-key",
	}
}

func DefaultAnnouncement() *Announcement {
	const (
		title   = "Welcome"
		content = "This site collects shared links to quality resources. Browse by category or search."
	)
	return &Announcement{
		Enabled:      true,
		Title:        title,
		Content:      content,
		PopupEnabled: false,
		PopupTitle:   title,
		PopupContent: content,
		UpdatedAt:    Timestamp(time.Now()),
	}
}

// SeedCategories is written on first start when no catalog exists yet.
func SeedCategories() []Category {
	return []Category{
		{ID: "games", Name: "Games", Icon: "🎮"},
		{ID: "software", Name: "Software", Icon: "💻"},
		{ID: "movies", Name: "Movies", Icon: "🎬"},
		{ID: "music", Name: "Music", Icon: "🎵"},
		{ID: "ebooks", Name: "E-books", Icon: "📚"},
		{ID: DefaultCategoryID, Name: "Other", Icon: "📦"},
	}
}
