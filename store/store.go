package store

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"linkvault/models"
)

const (
	catalogFile      = "resources.json"
	loginLogFile     = "login_log.json"
	announcementFile = "announcement.json"

	// MaxLoginEntries is how many login attempts the log keeps.
	MaxLoginEntries = 100
	maxUserAgentLen = 200
)

// document is one JSON file guarded by its own mutex. Every load-mutate-save
// cycle runs inside the lock so concurrent writers cannot lose updates.
type document struct {
	path string
	mu   sync.Mutex
}

// Store reads and writes the four JSON documents. It keeps no document
// contents in memory; each call goes to disk.
type Store struct {
	catalog      document
	loginLog     document
	announcement document
	config       document
}

// New points the store at its documents. Nothing is read until the first load;
// missing files load as defaults.
func New(dataDir, configPath string) *Store {
	return &Store{
		catalog:      document{path: filepath.Join(dataDir, catalogFile)},
		loginLog:     document{path: filepath.Join(dataDir, loginLogFile)},
		announcement: document{path: filepath.Join(dataDir, announcementFile)},
		config:       document{path: configPath},
	}
}

// readJSON decodes path into v. found is false when the file does not exist.
func readJSON(path string, v any) (found bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// writeJSON encodes v with indentation and unescaped non-ASCII/HTML characters,
// then replaces path atomically.
func writeJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Catalog

func (s *Store) loadCatalog() (*models.Catalog, error) {
	catalog := &models.Catalog{}
	if _, err := readJSON(s.catalog.path, catalog); err != nil {
		return nil, err
	}
	normalizeCatalog(catalog)
	return catalog, nil
}

func normalizeCatalog(catalog *models.Catalog) {
	if catalog.Categories == nil {
		catalog.Categories = []models.Category{}
	}
	if catalog.Resources == nil {
		catalog.Resources = []models.Resource{}
	}
	for i := range catalog.Resources {
		if catalog.Resources[i].Tags == nil {
			catalog.Resources[i].Tags = []string{}
		}
	}
}

// LoadCatalog reads resources.json. A missing file is an empty catalog.
func (s *Store) LoadCatalog() (*models.Catalog, error) {
	s.catalog.mu.Lock()
	defer s.catalog.mu.Unlock()
	return s.loadCatalog()
}

// SaveCatalog replaces resources.json atomically.
func (s *Store) SaveCatalog(catalog *models.Catalog) error {
	s.catalog.mu.Lock()
	defer s.catalog.mu.Unlock()
	normalizeCatalog(catalog)
	return writeJSON(s.catalog.path, catalog)
}

// UpdateCatalog runs fn against the current catalog and saves the result.
// Nothing is written when fn returns an error.
func (s *Store) UpdateCatalog(fn func(*models.Catalog) error) error {
	s.catalog.mu.Lock()
	defer s.catalog.mu.Unlock()

	catalog, err := s.loadCatalog()
	if err != nil {
		return err
	}
	if err := fn(catalog); err != nil {
		return err
	}
	normalizeCatalog(catalog)
	return writeJSON(s.catalog.path, catalog)
}

// SeedCatalog writes an initial catalog with the given categories when none exists.
func (s *Store) SeedCatalog(categories []models.Category) (bool, error) {
	s.catalog.mu.Lock()
	defer s.catalog.mu.Unlock()

	if _, err := os.Stat(s.catalog.path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	catalog := &models.Catalog{Categories: categories}
	normalizeCatalog(catalog)
	if err := writeJSON(s.catalog.path, catalog); err != nil {
		return false, err
	}
	logrus.WithField("path", s.catalog.path).Info("seeded catalog")
	return true, nil
}

// Config

func (s *Store) loadConfig() (*models.Config, error) {
	config := models.DefaultConfig()
	if _, err := readJSON(s.config.path, config); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfig reads the site config over the defaults, so absent keys keep their default values.
func (s *Store) LoadConfig() (*models.Config, error) {
	s.config.mu.Lock()
	defer s.config.mu.Unlock()
	return s.loadConfig()
}

// SaveConfig replaces the config document atomically.
func (s *Store) SaveConfig(config *models.Config) error {
	s.config.mu.Lock()
	defer s.config.mu.Unlock()
	return writeJSON(s.config.path, config)
}

// UpdateConfig runs fn on the current config under the document lock and
// saves the result. Nothing is written when fn returns an error.
func (s *Store) UpdateConfig(fn func(*models.Config) error) error {
	s.config.mu.Lock()
	defer s.config.mu.Unlock()

	config, err := s.loadConfig()
	if err != nil {
		return err
	}
	if err := fn(config); err != nil {
		return err
	}
	return writeJSON(s.config.path, config)
}

// EnsureSecret replaces a missing or default session secret with a random one.
func (s *Store) EnsureSecret() (string, error) {
	var secret string
	err := s.UpdateConfig(func(config *models.Config) error {
		if config.SecretKey != "" && config.SecretKey != models.DefaultConfig().SecretKey {
			secret = config.SecretKey
			return nil
		}
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return err
		}
		config.SecretKey = base64.URLEncoding.EncodeToString(b)
		secret = config.SecretKey
		logrus.Info("generated a new session secret")
		return nil
	})
	return secret, err
}

// Announcement

// storedAnnouncement tells absent popup fields apart from zero values.
type storedAnnouncement struct {
	Enabled      *bool   `json:"enabled"`
	Title        *string `json:"title"`
	Content      *string `json:"content"`
	PopupEnabled *bool   `json:"popup_enabled"`
	PopupTitle   *string `json:"popup_title"`
	PopupContent *string `json:"popup_content"`
	UpdatedAt    string  `json:"updated_at"`
}

func (s *Store) loadAnnouncement() (*models.Announcement, error) {
	var stored storedAnnouncement
	found, err := readJSON(s.announcement.path, &stored)
	if err != nil {
		return nil, err
	}
	if !found {
		return models.DefaultAnnouncement(), nil
	}

	a := &models.Announcement{
		Enabled:   true,
		UpdatedAt: stored.UpdatedAt,
	}
	if stored.Enabled != nil {
		a.Enabled = *stored.Enabled
	}
	if stored.Title != nil {
		a.Title = *stored.Title
	}
	if stored.Content != nil {
		a.Content = *stored.Content
	}

	// older files only carry the banner
	a.PopupTitle = "Announcement"
	if stored.Title != nil {
		a.PopupTitle = *stored.Title
	}
	a.PopupContent = a.Content
	if stored.PopupEnabled != nil {
		a.PopupEnabled = *stored.PopupEnabled
	}
	if stored.PopupTitle != nil {
		a.PopupTitle = *stored.PopupTitle
	}
	if stored.PopupContent != nil {
		a.PopupContent = *stored.PopupContent
	}
	return a, nil
}

// LoadAnnouncement reads announcement.json, filling absent popup fields from the banner.
func (s *Store) LoadAnnouncement() (*models.Announcement, error) {
	s.announcement.mu.Lock()
	defer s.announcement.mu.Unlock()
	return s.loadAnnouncement()
}

// SaveAnnouncement stamps updated_at before writing.
func (s *Store) SaveAnnouncement(a *models.Announcement) error {
	s.announcement.mu.Lock()
	defer s.announcement.mu.Unlock()
	a.UpdatedAt = models.Timestamp(time.Now())
	return writeJSON(s.announcement.path, a)
}

// UpdateAnnouncement is UpdateConfig for the announcement; updated_at is stamped on every save.
func (s *Store) UpdateAnnouncement(fn func(*models.Announcement) error) (*models.Announcement, error) {
	s.announcement.mu.Lock()
	defer s.announcement.mu.Unlock()

	a, err := s.loadAnnouncement()
	if err != nil {
		return nil, err
	}
	if err := fn(a); err != nil {
		return nil, err
	}
	a.UpdatedAt = models.Timestamp(time.Now())
	if err := writeJSON(s.announcement.path, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Login log

func (s *Store) loadLoginLog() ([]models.LoginEntry, error) {
	var entries []models.LoginEntry
	if _, err := readJSON(s.loginLog.path, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.LoginEntry{}
	}
	return entries, nil
}

// LoadLoginLog returns the entries oldest first, as stored.
func (s *Store) LoadLoginLog() ([]models.LoginEntry, error) {
	s.loginLog.mu.Lock()
	defer s.loginLog.mu.Unlock()
	return s.loadLoginLog()
}

// SaveLoginLog keeps only the newest MaxLoginEntries entries.
func (s *Store) SaveLoginLog(entries []models.LoginEntry) error {
	s.loginLog.mu.Lock()
	defer s.loginLog.mu.Unlock()
	return s.saveLoginLog(entries)
}

func (s *Store) saveLoginLog(entries []models.LoginEntry) error {
	if len(entries) > MaxLoginEntries {
		entries = entries[len(entries)-MaxLoginEntries:]
	}
	if entries == nil {
		entries = []models.LoginEntry{}
	}
	return writeJSON(s.loginLog.path, entries)
}

// AppendLogin records one login attempt.
func (s *Store) AppendLogin(ip, userAgent string, success bool) error {
	s.loginLog.mu.Lock()
	defer s.loginLog.mu.Unlock()

	entries, err := s.loadLoginLog()
	if err != nil {
		return err
	}
	entries = append(entries, models.LoginEntry{
		Time:      time.Now().Format(models.LogTimeLayout),
		IP:        ip,
		Success:   success,
		UserAgent: truncate(userAgent, maxUserAgentLen),
	})
	return s.saveLoginLog(entries)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
