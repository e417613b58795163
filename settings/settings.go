package settings

import (
	"crypto/subtle"
	"errors"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"linkvault/common"
	"linkvault/models"
	"linkvault/store"
)

const MinPasswordLength = 4

// PasswordCost is the bcrypt cost for stored admin passwords.
var PasswordCost = 12

type PasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type SiteInput struct {
	SiteTitle       *string         `json:"site_title"`
	SiteDescription *string         `json:"site_description"`
	ItemsPerPage    *common.FlexInt `json:"items_per_page"`
}

type SiteSettings struct {
	SiteTitle       string `json:"site_title"`
	SiteDescription string `json:"site_description"`
	ItemsPerPage    int    `json:"items_per_page"`
}

type AnnouncementInput struct {
	Enabled      *common.FlexBool `json:"enabled"`
	Title        *string          `json:"title"`
	Content      *string          `json:"content"`
	PopupEnabled *common.FlexBool `json:"popup_enabled"`
	PopupTitle   *string          `json:"popup_title"`
	PopupContent *string          `json:"popup_content"`
}

// PublicAnnouncement is what visitors get: the banner with rendered markdown.
type PublicAnnouncement struct {
	*models.Announcement
	ContentHTML      string `json:"content_html"`
	PopupContentHTML string `json:"popup_content_html"`
}

// Service manages the config and announcement documents and the login log.
type Service struct {
	store *store.Store
}

// NewService builds a settings service over st.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Config returns the current site config, including the stored password hash.
func (s *Service) Config() (*models.Config, error) {
	return s.store.LoadConfig()
}

func isHash(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

// checkPassword accepts a bcrypt hash or a legacy plaintext value.
func checkPassword(password, stored string) bool {
	if isHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}

// VerifyPassword checks the admin password. A legacy plaintext password is
// replaced by its hash after the first successful check.
func (s *Service) VerifyPassword(password string) (bool, error) {
	ok := false
	err := s.store.UpdateConfig(func(config *models.Config) error {
		ok = checkPassword(password, config.AdminPassword)
		if !ok || isHash(config.AdminPassword) {
			return errUnchanged
		}
		hash, err := hashPassword(password)
		if err != nil {
			return err
		}
		config.AdminPassword = hash
		logrus.Info("upgraded plaintext admin password to bcrypt")
		return nil
	})
	if err != nil && !errors.Is(err, errUnchanged) {
		return false, err
	}
	return ok, nil
}

// SetPassword stores a new password without checking the old one.
func (s *Service) SetPassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return common.Invalid("new password must be at least %d characters", MinPasswordLength)
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	return s.store.UpdateConfig(func(config *models.Config) error {
		config.AdminPassword = hash
		return nil
	})
}

// ChangePassword checks the old password before storing a hash of the new one.
func (s *Service) ChangePassword(in PasswordInput) error {
	return s.store.UpdateConfig(func(config *models.Config) error {
		if !checkPassword(in.OldPassword, config.AdminPassword) {
			return common.Invalid("old password is incorrect")
		}
		if utf8.RuneCountInString(in.NewPassword) < MinPasswordLength {
			return common.Invalid("new password must be at least %d characters", MinPasswordLength)
		}
		hash, err := hashPassword(in.NewPassword)
		if err != nil {
			return err
		}
		config.AdminPassword = hash
		return nil
	})
}

// UpdateSite applies the present fields and returns the public subset of the config.
func (s *Service) UpdateSite(in SiteInput) (SiteSettings, error) {
	if in.ItemsPerPage != nil && *in.ItemsPerPage < 1 {
		return SiteSettings{}, common.Invalid("items_per_page must be at least 1")
	}

	var out SiteSettings
	err := s.store.UpdateConfig(func(config *models.Config) error {
		if in.SiteTitle != nil {
			config.SiteTitle = strings.TrimSpace(*in.SiteTitle)
		}
		if in.SiteDescription != nil {
			config.SiteDescription = strings.TrimSpace(*in.SiteDescription)
		}
		if in.ItemsPerPage != nil {
			config.ItemsPerPage = int(*in.ItemsPerPage)
		}
		out = SiteSettings{
			SiteTitle:       config.SiteTitle,
			SiteDescription: config.SiteDescription,
			ItemsPerPage:    config.ItemsPerPage,
		}
		return nil
	})
	return out, err
}

// Announcement returns the stored announcement whether or not it is enabled.
func (s *Service) Announcement() (*models.Announcement, error) {
	return s.store.LoadAnnouncement()
}

// PublicAnnouncement returns nil when the banner is switched off.
func (s *Service) PublicAnnouncement() (*PublicAnnouncement, error) {
	a, err := s.store.LoadAnnouncement()
	if err != nil {
		return nil, err
	}
	if !a.Enabled {
		return nil, nil
	}
	return &PublicAnnouncement{
		Announcement:     a,
		ContentHTML:      common.RenderMarkdown(a.Content),
		PopupContentHTML: common.RenderMarkdown(a.PopupContent),
	}, nil
}

// UpdateAnnouncement applies the present fields; updated_at is always refreshed.
func (s *Service) UpdateAnnouncement(in AnnouncementInput) (*models.Announcement, error) {
	return s.store.UpdateAnnouncement(func(a *models.Announcement) error {
		if in.Enabled != nil {
			a.Enabled = bool(*in.Enabled)
		}
		if in.Title != nil {
			a.Title = strings.TrimSpace(*in.Title)
		}
		if in.Content != nil {
			a.Content = strings.TrimSpace(*in.Content)
		}
		if in.PopupEnabled != nil {
			a.PopupEnabled = bool(*in.PopupEnabled)
		}
		if in.PopupTitle != nil {
			a.PopupTitle = strings.TrimSpace(*in.PopupTitle)
		}
		if in.PopupContent != nil {
			a.PopupContent = strings.TrimSpace(*in.PopupContent)
		}
		return nil
	})
}

// SessionEpoch is the value a valid admin session must carry.
func (s *Service) SessionEpoch() (int, error) {
	config, err := s.store.LoadConfig()
	if err != nil {
		return 0, err
	}
	return config.SessionEpoch, nil
}

// RevokeSessions invalidates every admin session issued so far.
func (s *Service) RevokeSessions() error {
	return s.store.UpdateConfig(func(config *models.Config) error {
		config.SessionEpoch++
		return nil
	})
}

// RecordLogin appends one attempt to the capped login log.
func (s *Service) RecordLogin(ip, userAgent string, success bool) error {
	return s.store.AppendLogin(ip, userAgent, success)
}

// LoginLogs returns the stored attempts, newest first.
func (s *Service) LoginLogs() ([]models.LoginEntry, error) {
	logs, err := s.store.LoadLoginLog()
	if err != nil {
		return nil, err
	}
	slices.Reverse(logs)
	return logs, nil
}
