package settings

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"linkvault/common"
	"linkvault/models"
	"linkvault/store"
)

func setupTestService(t *testing.T) (*Service, *store.Store) {
	PasswordCost = bcrypt.MinCost
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, "data"), filepath.Join(dir, "config.json"))
	return NewService(st), st
}

func ptr[T any](v T) *T { return &v }

func TestVerifyPasswordUpgradesPlaintext(t *testing.T) {
	svc, st := setupTestService(t)
	require.NoError(t, st.SaveConfig(&models.Config{AdminPassword: "admin123", ItemsPerPage: 12}))

	ok, err := svc.VerifyPassword("wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	config, err := st.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "admin123", config.AdminPassword)

	ok, err = svc.VerifyPassword("admin123")
	require.NoError(t, err)
	assert.True(t, ok)

	config, err = st.LoadConfig()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(config.AdminPassword, "$2"))

	ok, err = svc.VerifyPassword("admin123")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyPasswordIsExact(t *testing.T) {
	svc, st := setupTestService(t)
	require.NoError(t, st.SaveConfig(&models.Config{AdminPassword: "Secret"}))

	for _, candidate := range []string{"secret", "Secret ", " Secret", ""} {
		ok, err := svc.VerifyPassword(candidate)
		require.NoError(t, err)
		assert.False(t, ok, candidate)
	}
}

func TestChangePassword(t *testing.T) {
	svc, _ := setupTestService(t)

	err := svc.ChangePassword(PasswordInput{OldPassword: "nope", NewPassword: "longenough"})
	assert.ErrorIs(t, err, common.ErrValidation)

	err = svc.ChangePassword(PasswordInput{OldPassword: "admin123", NewPassword: "abc"})
	assert.ErrorIs(t, err, common.ErrValidation)

	require.NoError(t, svc.ChangePassword(PasswordInput{OldPassword: "admin123", NewPassword: "abcd"}))

	ok, err := svc.VerifyPassword("admin123")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.VerifyPassword("abcd")
	require.NoError(t, err)
	assert.True(t, ok)

	// old password now checked against the hash
	require.NoError(t, svc.ChangePassword(PasswordInput{OldPassword: "abcd", NewPassword: "efgh"}))
}

func TestSetPassword(t *testing.T) {
	svc, _ := setupTestService(t)

	assert.ErrorIs(t, svc.SetPassword("abc"), common.ErrValidation)
	require.NoError(t, svc.SetPassword("reset-pass"))

	ok, err := svc.VerifyPassword("reset-pass")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPasswordLengthCountsCharacters(t *testing.T) {
	svc, _ := setupTestService(t)

	// three characters, six bytes
	assert.ErrorIs(t, svc.SetPassword("ééé"), common.ErrValidation)
	err := svc.ChangePassword(PasswordInput{OldPassword: "admin123", NewPassword: "ééé"})
	assert.ErrorIs(t, err, common.ErrValidation)

	require.NoError(t, svc.ChangePassword(PasswordInput{OldPassword: "admin123", NewPassword: "éééé"}))
	ok, err := svc.VerifyPassword("éééé")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpdateSitePartial(t *testing.T) {
	svc, st := setupTestService(t)

	n := common.FlexInt(30)
	out, err := svc.UpdateSite(SiteInput{SiteTitle: ptr("  My Site "), ItemsPerPage: &n})
	require.NoError(t, err)
	assert.Equal(t, "My Site", out.SiteTitle)
	assert.Equal(t, models.DefaultConfig().SiteDescription, out.SiteDescription)
	assert.Equal(t, 30, out.ItemsPerPage)

	config, err := st.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "My Site", config.SiteTitle)
	assert.Equal(t, 30, config.ItemsPerPage)
	assert.Equal(t, models.DefaultConfig().AdminPassword, config.AdminPassword)

	zero := common.FlexInt(0)
	_, err = svc.UpdateSite(SiteInput{ItemsPerPage: &zero})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestUpdateAnnouncement(t *testing.T) {
	svc, _ := setupTestService(t)

	before, err := svc.Announcement()
	require.NoError(t, err)

	on := common.FlexBool(true)
	off := common.FlexBool(false)
	a, err := svc.UpdateAnnouncement(AnnouncementInput{
		Enabled:      &off,
		PopupEnabled: &on,
		PopupTitle:   ptr("  Popup "),
	})
	require.NoError(t, err)
	assert.False(t, a.Enabled)
	assert.True(t, a.PopupEnabled)
	assert.Equal(t, "Popup", a.PopupTitle)
	assert.Equal(t, before.Title, a.Title)
	assert.Equal(t, before.Content, a.Content)
	assert.NotEmpty(t, a.UpdatedAt)

	again, err := svc.Announcement()
	require.NoError(t, err)
	assert.Equal(t, a, again)
}

func TestPublicAnnouncement(t *testing.T) {
	svc, _ := setupTestService(t)

	public, err := svc.PublicAnnouncement()
	require.NoError(t, err)
	require.NotNil(t, public)
	assert.Contains(t, public.ContentHTML, "<p>")

	off := common.FlexBool(false)
	_, err = svc.UpdateAnnouncement(AnnouncementInput{Enabled: &off, Content: ptr("**bold**")})
	require.NoError(t, err)

	public, err = svc.PublicAnnouncement()
	require.NoError(t, err)
	assert.Nil(t, public)

	on := common.FlexBool(true)
	_, err = svc.UpdateAnnouncement(AnnouncementInput{Enabled: &on})
	require.NoError(t, err)

	public, err = svc.PublicAnnouncement()
	require.NoError(t, err)
	assert.Contains(t, public.ContentHTML, "<strong>bold</strong>")
}

func TestLoginLogsNewestFirst(t *testing.T) {
	svc, _ := setupTestService(t)

	require.NoError(t, svc.RecordLogin("1.1.1.1", "ua", false))
	require.NoError(t, svc.RecordLogin("2.2.2.2", "ua", true))

	logs, err := svc.LoginLogs()
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "2.2.2.2", logs[0].IP)
	assert.True(t, logs[0].Success)
	assert.Equal(t, "1.1.1.1", logs[1].IP)
}

func TestRevokeSessionsBumpsEpoch(t *testing.T) {
	svc, st := setupTestService(t)

	epoch, err := svc.SessionEpoch()
	require.NoError(t, err)
	assert.Equal(t, 0, epoch)

	require.NoError(t, svc.RevokeSessions())
	require.NoError(t, svc.RevokeSessions())

	epoch, err = svc.SessionEpoch()
	require.NoError(t, err)
	assert.Equal(t, 2, epoch)

	config, err := st.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 2, config.SessionEpoch)
}
