package localization_test

import (
	"os"
	"path/filepath"
	"testing"

	"complaintdesk/backend/internal/localization"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalogue(t *testing.T, dir, lang, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, lang+".json"), []byte(body), 0o644))
}

func TestNewLocalizer_RequiresDefaultLanguage(t *testing.T) {
	dir := t.TempDir()
	writeCatalogue(t, dir, "uk", `{"a": "б"}`)

	_, err := localization.NewLocalizer(dir)
	assert.Error(t, err)
}

func TestNewLocalizer_RejectsBadJSON(t *testing.T) {
	dir := t.TempDir()
	writeCatalogue(t, dir, "en", `{"a": `)

	_, err := localization.NewLocalizer(dir)
	assert.Error(t, err)
}

func TestGetString_Fallbacks(t *testing.T) {
	dir := t.TempDir()
	writeCatalogue(t, dir, "en", `{"greeting": "Hello", "only.en": "English only"}`)
	writeCatalogue(t, dir, "uk", `{"greeting": "Привіт"}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.txt"), []byte("ignored"), 0o644))

	l, err := localization.NewLocalizer(dir)
	require.NoError(t, err)

	assert.Equal(t, "Привіт", l.GetString("uk", "greeting"))
	assert.Equal(t, "English only", l.GetString("uk", "only.en"))
	assert.Equal(t, "Hello", l.GetString("fr", "greeting"))
	assert.Equal(t, "missing.key", l.GetString("en", "missing.key"))
	assert.True(t, l.Has("only.en"))
	assert.False(t, l.Has("missing.key"))
}

func TestFormat(t *testing.T) {
	dir := t.TempDir()
	writeCatalogue(t, dir, "en", `{"unread": "You have %d unread"}`)
	l, err := localization.NewLocalizer(dir)
	require.NoError(t, err)

	assert.Equal(t, "You have 3 unread", l.Format("en", "unread", 3))
}

func TestLanguage(t *testing.T) {
	dir := t.TempDir()
	writeCatalogue(t, dir, "en", `{}`)
	writeCatalogue(t, dir, "uk", `{}`)
	l, err := localization.NewLocalizer(dir)
	require.NoError(t, err)

	assert.Equal(t, "uk", l.Language("uk-UA,uk;q=0.9,en;q=0.8"))
	assert.Equal(t, "en", l.Language("fr-CH, fr;q=0.9"))
	assert.Equal(t, "en", l.Language(""))
	assert.Equal(t, "en", l.Language("%%%"))
}

func TestShippedCatalogue_CoversMessageCodes(t *testing.T) {
	l, err := localization.NewLocalizer(filepath.Join("..", "..", "locales"))
	require.NoError(t, err)

	codes := []string{
		"complaint.submitted", "complaint.claimed", "complaint.categorized", "complaint.validated",
		"complaint.resolved", "complaint.rejected", "complaint.info_requested", "complaint.info_provided",
		"complaint.assigned", "complaint.escalated", "escalation.resolved", "escalation.forwarded",
		"committee.requested", "committee.assigned", "video_chat.requested", "video_chat.completed",
		"stereotype.tagged", "stereotype.already_tagged", "stereotype.untagged", "stereotype.not_tagged",
		"decision.sent", "decision.final_sent", "export.empty",
		"workflow.invalid_transition", "complaint.concurrent_update", "decision.final_exists",
		"decision.receiver_not_party",
		"validation.invalid_input", "error.internal", "auth.role_forbidden",
		"telegram.start", "telegram.not_linked", "telegram.unread", "telegram.no_unread", "telegram.help",
	}
	for _, code := range codes {
		assert.True(t, l.Has(code), code)
	}
}
