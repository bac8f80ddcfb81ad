package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestTranslator_Message(t *testing.T) {
	tr, err := New("fr")
	require.NoError(t, err)

	tests := []struct {
		name   string
		accept string
		id     string
		data   map[string]string
		want   string
	}{
		{"french default", "", "lead.deleted", map[string]string{"name": "Jean"}, "Lead Jean supprimé"},
		{"explicit english", "en-US,en;q=0.9", "lead.deleted", map[string]string{"name": "Jean"}, "Lead Jean deleted"},
		{"unsupported falls back", "de-DE", "client.deleted", map[string]string{"name": "Anne"}, "Client Anne supprimé"},
		{"quality order", "en;q=0.4, fr;q=0.8", "error.not_found", nil, "Élément introuvable"},
		{"unknown id", "fr", "lead.teleported", nil, "lead.teleported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.Message(tt.accept, tt.id, tt.data))
		})
	}
}

func TestTranslator_Match(t *testing.T) {
	tr, err := New("")
	require.NoError(t, err)

	assert.Equal(t, language.French, tr.Match("de-DE"))
	assert.Equal(t, language.English, tr.Match("en-GB"))
}

func TestCataloguesAreAligned(t *testing.T) {
	tr, err := New("fr")
	require.NoError(t, err)

	ids := []string{
		"lead.created", "lead.updated", "lead.moved", "lead.deleted", "lead.converted",
		"client.updated", "client.deleted",
		"task.created", "task.updated", "task.status_changed", "task.deleted",
		"user.created", "user.updated", "user.role_changed", "user.status_changed",
		"user.password_reset", "user.two_factor_changed", "user.deleted",
		"error.not_found", "error.validation", "error.conflict", "error.forbidden",
		"error.unauthorized", "error.rate_limited", "error.unavailable", "error.internal",
	}
	for _, id := range ids {
		for _, lang := range []string{"fr", "en"} {
			assert.NotEqual(t, id, tr.Message(lang, id, map[string]string{"name": "x", "title": "x", "status": "x", "role": "x"}), "%s missing in %s", id, lang)
		}
	}
}
