// Package i18n renders user-facing notices. Message ids are event types
// ("lead.created") or error keys ("error.not_found").
package i18n

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var locales embed.FS

type Translator struct {
	bundle  *i18n.Bundle
	matcher language.Matcher
	tags    []language.Tag
}

// New loads the embedded catalogues. defaultLang is used when the request
// matches nothing; an empty or unknown value falls back to French.
func New(defaultLang string) (*Translator, error) {
	base := language.French
	if tag, err := language.Parse(defaultLang); err == nil && defaultLang != "" {
		base = tag
	}

	bundle := i18n.NewBundle(base)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(locales, "locales/*.toml")
	if err != nil {
		return nil, fmt.Errorf("list catalogues: %w", err)
	}
	for _, f := range files {
		if _, err := bundle.LoadMessageFileFS(locales, f); err != nil {
			return nil, fmt.Errorf("load catalogue %s: %w", f, err)
		}
	}

	// The default goes first so the matcher falls back to it.
	tags := []language.Tag{base}
	for _, t := range bundle.LanguageTags() {
		if t != base {
			tags = append(tags, t)
		}
	}

	return &Translator{
		bundle:  bundle,
		matcher: language.NewMatcher(tags),
		tags:    tags,
	}, nil
}

// Match picks the supported language for an Accept-Language header value.
func (t *Translator) Match(acceptLanguage string) language.Tag {
	wanted, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(wanted) == 0 {
		return t.tags[0]
	}
	_, idx, _ := t.matcher.Match(wanted...)
	return t.tags[idx]
}

// Message renders id in the language best matching acceptLanguage.
// Unknown ids come back unchanged.
func (t *Translator) Message(acceptLanguage, id string, data map[string]string) string {
	tag := t.Match(acceptLanguage)
	loc := i18n.NewLocalizer(t.bundle, tag.String())

	cfg := &i18n.LocalizeConfig{MessageID: id}
	if len(data) > 0 {
		cfg.TemplateData = data
	}
	msg, err := loc.Localize(cfg)
	if err != nil {
		return id
	}
	return msg
}
