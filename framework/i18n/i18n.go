package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Vars is a map of interpolation variables for translations.
type Vars map[string]any

// Translator translates keys for one current locale, falling back to a
// default locale. Translators derived with ForLocale share their catalog
// with the parent. It is safe for concurrent use.
type Translator struct {
	catalog       *catalog
	defaultLocale string

	mu            sync.RWMutex
	currentLocale string
}

type catalog struct {
	mu               sync.RWMutex
	translations     map[string]map[string]any
	availableLocales []string
}

// New creates an empty Translator whose current and fallback locale is
// defaultLocale ("en" when empty).
func New(defaultLocale string) *Translator {
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	return &Translator{
		catalog:       &catalog{translations: make(map[string]map[string]any)},
		defaultLocale: defaultLocale,
		currentLocale: defaultLocale,
	}
}

// ForLocale returns a Translator over the same catalog whose current locale
// is locale. An empty locale keeps t's current one. Changing the locale of
// either translator afterwards does not affect the other.
func (t *Translator) ForLocale(locale string) *Translator {
	if locale == "" {
		locale = t.Locale()
	}
	return &Translator{
		catalog:       t.catalog,
		defaultLocale: t.defaultLocale,
		currentLocale: locale,
	}
}

// Load reads every <locale>.yaml / <locale>.yml file in localesDir.
// A missing directory is not an error.
func (t *Translator) Load(localesDir string) error {
	entries, err := os.ReadDir(localesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No locales to load
		}
		return err
	}

	for _, f := range entries {
		if f.IsDir() {
			continue
		}
		ext := filepath.Ext(f.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		locale := strings.TrimSuffix(f.Name(), ext)

		data, err := os.ReadFile(filepath.Join(localesDir, f.Name()))
		if err != nil {
			return err
		}

		var nested map[string]any
		if err := yaml.Unmarshal(data, &nested); err != nil {
			return fmt.Errorf("i18n: %s: %w", f.Name(), err)
		}

		t.Add(locale, nested)
	}
	return nil
}

// Add merges nested translations into locale. Data may be wrapped in a top
// level key equal to the locale: en: { ... }.
func (t *Translator) Add(locale string, nested map[string]any) {
	if localeData, ok := nested[locale].(map[string]any); ok {
		nested = localeData
	}

	c := t.catalog
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.translations[locale]
	if !ok {
		data = make(map[string]any)
		c.translations[locale] = data
		c.availableLocales = append(c.availableLocales, locale)
	}
	for k, v := range flatten(nested, "") {
		data[k] = v
	}
}

// T translates a key with optional variable interpolation. Unknown keys are
// returned unchanged.
func (t *Translator) T(key string, vars Vars) string {
	val, ok := t.lookup(key)
	if !ok {
		return key
	}
	return interpolate(val, vars)
}

// Translate translates a source message within a category, returning the
// message itself when there is no translation. The lookup key is
// "<category>.<message>".
func (t *Translator) Translate(category, message string) string {
	val, ok := t.lookup(category + "." + message)
	if !ok {
		return message
	}
	return val
}

func (t *Translator) lookup(key string) (string, bool) {
	locale := t.Locale()

	c := t.catalog
	c.mu.RLock()
	defer c.mu.RUnlock()

	if val, ok := c.translations[locale][key].(string); ok {
		return val, true
	}
	// Fallback to default locale
	if locale != t.defaultLocale {
		if val, ok := c.translations[t.defaultLocale][key].(string); ok {
			return val, true
		}
	}
	return "", false
}

// Locale returns the current locale.
func (t *Translator) Locale() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.currentLocale
}

// SetLocale sets the current locale.
func (t *Translator) SetLocale(locale string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.currentLocale = locale
}

// AvailableLocales returns all loaded locales.
func (t *Translator) AvailableLocales() []string {
	t.catalog.mu.RLock()
	defer t.catalog.mu.RUnlock()
	return append([]string(nil), t.catalog.availableLocales...)
}

// HasLocale reports whether translations for locale were loaded.
func (t *Translator) HasLocale(locale string) bool {
	t.catalog.mu.RLock()
	defer t.catalog.mu.RUnlock()
	_, ok := t.catalog.translations[locale]
	return ok
}

func interpolate(val string, vars Vars) string {
	for k, v := range vars {
		placeholder := fmt.Sprintf("%%{%s}", k)
		val = strings.ReplaceAll(val, placeholder, fmt.Sprint(v))
	}
	return val
}

// flatten takes a nested map and flattens it into dot-notation keys.
func flatten(nested map[string]any, prefix string) map[string]any {
	flat := make(map[string]any)
	for k, v := range nested {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		if sub, ok := v.(map[string]any); ok {
			for sk, sv := range flatten(sub, key) {
				flat[sk] = sv
			}
		} else {
			flat[key] = v
		}
	}
	return flat
}
