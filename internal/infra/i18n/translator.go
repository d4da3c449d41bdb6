package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Translator serves the strings of one locale catalogue.
type Translator struct {
	lang         string
	translations map[string]string
}

// NewTranslator loads locales/<lang>.yaml from fsys. langCode may be any
// BCP 47 tag ("ru-RU", "en_GB"); only its base language selects the file.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	lang, err := baseLanguage(langCode)
	if err != nil {
		return nil, err
	}
	filePath := path.Join("locales", lang+".yaml")

	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}
	t, err := newTranslatorFromBytes(data)
	if err != nil {
		return nil, err
	}
	t.lang = lang
	return t, nil
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

func baseLanguage(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", code, err)
	}
	base, _ := tag.Base()
	return base.String(), nil
}

func (t *Translator) Lang() string { return t.lang }

// T returns the translation for key, formatted with args. Unknown keys are
// returned as-is.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// FormatDayMonth renders a date as "<day> <month>", e.g. "1 January".
func (t *Translator) FormatDayMonth(date time.Time) string {
	month := t.T(fmt.Sprintf("month_%d", int(date.Month())))
	return t.T("date_day_month", date.Day(), month)
}

func (t *Translator) UnlockHint(date time.Time) string {
	return t.T("unlock_hint", t.FormatDayMonth(date))
}

func (t *Translator) PastPlaceholder() string { return t.T("past_placeholder") }

func (t *Translator) BannerPlaceholder() string { return t.T("banner_placeholder") }
