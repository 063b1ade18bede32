package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Bundle is an immutable set of display strings for one locale. There is
// no process-wide current language: callers hold the bundle for the
// locale they are rendering and pass it down explicitly.
type Bundle struct {
	locale       string
	translations map[string]string
}

func NewBundle(fsys fs.FS, locale string) (*Bundle, error) {
	filePath := path.Join("locales", fmt.Sprintf("%s.yaml", locale))
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("read translation file %s: %w", filePath, err)
	}
	return newBundleFromBytes(locale, data)
}

func newBundleFromBytes(locale string, data []byte) (*Bundle, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("parse translation file: %w", err)
	}
	return &Bundle{locale: locale, translations: translations}, nil
}

// LoadAll loads one bundle per supported locale from the embedded files.
func LoadAll(locales []string) (map[string]*Bundle, error) {
	out := make(map[string]*Bundle, len(locales))
	for _, lc := range locales {
		b, err := NewBundle(LocalesFS, lc)
		if err != nil {
			return nil, err
		}
		out[lc] = b
	}
	return out, nil
}

func (b *Bundle) Locale() string { return b.locale }

// T translates a key, formatting optional arguments. Unknown keys come
// back verbatim so a missing string never breaks rendering.
func (b *Bundle) T(key string, args ...interface{}) string {
	format, ok := b.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}
