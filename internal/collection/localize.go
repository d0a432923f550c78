package collection

// FallbackNone отключает подстановку значения из другой локали
const FallbackNone = "none"

type Localization struct {
	Locales       []string `yaml:"locales"`
	DefaultLocale string   `yaml:"defaultLocale"`
}

func (l Localization) Enabled() bool {
	return len(l.Locales) > 0
}

// Has проверяет, что локаль объявлена
func (l Localization) Has(locale string) bool {
	for _, loc := range l.Locales {
		if loc == locale {
			return true
		}
	}
	return false
}

func (l Localization) resolve(locale string) string {
	if locale == "" {
		if l.DefaultLocale != "" {
			return l.DefaultLocale
		}
		if len(l.Locales) > 0 {
			return l.Locales[0]
		}
	}
	return locale
}

// Localize проецирует хранимые данные документа на одну локаль.
// Локализованное поле хранится как {locale: value}.
func (c *Collection) Localize(data map[string]interface{}, l Localization, locale, fallback string) map[string]interface{} {
	out := make(map[string]interface{}, len(data))
	for k, v := range data {
		out[k] = v
	}
	if !l.Enabled() {
		return out
	}

	locale = l.resolve(locale)
	if fallback == "" {
		fallback = l.resolve("")
	}

	for _, f := range c.Fields {
		if !f.Localized {
			continue
		}
		values, ok := data[f.Name].(map[string]interface{})
		if !ok {
			delete(out, f.Name)
			continue
		}
		v, ok := values[locale]
		if (!ok || v == nil) && fallback != FallbackNone {
			v = values[fallback]
		}
		if v == nil {
			delete(out, f.Name)
			continue
		}
		out[f.Name] = v
	}
	return out
}

// ApplyInput накладывает входные данные мутации на хранимые данные.
// Для локализованных полей изменяется только значение указанной локали.
func (c *Collection) ApplyInput(stored, input map[string]interface{}, l Localization, locale string) map[string]interface{} {
	out := make(map[string]interface{}, len(stored)+len(input))
	for k, v := range stored {
		out[k] = v
	}

	locale = l.resolve(locale)
	for name, v := range input {
		f, ok := c.Field(name)
		if !ok {
			continue
		}
		if !f.Localized || !l.Enabled() {
			out[name] = v
			continue
		}

		values := make(map[string]interface{})
		if prev, ok := stored[name].(map[string]interface{}); ok {
			for loc, pv := range prev {
				values[loc] = pv
			}
		}
		values[locale] = v
		out[name] = values
	}
	return out
}
