package config

import (
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/language"
)

// FallbackLocale is used when neither config nor environment name a locale.
const FallbackLocale = "en-US"

// ParseLocale canonicalizes a BCP-47 tag or a POSIX locale name
// ("de_DE.UTF-8", "sr_RS@latin") into a BCP-47 string such as "de-DE".
func ParseLocale(s string) (string, error) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "_", "-")

	tag, err := language.Parse(s)
	if err != nil {
		return "", err
	}
	return tag.String(), nil
}

// DetectLocale returns the configured locale, else the first usable value of
// LC_ALL, LC_MESSAGES and LANG, else FallbackLocale with a warning.
func (c *Config) DetectLocale() string {
	if c.Locale != "" {
		if tag, err := ParseLocale(c.Locale); err == nil {
			return tag
		}
	}

	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(key)
		if v == "" || v == "C" || v == "POSIX" || strings.HasPrefix(v, "C.") {
			continue
		}
		if tag, err := ParseLocale(v); err == nil {
			return tag
		}
	}

	slog.Warn("failed to get system locale, falling back",
		slog.String("locale", FallbackLocale))
	return FallbackLocale
}
