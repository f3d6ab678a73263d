package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"
)

// supported languages, first entry is the fallback
var languageMatcher = language.NewMatcher([]language.Tag{language.Arabic, language.English})

// ResolveLanguage picks "ar" or "en". An explicit ?lang= wins over the
// Accept-Language header; anything unrecognised resolves to Arabic.
func ResolveLanguage(query, acceptLanguage string) string {
	if query != "" {
		if tag, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(query), "_", "-")); err == nil {
			base, _ := tag.Base()
			if base.String() == "en" {
				return "en"
			}
		}
		return "ar"
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return "ar"
	}
	_, index, _ := languageMatcher.Match(tags...)
	if index == 1 {
		return "en"
	}
	return "ar"
}

// Language stores the request language for handlers.
func Language(defaultLanguage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := ResolveLanguage(c.Query("lang"), c.GetHeader("Accept-Language"))
		if c.Query("lang") == "" && c.GetHeader("Accept-Language") == "" && defaultLanguage == "en" {
			lang = "en"
		}
		c.Set("lang", lang)
		c.Header("Content-Language", lang)
		c.Next()
	}
}

// GetLanguage returns the language chosen by Language, defaulting to Arabic.
func GetLanguage(c *gin.Context) string {
	if lang := c.GetString("lang"); lang != "" {
		return lang
	}
	return "ar"
}
