package catalog

import (
	"net/http"

	"golang.org/x/text/language"
)

// Menu text is authored in these languages; the first is the fallback.
var supportedLanguages = []language.Tag{
	language.English,
	language.Thai,
}

var languageMatcher = language.NewMatcher(supportedLanguages)

// PreferredLanguage picks the menu language for a request from the lang
// query parameter, then Accept-Language. It returns a key usable with Text.In.
func PreferredLanguage(r *http.Request) string {
	_, i := language.MatchStrings(languageMatcher, r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
	base, _ := supportedLanguages[i].Base()
	return base.String()
}
