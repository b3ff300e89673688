package catalog

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPreferredLanguage(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		header string
		want   string
	}{
		{name: "noPreference", want: "en"},
		{name: "thaiHeader", header: "th-TH,th;q=0.9,en;q=0.5", want: "th"},
		{name: "unsupportedFallsBack", header: "fr-FR", want: "en"},
		{name: "queryWins", query: "th", header: "en-US", want: "th"},
		{name: "englishVariant", header: "en-GB", want: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/branches/sukhumvit/menu"
			if tt.query != "" {
				path += "?lang=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, path, nil)
			if tt.header != "" {
				req.Header.Set("Accept-Language", tt.header)
			}
			if got := PreferredLanguage(req); got != tt.want {
				t.Errorf("PreferredLanguage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandlerBranchMenuLanguage(t *testing.T) {
	router := newCatalogRouter(newStoreFixture())

	req := httptest.NewRequest(http.MethodGet, "/branches/sukhumvit/menu", nil)
	req.Header.Set("Accept-Language", "th")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Language"); got != "th" {
		t.Errorf("Content-Language = %q, want th", got)
	}
}
