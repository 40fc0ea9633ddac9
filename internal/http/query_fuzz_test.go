package httpserver

import (
	"net/http/httptest"
	"net/url"
	"testing"
)

func FuzzParseSize(f *testing.F) {
	seeds := []string{"", "10", "-1", "0", "abc", " 7 ", "99999999999999999999"}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		req := httptest.NewRequest("GET", "/api/userfeedback?size="+url.QueryEscape(raw), nil)
		size, err := parseSize(req)
		if err == nil && raw == "" && size != -1 {
			t.Fatalf("empty size must mean no limit, got %d", size)
		}
	})
}
