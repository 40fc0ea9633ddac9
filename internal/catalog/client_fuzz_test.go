package catalog

import "testing"

func FuzzConvertToRecord(f *testing.F) {
	f.Add("md-1", "md-1", "Rivers")
	f.Add("md-2", "", "")
	f.Add("md-3", "  ", "  padded  ")

	f.Fuzz(func(t *testing.T, requested, uuid, title string) {
		payload := apiResponse{UUID: uuid}
		if title != "" {
			payload.Title = &title
		}
		record := convertToRecord(requested, payload)
		if record.UUID == "" && requested != "" {
			t.Fatalf("record uuid should fall back to the requested uuid")
		}
	})
}
