package subject

import "testing"

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"24h without seconds", "14:00", "14:00:00"},
		{"24h with seconds", "09:30:15", "09:30:15"},
		{"12h PM with space", "2:00 PM", "14:00:00"},
		{"12h AM with space", "9:05 AM", "09:05:00"},
		{"12h without space", "2:00PM", "14:00:00"},
		{"12h lowercase meridiem", "2:00 pm", "14:00:00"},
		{"noon", "12:00 PM", "12:00:00"},
		{"midnight", "12:00 AM", "00:00:00"},
		{"padded input", "  14:00  ", "14:00:00"},
		{"empty means no value", "", ""},
		{"whitespace only", "   ", ""},
		{"unparseable passes through", "25:99", "25:99"},
		{"garbage passes through", "mediodía", "mediodía"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTime(tt.in); got != tt.want {
				t.Errorf("NormalizeTime(%q) = %q; want %q", tt.in, got, tt.want)
			}
		})
	}
}
