package youtube

import "testing"

func TestParseChannelRef(t *testing.T) {
	tests := []struct {
		name       string
		ref        string
		wantID     string
		wantHandle string
	}{
		{"raw channel id", "UCabc123", "UCabc123", ""},
		{"handle", "@where2eat", "", "@where2eat"},
		{"channel url", "https://www.youtube.com/channel/UCabc123", "UCabc123", ""},
		{"channel url with suffix", "https://youtube.com/channel/UCabc123/videos", "UCabc123", ""},
		{"channel url with query", "https://youtube.com/channel/UCabc123?view=0", "UCabc123", ""},
		{"handle url", "https://www.youtube.com/@where2eat", "", "@where2eat"},
		{"handle url with suffix", "https://youtube.com/@where2eat/videos", "", "@where2eat"},
		{"unrecognized", "not a channel", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, handle := parseChannelRef(tt.ref)
			if id != tt.wantID || handle != tt.wantHandle {
				t.Errorf("parseChannelRef(%q) = (%q, %q), want (%q, %q)",
					tt.ref, id, handle, tt.wantID, tt.wantHandle)
			}
		})
	}
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"PT15M33S", 933},
		{"PT1H2M3S", 3723},
		{"PT45S", 45},
		{"PT2H", 7200},
		{"PT0S", 0},
		{"", 0},
		{"P1D", 0},
		{"garbage", 0},
	}
	for _, tt := range tests {
		if got := parseISODuration(tt.input); got != tt.want {
			t.Errorf("parseISODuration(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}
