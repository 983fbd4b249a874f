package shared

import "testing"

func TestNormalizeTrackKey(t *testing.T) {
	tc := []struct {
		name   string
		title  string
		artist string
		want   string
	}{
		{
			name:   "basic normalization",
			title:  "Song Title",
			artist: "Artist Name",
			want:   "song title|artist name",
		},
		{
			name:   "extra whitespace",
			title:  "  Song   Title  ",
			artist: "  Artist   Name  ",
			want:   "song title|artist name",
		},
		{
			name:   "mixed case",
			title:  "SoNg TiTlE",
			artist: "ArTiSt NaMe",
			want:   "song title|artist name",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeTrackKey(tt.title, tt.artist)
			if got != tt.want {
				t.Errorf("NormalizeTrackKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tc := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{name: "shorter than max", in: "abc", max: 10, want: "abc"},
		{name: "exactly max", in: "abcde", max: 5, want: "abcde"},
		{name: "longer than max", in: "abcdef", max: 3, want: "abc"},
		{name: "multibyte runes", in: "могила", max: 4, want: "моги"},
		{name: "zero max", in: "abc", max: 0, want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.max); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain name", in: "Numb.mp3", want: "Numb.mp3"},
		{name: "forward slash", in: "AC/DC - Thunderstruck.mp3", want: "AC_DC - Thunderstruck.mp3"},
		{name: "backslash", in: "a\\b.mp3", want: "a_b.mp3"},
		{name: "parent traversal", in: "../../etc/passwd", want: "_2F_2Fetc_passwd"},
		{name: "empty", in: "  ", want: "track"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFileName(tt.in)
			if tt.name == "parent traversal" {
				// Exact replacement order is an implementation detail; the
				// property that matters is no separators survive.
				if containsAny(got, "/\\") {
					t.Errorf("SanitizeFileName(%q) = %q still contains a path separator", tt.in, got)
				}
				return
			}
			if got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func containsAny(s, chars string) bool {
	for _, c := range chars {
		for _, r := range s {
			if r == c {
				return true
			}
		}
	}
	return false
}
