package util

import "testing"

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "Spaces and case",
			in:   "The Great Gatsby",
			want: "the-great-gatsby",
		},
		{
			name: "Single word",
			in:   "1984",
			want: "1984",
		},
		{
			name: "Empty",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slug(tt.in); got != tt.want {
				t.Errorf("Slug() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{
			name: "Shorter than limit",
			in:   "short",
			n:    10,
			want: "short",
		},
		{
			name: "Exactly at limit",
			in:   "12345",
			n:    5,
			want: "12345",
		},
		{
			name: "Cut",
			in:   "123456789",
			n:    4,
			want: "1234",
		},
		{
			name: "Multibyte runes",
			in:   "ครั้งหนึ่ง",
			n:    3,
			want: "ครั",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateRunes(tt.in, tt.n); got != tt.want {
				t.Errorf("TruncateRunes() = %v, want %v", got, tt.want)
			}
		})
	}
}
