package format

import "testing"

func TestValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{0.4, "0.4"},
		{1, "1"},
		{7.26, "7.3"},
		{12, "12"},
		{87.5, "88"},
		{999, "999"},
		{1000, "1k"},
		{1200, "1.2k"},
		{999_999, "1000k"},
		{1_000_000, "1M"},
		{3_400_000, "3.4M"},
		{-5, "0"},
	}

	for _, tt := range tests {
		if got := Value(tt.in); got != tt.want {
			t.Errorf("Value(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBytes(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0 B/s"},
		{512, "512 B/s"},
		{1200, "1.2 kB/s"},
		{2_000_000, "2.0 MB/s"},
		{3_500_000_000, "3.5 GB/s"},
		{-100, "0 B/s"},
	}

	for _, tt := range tests {
		if got := Bytes(tt.in); got != tt.want {
			t.Errorf("Bytes(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
