package engine

import "testing"

func Test_percent(t *testing.T) {
	tests := []struct {
		n, total int64
		want     float32
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.66},
		{10, 10, 100},
	}
	for _, tt := range tests {
		if got := percent(tt.n, tt.total); got != tt.want {
			t.Errorf("percent(%d, %d) = %v, want %v", tt.n, tt.total, got, tt.want)
		}
	}
}
