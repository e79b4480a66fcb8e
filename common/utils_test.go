package common

import (
	"errors"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name string
		n    int64
		want string
	}{
		{"zero", 0, "0 B"},
		{"bytes", 512, "512 B"},
		{"kib", 1024, "1.0 KiB"},
		{"mib", 1048576, "1.0 MiB"},
		{"gib", 3 * 1024 * 1024 * 1024, "3.0 GiB"},
		{"negative", -2048, "-2.0 KiB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatBytes(tt.n); got != tt.want {
				t.Errorf("FormatBytes(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestHandleError(t *testing.T) {
	if HandleError(nil) {
		t.Error("HandleError(nil) = true")
	}
	if !HandleError(errors.New("boom")) {
		t.Error("HandleError(err) = false")
	}
}
