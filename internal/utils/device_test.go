package utils

import (
	"testing"

	"github.com/iliyamo/auth-session-service/internal/model"
)

func TestClassifyDevice(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		ua   string
		want string
	}{
		{"android phone", "Mozilla/5.0 (Linux; Android 14) Mobile Safari/537.36", model.DeviceMobile},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)", model.DeviceMobile},
		{"generic mobile", "SomeBrowser/1.0 mobile", model.DeviceMobile},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X)", model.DeviceTablet},
		{"android tablet", "Mozilla/5.0 (Linux; Android 14; Tablet) Mobile", model.DeviceTablet},
		{"desktop chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0", model.DeviceDesktop},
		{"empty", "", model.DeviceDesktop},
		{"uppercase markers", "ANDROID DEVICE", model.DeviceMobile},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyDevice(tc.ua); got != tc.want {
				t.Fatalf("ClassifyDevice(%q) = %q, want %q", tc.ua, got, tc.want)
			}
		})
	}
}
