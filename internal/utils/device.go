package utils

import (
	"strings"

	"github.com/iliyamo/auth-session-service/internal/model"
)

// ClassifyDevice maps a login user agent to a coarse device type using
// case-insensitive substring matching.  The heuristic is deliberately
// simple and order-sensitive: tablet markers win over mobile markers
// because tablet user agents routinely contain "mobile" as well.  An
// empty or unrecognized user agent classifies as DESKTOP.
func ClassifyDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	if strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad") {
		return model.DeviceTablet
	}
	if strings.Contains(ua, "mobile") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone") {
		return model.DeviceMobile
	}
	return model.DeviceDesktop
}
