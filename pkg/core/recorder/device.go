package recorder

import (
	"strings"

	"github.com/mssola/useragent"
	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
)

// DetectDevice classifies a User-Agent header. Anything it cannot place,
// including an empty header, is a desktop.
func DetectDevice(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return domain.DeviceDesktop
	}
	ua := useragent.New(userAgent)
	if ua.Platform() == "iPad" || strings.Contains(userAgent, "Tablet") {
		return domain.DeviceTablet
	}
	if ua.Mobile() {
		return domain.DeviceMobile
	}
	return domain.DeviceDesktop
}
