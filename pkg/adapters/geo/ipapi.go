package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
	"github.com/wadjakorntonsri/trimlink/pkg/ports"
)

// IPAPI looks visitors up with the ipapi.co JSON endpoint.
type IPAPI struct {
	endpoint string
	client   *http.Client
}

func NewIPAPI(endpoint string, timeout time.Duration) *IPAPI {
	return &IPAPI{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

type ipapiResponse struct {
	City        string `json:"city"`
	CountryName string `json:"country_name"`
	Error       bool   `json:"error"`
	Reason      string `json:"reason"`
}

func (l *IPAPI) Locate(ctx context.Context, ip string) (domain.Location, error) {
	target := l.endpoint + "/json/"
	if ip != "" {
		target = l.endpoint + "/" + url.PathEscape(ip) + "/json/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.Location{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return domain.Location{}, fmt.Errorf("geolocate %s: %w", ip, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Location{}, fmt.Errorf("geolocate %s: unexpected status %d", ip, resp.StatusCode)
	}

	var body ipapiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Location{}, fmt.Errorf("geolocate %s: decode: %w", ip, err)
	}
	if body.Error {
		return domain.Location{}, fmt.Errorf("geolocate %s: %s", ip, body.Reason)
	}

	return domain.Location{City: body.City, Country: body.CountryName}, nil
}

var _ ports.Locator = (*IPAPI)(nil)
