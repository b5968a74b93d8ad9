package geo

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
	"github.com/wadjakorntonsri/trimlink/pkg/core/domain"
	"github.com/wadjakorntonsri/trimlink/pkg/ports"
)

// MaxMind resolves visitors against a local GeoLite2 City database.
type MaxMind struct {
	reader *geoip2.Reader
}

func OpenMaxMind(path string) (*MaxMind, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	return &MaxMind{reader: reader}, nil
}

func (m *MaxMind) Locate(_ context.Context, ip string) (domain.Location, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return domain.Location{}, fmt.Errorf("geolocate: invalid ip %q", ip)
	}
	record, err := m.reader.City(parsed)
	if err != nil {
		return domain.Location{}, fmt.Errorf("geolocate %s: %w", ip, err)
	}

	loc := domain.Location{City: domain.UnknownPlace, Country: domain.UnknownPlace}
	if name, ok := record.City.Names["en"]; ok {
		loc.City = name
	}
	if name, ok := record.Country.Names["en"]; ok {
		loc.Country = name
	}
	return loc, nil
}

func (m *MaxMind) Close() error {
	return m.reader.Close()
}

var _ ports.Locator = (*MaxMind)(nil)
