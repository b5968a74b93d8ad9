package services

import "github.com/wadjakorntonsri/trimlink/pkg/core/domain"

// Summarize counts clicks by city, country and device.
func Summarize(clicks []domain.Click) domain.Stats {
	stats := domain.Stats{
		TotalClicks: len(clicks),
		ByCity:      map[string]int{},
		ByCountry:   map[string]int{},
		ByDevice:    map[string]int{},
	}
	for _, c := range clicks {
		stats.ByCity[orUnknown(c.City)]++
		stats.ByCountry[orUnknown(c.Country)]++
		stats.ByDevice[orUnknown(c.Device)]++
	}
	return stats
}

func orUnknown(s string) string {
	if s == "" {
		return domain.UnknownPlace
	}
	return s
}
