package monitor

import "time"

// Status is the last snapshot of all probes.
type Status struct {
	Healthy   bool            `json:"healthy"`
	Services  map[string]bool `json:"services"`
	LastCheck time.Time       `json:"last_check"`
}

func (s Status) clone() Status {
	services := make(map[string]bool, len(s.Services))
	for name, ok := range s.Services {
		services[name] = ok
	}
	s.Services = services
	return s
}
