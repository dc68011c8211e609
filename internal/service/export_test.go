package service

import "time"

// SetClock replaces the service clock for tests.
func (s *Service) SetClock(now func() time.Time) { s.now = now }
