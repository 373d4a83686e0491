package service

import "time"

// SetClock replaces the clock used for dashboard windows.
func (s *ModerationService) SetClock(now func() time.Time) {
	s.now = now
}
