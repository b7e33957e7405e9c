package track

// SequenceState tracks a themed run of roads. The zero value is Inactive.
type SequenceState struct {
	Active bool
	Theme  string
	Steps  int // segments emitted since the opener, opener included
}

// Begin enters Active(theme, 1).
func (s *SequenceState) Begin(theme string) {
	s.Active = true
	s.Theme = theme
	s.Steps = 1
}

// End returns to Inactive.
func (s *SequenceState) End() {
	*s = SequenceState{}
}

// NextRole decides which roles the next continuation may use. maxLen of
// -1 never forces an end.
func (s *SequenceState) NextRole(maxLen int) Forced {
	if maxLen != -1 && s.Steps+1 >= maxLen-1 {
		return ForceEnd
	}
	return ForceMiddleOrEnd
}

// Placed records a continuation. ended reports whether the sequence is
// now over, either because an end template closed it or because the step
// was forced.
func (s *SequenceState) Placed(isEnd bool, forced Forced) (ended bool) {
	if isEnd || forced == ForceEnd {
		s.End()
		return true
	}
	s.Steps++
	return false
}
