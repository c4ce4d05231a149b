package model

// Standing is a team's aggregate record in one simulated world.
type Standing struct {
	Team         string
	Wins         int
	Draws        int
	Losses       int
	GoalsFor     int
	GoalsAgainst int
}

// Points returns 3 per win plus 1 per draw.
func (s *Standing) Points() int { return 3*s.Wins + s.Draws }

// GoalDifference returns goals for minus goals against.
func (s *Standing) GoalDifference() int { return s.GoalsFor - s.GoalsAgainst }

// Played returns the number of matches folded into the standing.
func (s *Standing) Played() int { return s.Wins + s.Draws + s.Losses }

// Record folds one result into the standing from the team's perspective.
func (s *Standing) Record(scored, conceded int) {
	s.GoalsFor += scored
	s.GoalsAgainst += conceded
	switch {
	case scored > conceded:
		s.Wins++
	case scored < conceded:
		s.Losses++
	default:
		s.Draws++
	}
}
