// Package gamification holds the canonical point, level and achievement rules.
// Every value here is derived from persisted stats; nothing is stored.
package gamification

const (
	// ReportSubmittedPoints is awarded to the author when a report is accepted.
	ReportSubmittedPoints = 5
	// ReportResolvedPoints is awarded to the author the first time their report is resolved.
	ReportResolvedPoints = 10

	pointsPerLevel = 10
	minLevel       = 1
)

// Level returns max(1, floor(points/10)).
func Level(points int) int {
	level := points / pointsPerLevel
	if level < minLevel {
		return minLevel
	}
	return level
}

// NextLevelAt returns the points total at which the next level is reached.
func NextLevelAt(points int) int {
	return (Level(points) + 1) * pointsPerLevel
}

// Stats are the persisted counters achievements are computed from.
type Stats struct {
	TotalReports    int64
	ResolvedReports int64
	Points          int
}

// Achievement is a badge and whether stats unlock it.
type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Unlocked    bool   `json:"unlocked"`
	Progress    int64  `json:"progress"`
	Target      int64  `json:"target"`
}

type metric int

const (
	metricReports metric = iota
	metricResolved
	metricPoints
)

type badge struct {
	id          string
	title       string
	description string
	metric      metric
	target      int64
}

var badges = []badge{
	{"first_report", "First Report", "Submitted your first hygiene report", metricReports, 1},
	{"active_citizen", "Active Citizen", "Submitted 10 reports", metricReports, 10},
	{"civic_champion", "Civic Champion", "Submitted 50 reports", metricReports, 50},
	{"problem_solver", "Problem Solver", "Had a report resolved", metricResolved, 1},
	{"cleanup_hero", "Cleanup Hero", "Had 10 reports resolved", metricResolved, 10},
	{"rising_star", "Rising Star", "Earned 50 points", metricPoints, 50},
	{"swachh_ambassador", "Swachh Ambassador", "Earned 200 points", metricPoints, 200},
}

// Achievements evaluates every badge against stats, in a stable order.
func Achievements(stats Stats) []Achievement {
	result := make([]Achievement, 0, len(badges))
	for _, b := range badges {
		var progress int64
		switch b.metric {
		case metricReports:
			progress = stats.TotalReports
		case metricResolved:
			progress = stats.ResolvedReports
		case metricPoints:
			progress = int64(stats.Points)
		}
		unlocked := progress >= b.target
		if progress > b.target {
			progress = b.target
		}
		result = append(result, Achievement{
			ID:          b.id,
			Title:       b.title,
			Description: b.description,
			Unlocked:    unlocked,
			Progress:    progress,
			Target:      b.target,
		})
	}
	return result
}
