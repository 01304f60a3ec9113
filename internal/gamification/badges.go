package gamification

// Badge is a label unlocked once the streak reaches Threshold days.
type Badge struct {
	Threshold int    `json:"threshold"`
	Label     string `json:"label"`
}

const (
	BadgeBeginner   = "Principiante 🔥"
	BadgeConsistent = "Consistente 💪"
	BadgePro        = "Racha Pro ⭐"
	BadgeLegend     = "Leyenda 📚"
)

// ascending by threshold
var badgeTable = []Badge{
	{Threshold: 3, Label: BadgeBeginner},
	{Threshold: 7, Label: BadgeConsistent},
	{Threshold: 14, Label: BadgePro},
	{Threshold: 30, Label: BadgeLegend},
}

// Badges returns a copy of the fixed badge table.
func Badges() []Badge {
	return append([]Badge(nil), badgeTable...)
}

// unlockBadges appends every badge whose threshold streak has reached and
// that is not yet present. Existing entries keep their order.
func unlockBadges(current []string, streak int) []string {
	out := append([]string{}, current...)
	for _, b := range badgeTable {
		if streak < b.Threshold {
			break
		}
		if !contains(out, b.Label) {
			out = append(out, b.Label)
		}
	}
	return out
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
