package checkup

import (
	"strings"
	"time"

	"github.com/verdant-app/verdant-server/models"
)

const dateLayout = "2006-01-02"

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// NextCheckupDate computes the next scheduled checkup from the user's
// cadence preference: frequency-in-weeks out from now, rolled forward to
// the earliest preferred day of week.
func NextCheckupDate(now time.Time, user *models.User) time.Time {
	if user == nil {
		return FallbackNextCheckup(now)
	}

	freq := user.CheckupFrequency
	if freq <= 0 {
		freq = 2
	}
	target := now.AddDate(0, 0, 7*freq)
	return rollToPreferred(target, user.PreferredCheckupDays)
}

// FallbackNextCheckup is used when the preference cannot be read: 14 days
// out, rolled forward to the next Sunday. Intentionally ignores whatever
// frequency the user may have configured.
func FallbackNextCheckup(now time.Time) time.Time {
	t := now.AddDate(0, 0, 14)
	for t.Weekday() != time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func rollToPreferred(target time.Time, days []string) time.Time {
	preferred := make(map[time.Weekday]bool)
	for _, name := range days {
		if wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]; ok {
			preferred[wd] = true
		}
	}
	if len(preferred) == 0 {
		preferred[time.Sunday] = true
	}

	for i := 0; i < 7; i++ {
		if preferred[target.Weekday()] {
			return target
		}
		target = target.AddDate(0, 0, 1)
	}
	return target
}
