package agro

import "time"

// Calendar-window predicates shared by the aggregator and the profile
// builder. Both sides must classify a given day identically, or winter
// totals drift at year boundaries.

// InChillWindow reports whether t falls in the dormancy chill window
// (November through February).
func InChillWindow(t time.Time) bool {
	m := t.Month()
	return m >= time.November || m <= time.February
}

// InGDDWindow reports whether t falls in the growing season
// (April through October).
func InGDDWindow(t time.Time) bool {
	m := t.Month()
	return m >= time.April && m <= time.October
}

// InSpringFrostWindow reports whether t falls in the bloom-damage frost
// window (March and April).
func InSpringFrostWindow(t time.Time) bool {
	m := t.Month()
	return m == time.March || m == time.April
}

// InSummerWindow reports whether t falls in June through August.
func InSummerWindow(t time.Time) bool {
	m := t.Month()
	return m >= time.June && m <= time.August
}

// WinterCampaignYear returns the campaign a winter day belongs to:
// November and December count toward the following year's campaign, so
// Nov Y through Feb Y+1 all share campaign Y+1.
func WinterCampaignYear(t time.Time) int {
	if t.Month() >= time.November {
		return t.Year() + 1
	}
	return t.Year()
}
