package attendance

import "time"

// SummaryKey groups sessions per class slot. A struct key avoids the
// collision risk of concatenating the three parts into one string.
type SummaryKey struct {
	Department string
	Semester   int
	Subject    string
}

type SummaryRow struct {
	Department      string `json:"department"`
	Semester        int    `json:"semester"`
	Subject         string `json:"subject"`
	TodayAbsent     int    `json:"todayAbsent"`
	YesterdayAbsent int    `json:"yesterdayAbsent"`
}

// DayStart truncates t to its UTC day boundary.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BuildAbsenteeSummary aggregates absent counts per class slot into
// today/yesterday buckets. Sessions whose day matches neither boundary are
// counted into neither bucket but still emit their group.
func BuildAbsenteeSummary(sessions []Session, today time.Time) []SummaryRow {
	today = DayStart(today)
	yesterday := today.AddDate(0, 0, -1)

	summary := make(map[SummaryKey]*SummaryRow)

	for _, s := range sessions {
		key := SummaryKey{
			Department: s.Department,
			Semester:   s.Semester,
			Subject:    s.Subject,
		}

		row, ok := summary[key]
		if !ok {
			row = &SummaryRow{
				Department: s.Department,
				Semester:   s.Semester,
				Subject:    s.Subject,
			}
			summary[key] = row
		}

		absent := 0
		for _, r := range s.StudentRecords {
			if r.Status == StatusAbsent {
				absent++
			}
		}

		switch DayStart(s.Date) {
		case today:
			row.TodayAbsent += absent
		case yesterday:
			row.YesterdayAbsent += absent
		}
	}

	out := make([]SummaryRow, 0, len(summary))
	for _, row := range summary {
		out = append(out, *row)
	}

	return out
}
