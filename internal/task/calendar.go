package task

import (
	"fmt"
	"sort"
	"time"
)

// MaxCalendarDays bounds a calendar request; a month view with leading and
// trailing weeks fits comfortably.
const MaxCalendarDays = 62

type CalendarDay struct {
	Date  string  `json:"date"`
	Tasks []*Task `json:"tasks"`
}

// Calendar lays tasks out on every day in [from, to], including days with no
// tasks. Tasks without a due date, or due outside the range, are dropped.
// Within a day, tasks are ordered by priority (high first) then title.
func Calendar(tasks []*Task, from, to time.Time) ([]CalendarDay, error) {
	start, end := truncateDay(from), truncateDay(to)
	if end.Before(start) {
		return nil, fmt.Errorf("calendar range ends before it starts")
	}
	days := int(end.Sub(start)/(24*time.Hour)) + 1
	if days > MaxCalendarDays {
		return nil, fmt.Errorf("calendar range of %d days exceeds %d", days, MaxCalendarDays)
	}

	byDate := make(map[string][]*Task)
	for _, t := range tasks {
		due, ok := t.Due()
		if !ok || due.Before(start) || due.After(end) {
			continue
		}
		byDate[t.DueDate] = append(byDate[t.DueDate], t)
	}

	out := make([]CalendarDay, 0, days)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(DateLayout)
		dayTasks := byDate[key]
		sort.SliceStable(dayTasks, func(i, j int) bool {
			pi, pj := priorityRank(dayTasks[i].Priority), priorityRank(dayTasks[j].Priority)
			if pi != pj {
				return pi > pj
			}
			return dayTasks[i].Title < dayTasks[j].Title
		})
		out = append(out, CalendarDay{Date: key, Tasks: dayTasks})
	}
	return out, nil
}

func priorityRank(p Priority) int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}
