// Package report aggregates tasks, KPIs and evaluations into the read-only
// summaries shown on the dashboard and the reports page.
package report

import (
	"math"
	"sort"
	"time"

	"github.com/kazz187/teamboard/internal/evaluation"
	"github.com/kazz187/teamboard/internal/kpi"
	"github.com/kazz187/teamboard/internal/task"
)

type Kind string

const (
	KindTasks       Kind = "tasks"
	KindKPIs        Kind = "kpis"
	KindEvaluations Kind = "evaluations"
	KindTeam        Kind = "team"
	KindDashboard   Kind = "dashboard"
)

func (k Kind) Valid() bool {
	switch k {
	case KindTasks, KindKPIs, KindEvaluations, KindTeam, KindDashboard:
		return true
	}
	return false
}

const (
	TopPerformers = 5
	CriticalLimit = 5
)

// Rating bands of the evaluation distribution.
const (
	ExcellentRating = 4.5
	GoodRating      = 3.5
	AverageRating   = 2.5
)

type TasksReport struct {
	Total          int                   `json:"total"`
	Completed      int                   `json:"completed"`
	InProgress     int                   `json:"in_progress"`
	Pending        int                   `json:"pending"`
	CompletionRate float64               `json:"completion_rate"`
	ByPriority     map[task.Priority]int `json:"by_priority"`
}

func Tasks(tasks []*task.Task) *TasksReport {
	r := &TasksReport{
		Total: len(tasks),
		ByPriority: map[task.Priority]int{
			task.PriorityHigh:   0,
			task.PriorityMedium: 0,
			task.PriorityLow:    0,
		},
	}
	for _, t := range tasks {
		switch t.Status {
		case task.StatusCompleted:
			r.Completed++
		case task.StatusInProgress:
			r.InProgress++
		case task.StatusPending:
			r.Pending++
		}
		r.ByPriority[t.Priority]++
	}
	r.CompletionRate = percent(r.Completed, r.Total)
	return r
}

type KPIsReport struct {
	Total           int                  `json:"total"`
	Achieved        int                  `json:"achieved"`
	Pending         int                  `json:"pending"`
	AchievementRate float64              `json:"achievement_rate"`
	ByCategory      map[kpi.Category]int `json:"by_category"`
}

// KPIs counts a KPI as achieved once its current value reaches the target.
func KPIs(kpis []*kpi.KPI) *KPIsReport {
	r := &KPIsReport{Total: len(kpis), ByCategory: map[kpi.Category]int{}}
	for _, k := range kpis {
		if k.CurrentValue >= k.TargetValue {
			r.Achieved++
		}
		r.ByCategory[k.Category]++
	}
	r.Pending = r.Total - r.Achieved
	r.AchievementRate = percent(r.Achieved, r.Total)
	return r
}

type RatingDistribution struct {
	Excellent int `json:"excellent"`
	Good      int `json:"good"`
	Average   int `json:"average"`
	Poor      int `json:"poor"`
}

type EvaluationsReport struct {
	Total         int                         `json:"total"`
	AverageRating float64                     `json:"average_rating"`
	ByCategory    map[evaluation.Category]int `json:"by_category"`
	Distribution  RatingDistribution          `json:"distribution"`
}

func Evaluations(evals []*evaluation.Evaluation) *EvaluationsReport {
	r := &EvaluationsReport{Total: len(evals), ByCategory: map[evaluation.Category]int{}}
	sum := 0
	for _, e := range evals {
		sum += e.Rating
		r.ByCategory[e.Category]++
		rating := float64(e.Rating)
		switch {
		case rating >= ExcellentRating:
			r.Distribution.Excellent++
		case rating >= GoodRating:
			r.Distribution.Good++
		case rating >= AverageRating:
			r.Distribution.Average++
		default:
			r.Distribution.Poor++
		}
	}
	if len(evals) > 0 {
		r.AverageRating = round1(float64(sum) / float64(len(evals)))
	}
	return r
}

type MemberPerformance struct {
	Name           string  `json:"name"`
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	CompletionRate float64 `json:"completion_rate"`
}

type TeamReport struct {
	Members       int                  `json:"members"`
	Performance   []*MemberPerformance `json:"performance"`
	TopPerformers []*MemberPerformance `json:"top_performers"`
}

// Team groups assigned tasks by assignee. Unassigned tasks are ignored.
// Performance is ordered by name; ties among top performers are broken by
// name too.
func Team(tasks []*task.Task) *TeamReport {
	byName := map[string]*MemberPerformance{}
	for _, t := range tasks {
		if t.Assignee == "" {
			continue
		}
		m, ok := byName[t.Assignee]
		if !ok {
			m = &MemberPerformance{Name: t.Assignee}
			byName[t.Assignee] = m
		}
		m.Total++
		if t.Status == task.StatusCompleted {
			m.Completed++
		}
	}

	perf := make([]*MemberPerformance, 0, len(byName))
	for _, m := range byName {
		m.CompletionRate = percent(m.Completed, m.Total)
		perf = append(perf, m)
	}
	sort.Slice(perf, func(i, j int) bool { return perf[i].Name < perf[j].Name })

	top := make([]*MemberPerformance, len(perf))
	copy(top, perf)
	sort.SliceStable(top, func(i, j int) bool { return top[i].CompletionRate > top[j].CompletionRate })
	if len(top) > TopPerformers {
		top = top[:TopPerformers]
	}
	return &TeamReport{Members: len(perf), Performance: perf, TopPerformers: top}
}

type WeekdayStats struct {
	Day       string `json:"day"`
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
}

type DashboardReport struct {
	Completed     int            `json:"completed"`
	InProgress    int            `json:"in_progress"`
	Productivity  float64        `json:"productivity"`
	CriticalCount int            `json:"critical_count"`
	CriticalTasks []*task.Task   `json:"critical_tasks"`
	Week          []WeekdayStats `json:"week"`
}

// Dashboard summarizes the tasks for the week (Monday to Sunday) containing
// now. A task counts as completed on the day it was last updated while
// completed, and as pending on its due date while not completed.
// Critical tasks are high priority and not completed, earliest due first.
func Dashboard(tasks []*task.Task, now time.Time) *DashboardReport {
	r := &DashboardReport{}
	var critical []*task.Task
	for _, t := range tasks {
		switch t.Status {
		case task.StatusCompleted:
			r.Completed++
		case task.StatusInProgress:
			r.InProgress++
		}
		if t.Priority == task.PriorityHigh && t.Status != task.StatusCompleted {
			critical = append(critical, t)
		}
	}
	r.Productivity = percent(r.Completed, len(tasks))
	r.CriticalCount = len(critical)
	sort.SliceStable(critical, func(i, j int) bool { return dueBefore(critical[i], critical[j]) })
	if len(critical) > CriticalLimit {
		critical = critical[:CriticalLimit]
	}
	r.CriticalTasks = critical

	monday := startOfWeek(now)
	index := map[string]int{}
	for i := 0; i < 7; i++ {
		d := monday.AddDate(0, 0, i)
		date := d.Format(task.DateLayout)
		index[date] = i
		r.Week = append(r.Week, WeekdayStats{Day: d.Weekday().String()[:3], Date: date})
	}
	for _, t := range tasks {
		if t.Status == task.StatusCompleted {
			if i, ok := index[t.UpdatedAt.In(now.Location()).Format(task.DateLayout)]; ok {
				r.Week[i].Completed++
			}
			continue
		}
		if i, ok := index[t.DueDate]; ok {
			r.Week[i].Pending++
		}
	}
	return r
}

func startOfWeek(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// dueBefore orders tasks by due date with undated tasks last.
func dueBefore(a, b *task.Task) bool {
	da, okA := a.Due()
	db, okB := b.Due()
	switch {
	case okA && okB:
		return da.Before(db)
	case okA:
		return true
	}
	return false
}

// percent returns n/total as a percentage rounded to one decimal.
func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(n) / float64(total) * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
