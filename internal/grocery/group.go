package grocery

import (
	"sort"
	"time"

	"homeboard/internal/calendar"
	"homeboard/internal/model"
)

// WeekGroup is one rendered section of the list: all items added during a
// single grocery week, oldest first.
type WeekGroup struct {
	Title     string              `json:"title"`
	DateRange string              `json:"date_range"`
	WeekStart time.Time           `json:"week_start"`
	Items     []model.GroceryItem `json:"items"`
}

// GroupByWeek partitions items by the grocery week of their AddedAt.
// Groups are ordered newest week first; items within a group oldest first.
// Titles are rank-based relative labels, so a week is "שבוע שעבר" because
// it is the second-newest group present, not because it is calendar-adjacent.
//
// AddedAt values are stored in UTC; the week boundary is the Sunday of
// now's location, so every timestamp is converted there before bucketing.
func GroupByWeek(items []model.GroceryItem, now time.Time) []WeekGroup {
	loc := now.Location()
	buckets := make(map[time.Time][]model.GroceryItem)
	for _, item := range items {
		ws := calendar.WeekStart(item.AddedAt.In(loc))
		buckets[ws] = append(buckets[ws], item)
	}

	starts := make([]time.Time, 0, len(buckets))
	for ws := range buckets {
		starts = append(starts, ws)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].After(starts[j]) })

	currentWeek := calendar.WeekStart(now)
	groups := make([]WeekGroup, 0, len(starts))
	for i, ws := range starts {
		group := buckets[ws]
		sort.SliceStable(group, func(a, b int) bool {
			return group[a].AddedAt.Before(group[b].AddedAt)
		})
		groups = append(groups, WeekGroup{
			Title:     calendar.RelativeWeekTitle(i, ws.Equal(currentWeek)),
			DateRange: calendar.WeekLabel(ws),
			WeekStart: ws,
			Items:     group,
		})
	}
	return groups
}
