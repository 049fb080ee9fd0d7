package stats

import (
	"sort"
	"time"
)

const volumeWeeks = 8

type VolumeGroup struct {
	Name           string  `json:"grupo_muscular"`
	Volume         float64 `json:"volume_total"`
	ExercisesCount int     `json:"total_exercicios"`
	TotalSets      int     `json:"total_series"`
	TotalReps      int     `json:"total_repeticoes"`
}

type WeeklyVolume struct {
	WeekStart      string  `json:"semana_inicio"`
	Volume         float64 `json:"volume_total"`
	ExercisesCount int     `json:"total_exercicios"`
}

type Volume struct {
	Total  float64        `json:"volume_total"`
	Groups []VolumeGroup  `json:"grupos_musculares"`
	Weekly []WeeklyVolume `json:"semanal"`
}

// Volume sums load (sets x reps x weight) of completed executions, per muscle group
// and per Monday based week over the last eight weeks, oldest first. Executions
// missing any of the three count towards exercises but carry no load.
func (d *Dataset) Volume() Volume {
	today := dateOf(d.Now.In(d.Loc))
	firstWeek := today.addDays(-daysSinceMonday(today) - 7*(volumeWeeks-1))

	weekly := make([]WeeklyVolume, volumeWeeks)
	for i := range weekly {
		start := firstWeek.addDays(7 * i)
		weekly[i].WeekStart = time.Date(start.year, start.month, start.day, 0, 0, 0, 0, time.UTC).Format(time.DateOnly)
	}

	var v Volume
	byName := map[string]*VolumeGroup{}
	for _, e := range d.Exercises {
		name := orNA(e.MuscleGroup)
		g, ok := byName[name]
		if !ok {
			g = &VolumeGroup{Name: name}
			byName[name] = g
		}
		g.ExercisesCount++
		if e.DoneSets != nil {
			g.TotalSets += *e.DoneSets
		}
		if e.DoneReps != nil {
			g.TotalReps += *e.DoneReps
		}

		load := 0.0
		if e.DoneSets != nil && e.DoneReps != nil && e.DoneWeight != nil {
			load = float64(*e.DoneSets) * float64(*e.DoneReps) * *e.DoneWeight
		}
		g.Volume += load
		v.Total += load

		date := dateOf(e.SessionDate.In(d.Loc))
		if date.before(firstWeek) || today.before(date) {
			continue
		}
		week := daysBetween(firstWeek, date) / 7
		weekly[week].Volume += load
		weekly[week].ExercisesCount++
	}

	v.Total = round(v.Total, 2)
	v.Groups = make([]VolumeGroup, 0, len(byName))
	for _, g := range byName {
		g.Volume = round(g.Volume, 2)
		v.Groups = append(v.Groups, *g)
	}
	sort.Slice(v.Groups, func(i, j int) bool {
		if v.Groups[i].Volume != v.Groups[j].Volume {
			return v.Groups[i].Volume > v.Groups[j].Volume
		}
		return v.Groups[i].Name < v.Groups[j].Name
	})
	for i := range weekly {
		weekly[i].Volume = round(weekly[i].Volume, 2)
	}
	v.Weekly = weekly
	return v
}

type HourCount struct {
	Hour          int `json:"hora"`
	SessionsCount int `json:"total_treinos"`
}

type PreferredHours struct {
	ByHour    []HourCount    `json:"por_hora"`
	ByPeriod  map[string]int `json:"por_periodo"`
	Preferred *int           `json:"horario_preferido"`
	Period    *string        `json:"periodo_preferido"`
}

// day periods by starting hour
var dayPeriods = []struct {
	name string
	from int
}{
	{"madrugada", 0},
	{"manha", 6},
	{"tarde", 12},
	{"noite", 18},
}

func periodOf(hour int) string {
	name := dayPeriods[0].name
	for _, p := range dayPeriods {
		if hour >= p.from {
			name = p.name
		}
	}
	return name
}

// PreferredHours buckets finished sessions by the local hour they started at.
// Ties go to the earliest hour, and to the earliest period.
func (d *Dataset) PreferredHours() PreferredHours {
	var hours [24]int
	for _, s := range d.finished() {
		hours[s.StartedAt.In(d.Loc).Hour()]++
	}

	ph := PreferredHours{
		ByHour:   []HourCount{},
		ByPeriod: make(map[string]int, len(dayPeriods)),
	}
	for _, p := range dayPeriods {
		ph.ByPeriod[p.name] = 0
	}

	best := 0
	for hour, count := range hours {
		if count == 0 {
			continue
		}
		ph.ByHour = append(ph.ByHour, HourCount{Hour: hour, SessionsCount: count})
		ph.ByPeriod[periodOf(hour)] += count
		if count > best {
			best = count
			h := hour
			ph.Preferred = &h
		}
	}

	bestPeriod := 0
	for _, p := range dayPeriods {
		if count := ph.ByPeriod[p.name]; count > bestPeriod {
			bestPeriod = count
			name := p.name
			ph.Period = &name
		}
	}
	return ph
}

func daysBetween(from, to civilDate) int {
	a := time.Date(from.year, from.month, from.day, 12, 0, 0, 0, time.UTC)
	b := time.Date(to.year, to.month, to.day, 12, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
