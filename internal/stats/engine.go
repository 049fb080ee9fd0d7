package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

const (
	naLabel = "N/A"

	currentStreakLookbackDays = 365
	weeklyStreakLookbackWeeks = 52
	progressionSampleSize     = 5
)

type General struct {
	SessionsCount      int    `json:"total_treinos_executados"`
	ExercisesCount     int    `json:"total_exercicios_realizados"`
	TotalSecondsText   string `json:"tempo_total_formatado"`
	TotalSeconds       int    `json:"tempo_total_segundos"`
	AverageSecondsText string `json:"media_duracao_formatada"`
	AverageSeconds     int    `json:"media_duracao_segundos"`
}

// General counts finished and paused sessions; time figures only use finished ones.
func (d *Dataset) General() General {
	g := General{ExercisesCount: len(d.Exercises)}
	finished := 0
	for _, s := range d.Sessions {
		switch s.Status {
		case sessionFinished:
			finished++
			g.SessionsCount++
			g.TotalSeconds += s.TotalSeconds
		case sessionPaused:
			g.SessionsCount++
		}
	}
	if finished > 0 {
		g.AverageSeconds = int(math.Round(float64(g.TotalSeconds) / float64(finished)))
	}
	g.TotalSecondsText = FormatDuration(g.TotalSeconds)
	g.AverageSecondsText = FormatDuration(g.AverageSeconds)
	return g
}

type Window struct {
	Days               int     `json:"periodo_dias"`
	From               string  `json:"data_inicio"`
	SessionsCount      int     `json:"treinos_realizados"`
	ExercisesCount     int     `json:"exercicios_realizados"`
	TotalSecondsText   string  `json:"tempo_total_formatado"`
	TotalSeconds       int     `json:"tempo_total_segundos"`
	SessionsPerDay     float64 `json:"media_por_dia"`
	AverageSessionText string  `json:"media_tempo_por_treino"`
}

// Window totals finished sessions, and completed exercises of any session, that
// started within the last days.
func (d *Dataset) Window(days int) Window {
	from := d.Now.AddDate(0, 0, -days)
	w := Window{
		Days: days,
		From: from.In(d.Loc).Format(time.DateOnly),
	}
	for _, s := range d.finished() {
		if !s.StartedAt.Before(from) {
			w.SessionsCount++
			w.TotalSeconds += s.TotalSeconds
		}
	}
	for _, e := range d.Exercises {
		if !e.SessionDate.Before(from) {
			w.ExercisesCount++
		}
	}

	w.TotalSecondsText = FormatDuration(w.TotalSeconds)
	if days > 0 {
		w.SessionsPerDay = round(float64(w.SessionsCount)/float64(days), 1)
	}
	w.AverageSessionText = FormatDuration(0)
	if w.SessionsCount > 0 {
		w.AverageSessionText = FormatDuration(w.TotalSeconds / w.SessionsCount)
	}
	return w
}

type FavoriteExercise struct {
	ID          int    `json:"id"`
	Name        string `json:"nome"`
	MuscleGroup string `json:"grupo_muscular"`
	Count       int    `json:"total_execucoes"`
}

type FavoriteWorkout struct {
	ID       int    `json:"id"`
	Name     string `json:"nome"`
	Category string `json:"tipo"`
	Count    int    `json:"total_execucoes"`
}

type Favorites struct {
	Exercise *FavoriteExercise `json:"exercicio_mais_executado"`
	Workout  *FavoriteWorkout  `json:"treino_mais_executado"`
}

func (d *Dataset) Favorites() Favorites {
	var fav Favorites
	if top := d.TopExercises(1); len(top) > 0 {
		fav.Exercise = &FavoriteExercise{
			ID:          top[0].ExerciseID,
			Name:        top[0].Name,
			MuscleGroup: top[0].MuscleGroup,
			Count:       top[0].Count,
		}
	}
	if top := d.TopWorkouts(1); len(top) > 0 {
		fav.Workout = &FavoriteWorkout{
			ID:       top[0].WorkoutID,
			Name:     top[0].Name,
			Category: top[0].Category,
			Count:    top[0].Count,
		}
	}
	return fav
}

type DailyPoint struct {
	Date             string `json:"data"`
	DateText         string `json:"data_formatada"`
	Weekday          string `json:"dia_semana"`
	SessionsCount    int    `json:"total_treinos"`
	TotalSeconds     int    `json:"tempo_total"`
	TotalSecondsText string `json:"tempo_formatado"`
	AverageSeconds   int    `json:"tempo_medio"`
	AverageText      string `json:"tempo_medio_formatado"`
}

// Daily groups finished sessions of the last days by calendar date, oldest first.
// Dates without sessions are left out.
func (d *Dataset) Daily(days int) []DailyPoint {
	from := d.Now.AddDate(0, 0, -days)
	byDate := map[string]*DailyPoint{}
	for _, s := range d.finished() {
		if s.StartedAt.Before(from) {
			continue
		}
		local := s.StartedAt.In(d.Loc)
		key := local.Format(time.DateOnly)
		p, ok := byDate[key]
		if !ok {
			p = &DailyPoint{
				Date:     key,
				DateText: local.Format("02/01"),
				Weekday:  strings.ToLower(local.Weekday().String()),
			}
			byDate[key] = p
		}
		p.SessionsCount++
		p.TotalSeconds += s.TotalSeconds
	}

	series := make([]DailyPoint, 0, len(byDate))
	for _, p := range byDate {
		p.TotalSecondsText = FormatDuration(p.TotalSeconds)
		p.AverageSeconds = int(math.Round(float64(p.TotalSeconds) / float64(p.SessionsCount)))
		p.AverageText = FormatDuration(p.AverageSeconds)
		series = append(series, *p)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})
	return series
}

type WeekdayFrequency struct {
	SessionsCount   int     `json:"total_treinos"`
	AverageSessions float64 `json:"media_treinos"`
	TotalSeconds    int     `json:"total_tempo"`
}

// WeeklyFrequency folds the daily series of the last 28 days by weekday.
func (d *Dataset) WeeklyFrequency() map[string]WeekdayFrequency {
	type acc struct {
		days, sessions, seconds int
	}
	byDay := map[string]*acc{}
	for _, p := range d.Daily(28) {
		a, ok := byDay[p.Weekday]
		if !ok {
			a = &acc{}
			byDay[p.Weekday] = a
		}
		a.days++
		a.sessions += p.SessionsCount
		a.seconds += p.TotalSeconds
	}

	out := make(map[string]WeekdayFrequency, len(byDay))
	for day, a := range byDay {
		out[day] = WeekdayFrequency{
			SessionsCount:   a.sessions,
			AverageSessions: round(float64(a.sessions)/float64(a.days), 2),
			TotalSeconds:    a.seconds,
		}
	}
	return out
}

type TopExercise struct {
	Position      int    `json:"posicao"`
	ExerciseID    int    `json:"exercicio_id"`
	Name          string `json:"exercicio"`
	MuscleGroup   string `json:"grupo_muscular"`
	ExecutionMode string `json:"tipo_execucao"`
	Count         int    `json:"total_execucoes"`
}

// TopExercises ranks exercises by completed executions; ties go to the lowest id.
func (d *Dataset) TopExercises(limit int) []TopExercise {
	byID := map[int]*TopExercise{}
	for _, e := range d.Exercises {
		t, ok := byID[e.ExerciseID]
		if !ok {
			t = &TopExercise{
				ExerciseID:    e.ExerciseID,
				Name:          orNA(e.ExerciseName),
				MuscleGroup:   orNA(e.MuscleGroup),
				ExecutionMode: orNA(e.ExecutionMode),
			}
			byID[e.ExerciseID] = t
		}
		t.Count++
	}

	ranked := make([]TopExercise, 0, len(byID))
	for _, t := range byID {
		ranked = append(ranked, *t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].ExerciseID < ranked[j].ExerciseID
	})
	ranked = limitTo(ranked, limit)
	for i := range ranked {
		ranked[i].Position = i + 1
	}
	return ranked
}

type TopWorkout struct {
	Position         int    `json:"posicao"`
	WorkoutID        int    `json:"treino_id"`
	Name             string `json:"treino"`
	Category         string `json:"tipo"`
	Difficulty       string `json:"dificuldade"`
	Count            int    `json:"total_execucoes"`
	AverageText      string `json:"tempo_medio_formatado"`
	TotalSecondsText string `json:"tempo_total_formatado"`

	totalSeconds int
}

// TopWorkouts ranks workouts by finished sessions; ties go to the lowest id.
func (d *Dataset) TopWorkouts(limit int) []TopWorkout {
	byID := map[int]*TopWorkout{}
	for _, s := range d.finished() {
		t, ok := byID[s.WorkoutID]
		if !ok {
			t = &TopWorkout{
				WorkoutID:  s.WorkoutID,
				Name:       s.WorkoutName,
				Category:   orNA(s.WorkoutCategory),
				Difficulty: orNA(s.WorkoutDifficulty),
			}
			byID[s.WorkoutID] = t
		}
		t.Count++
		t.totalSeconds += s.TotalSeconds
	}

	ranked := make([]TopWorkout, 0, len(byID))
	for _, t := range byID {
		t.AverageText = FormatDuration(int(math.Round(float64(t.totalSeconds) / float64(t.Count))))
		t.TotalSecondsText = FormatDuration(t.totalSeconds)
		ranked = append(ranked, *t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].WorkoutID < ranked[j].WorkoutID
	})
	ranked = limitTo(ranked, limit)
	for i := range ranked {
		ranked[i].Position = i + 1
	}
	return ranked
}

type Record struct {
	Position    int     `json:"posicao"`
	ExerciseID  int     `json:"exercicio_id"`
	Name        string  `json:"exercicio"`
	MuscleGroup string  `json:"grupo_muscular"`
	MaxWeight   float64 `json:"maior_peso"`
	RepsAtMax   int     `json:"maior_repeticoes"`
	Count       int     `json:"total_execucoes"`
}

// Records is the heaviest weight per exercise, with the best rep count at that
// weight, heaviest first.
func (d *Dataset) Records(limit int) []Record {
	byID := map[int]*Record{}
	for _, e := range d.Exercises {
		if e.DoneWeight == nil || *e.DoneWeight <= 0 {
			continue
		}
		r, ok := byID[e.ExerciseID]
		if !ok {
			r = &Record{
				ExerciseID:  e.ExerciseID,
				Name:        orNA(e.ExerciseName),
				MuscleGroup: orNA(e.MuscleGroup),
			}
			byID[e.ExerciseID] = r
		}
		r.Count++

		reps := 0
		if e.DoneReps != nil {
			reps = *e.DoneReps
		}
		switch {
		case *e.DoneWeight > r.MaxWeight:
			r.MaxWeight = *e.DoneWeight
			r.RepsAtMax = reps
		case *e.DoneWeight == r.MaxWeight && reps > r.RepsAtMax:
			r.RepsAtMax = reps
		}
	}

	ranked := make([]Record, 0, len(byID))
	for _, r := range byID {
		ranked = append(ranked, *r)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].MaxWeight != ranked[j].MaxWeight {
			return ranked[i].MaxWeight > ranked[j].MaxWeight
		}
		return ranked[i].ExerciseID < ranked[j].ExerciseID
	})
	ranked = limitTo(ranked, limit)
	for i := range ranked {
		ranked[i].Position = i + 1
	}
	return ranked
}

type MuscleGroup struct {
	Name             string  `json:"grupo_muscular"`
	ExercisesCount   int     `json:"total_exercicios"`
	DistinctCount    int     `json:"exercicios_diferentes"`
	TotalSets        int     `json:"total_series"`
	TotalReps        int     `json:"total_repeticoes"`
	AverageWeight    float64 `json:"peso_medio"`
	MaxWeight        float64 `json:"maior_peso"`
	TotalSeconds     int     `json:"tempo_total"`
	TotalSecondsText string  `json:"tempo_total_formatado"`
}

// MuscleGroups rolls completed executions up by the muscle group of their exercise.
func (d *Dataset) MuscleGroups() []MuscleGroup {
	type acc struct {
		group    MuscleGroup
		distinct map[int]struct{}
		weights  mean
	}
	byName := map[string]*acc{}
	for _, e := range d.Exercises {
		if e.MuscleGroup == nil || *e.MuscleGroup == "" {
			continue
		}
		a, ok := byName[*e.MuscleGroup]
		if !ok {
			a = &acc{
				group:    MuscleGroup{Name: *e.MuscleGroup},
				distinct: map[int]struct{}{},
			}
			byName[*e.MuscleGroup] = a
		}
		a.group.ExercisesCount++
		a.distinct[e.ExerciseID] = struct{}{}
		if e.DoneSets != nil {
			a.group.TotalSets += *e.DoneSets
		}
		if e.DoneReps != nil {
			a.group.TotalReps += *e.DoneReps
		}
		if e.DoneWeight != nil {
			a.weights.addFloat(e.DoneWeight)
			a.group.MaxWeight = math.Max(a.group.MaxWeight, *e.DoneWeight)
		}
		a.group.TotalSeconds += e.DoneDuration
	}

	groups := make([]MuscleGroup, 0, len(byName))
	for _, a := range byName {
		g := a.group
		g.DistinctCount = len(a.distinct)
		g.AverageWeight = round(a.weights.value(), 1)
		g.TotalSecondsText = FormatDuration(g.TotalSeconds)
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].ExercisesCount != groups[j].ExercisesCount {
			return groups[i].ExercisesCount > groups[j].ExercisesCount
		}
		return groups[i].Name < groups[j].Name
	})
	return groups
}

type EvolutionStats struct {
	Count         int     `json:"total_execucoes"`
	MaxWeight     float64 `json:"maior_peso"`
	MaxReps       int     `json:"maior_repeticoes"`
	AverageWeight float64 `json:"peso_medio"`
	AverageReps   float64 `json:"repeticoes_medio"`
	First         *string `json:"primeira_execucao"`
	Last          *string `json:"ultima_execucao"`
}

// Progression is the mean of the latest executions minus the mean of the earliest.
type Progression struct {
	Weight   float64 `json:"peso"`
	Reps     float64 `json:"repeticoes"`
	Sets     float64 `json:"series"`
	Duration float64 `json:"tempo"`
}

type EvolutionEntry struct {
	Date         string   `json:"data"`
	DateText     string   `json:"data_formatada"`
	Sets         *int     `json:"series_realizadas"`
	Reps         *int     `json:"repeticoes_realizadas"`
	Weight       *float64 `json:"peso_utilizado"`
	Duration     int      `json:"tempo_execucao"`
	DurationText string   `json:"tempo_execucao_formatado"`
	Notes        *string  `json:"observacoes"`
}

type Evolution struct {
	Stats       EvolutionStats   `json:"estatisticas"`
	Progression Progression      `json:"progressao"`
	History     []EvolutionEntry `json:"historico"`
}

// Evolution is the chronological history of one exercise. Exercises holds only
// that exercise's records.
func (d *Dataset) Evolution() Evolution {
	records := make([]ExerciseRecord, len(d.Exercises))
	copy(records, d.Exercises)
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].SessionDate.Equal(records[j].SessionDate) {
			return records[i].SessionDate.Before(records[j].SessionDate)
		}
		return records[i].ID < records[j].ID
	})

	ev := Evolution{
		Stats:   EvolutionStats{Count: len(records)},
		History: make([]EvolutionEntry, 0, len(records)),
	}
	var weights, reps mean
	for _, r := range records {
		if r.DoneWeight != nil {
			ev.Stats.MaxWeight = math.Max(ev.Stats.MaxWeight, *r.DoneWeight)
		}
		if r.DoneReps != nil && *r.DoneReps > ev.Stats.MaxReps {
			ev.Stats.MaxReps = *r.DoneReps
		}
		weights.addFloat(r.DoneWeight)
		reps.addInt(r.DoneReps)

		local := r.SessionDate.In(d.Loc)
		ev.History = append(ev.History, EvolutionEntry{
			Date:         local.Format(time.DateOnly),
			DateText:     local.Format("02/01/2006"),
			Sets:         r.DoneSets,
			Reps:         r.DoneReps,
			Weight:       r.DoneWeight,
			Duration:     r.DoneDuration,
			DurationText: FormatDuration(r.DoneDuration),
			Notes:        r.Notes,
		})
	}
	ev.Stats.AverageWeight = round(weights.value(), 1)
	ev.Stats.AverageReps = round(reps.value(), 1)
	if n := len(ev.History); n > 0 {
		first, last := ev.History[0].DateText, ev.History[n-1].DateText
		ev.Stats.First, ev.Stats.Last = &first, &last
	}
	ev.Progression = progression(records)
	return ev
}

// progression compares the first and last samples of a chronological history;
// the two samples overlap when there are fewer than twice the sample size.
func progression(records []ExerciseRecord) Progression {
	if len(records) < 2 {
		return Progression{}
	}
	n := progressionSampleSize
	if len(records) < n {
		n = len(records)
	}
	early, late := records[:n], records[len(records)-n:]

	avg := func(rs []ExerciseRecord) (weight, reps, sets, duration float64) {
		var w, r, s, dur mean
		for _, rec := range rs {
			w.addFloat(rec.DoneWeight)
			r.addInt(rec.DoneReps)
			s.addInt(rec.DoneSets)
			dur.addInt(&rec.DoneDuration)
		}
		return w.value(), r.value(), s.value(), dur.value()
	}
	ew, er, es, ed := avg(early)
	lw, lr, ls, ld := avg(late)

	return Progression{
		Weight:   round(lw-ew, 1),
		Reps:     round(lr-er, 1),
		Sets:     round(ls-es, 1),
		Duration: math.Round(ld - ed),
	}
}

type Streaks struct {
	Current int `json:"sequencia_atual"`
	Longest int `json:"maior_sequencia"`
	Weekly  int `json:"sequencia_semanal"`
}

// Streaks counts runs of calendar days, and Monday based weeks, with at least one
// finished session. The current runs end today and are 0 when today is empty.
func (d *Dataset) Streaks() Streaks {
	days := map[civilDate]struct{}{}
	for _, s := range d.finished() {
		days[dateOf(s.StartedAt.In(d.Loc))] = struct{}{}
	}

	today := dateOf(d.Now.In(d.Loc))
	var st Streaks

	for i := 0; i < currentStreakLookbackDays; i++ {
		if _, ok := days[today.addDays(-i)]; !ok {
			break
		}
		st.Current++
	}

	sorted := make([]civilDate, 0, len(days))
	for day := range days {
		sorted = append(sorted, day)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].before(sorted[j])
	})
	run := 0
	for i, day := range sorted {
		if i > 0 && sorted[i-1].addDays(1) == day {
			run++
		} else {
			run = 1
		}
		if run > st.Longest {
			st.Longest = run
		}
	}

	weekStart := today.addDays(-daysSinceMonday(today))
	for i := 0; i < weeklyStreakLookbackWeeks; i++ {
		start := weekStart.addDays(-7 * i)
		found := false
		for j := 0; j < 7 && !found; j++ {
			_, found = days[start.addDays(j)]
		}
		if !found {
			break
		}
		st.Weekly++
	}
	return st
}

type ConsistencyWindow struct {
	Sessions int     `json:"treinos"`
	Target   int     `json:"meta"`
	Percent  float64 `json:"percentual_meta"`
}

type Consistency struct {
	LastWeek    ConsistencyWindow `json:"ultimos_7_dias"`
	LastMonth   ConsistencyWindow `json:"ultimas_4_semanas"`
	LastQuarter ConsistencyWindow `json:"ultimos_3_meses"`
}

// Consistency compares finished session counts of the last 7, 28 and 90 days
// against one a day, three a week and twelve a month.
func (d *Dataset) Consistency() Consistency {
	window := func(days, target int) ConsistencyWindow {
		from := d.Now.AddDate(0, 0, -days)
		w := ConsistencyWindow{Target: target}
		for _, s := range d.finished() {
			if !s.StartedAt.Before(from) {
				w.Sessions++
			}
		}
		w.Percent = round(float64(w.Sessions)/float64(target)*100, 1)
		return w
	}
	return Consistency{
		LastWeek:    window(7, 7),
		LastMonth:   window(28, 4*3),
		LastQuarter: window(90, 3*12),
	}
}

type Variation struct {
	Sessions     int `json:"treinos"`
	Exercises    int `json:"exercicios"`
	TotalSeconds int `json:"tempo_total"`
}

type Comparison struct {
	Current   Window    `json:"periodo_atual"`
	Previous  Window    `json:"periodo_anterior"`
	Variation Variation `json:"variacao"`
}

// Compare sets the recent window against the part of the longer window that
// precedes it: variation = recent - (longer - recent).
func (d *Dataset) Compare(recentDays, longerDays int) Comparison {
	recent, longer := d.Window(recentDays), d.Window(longerDays)
	return Comparison{
		Current:  recent,
		Previous: longer,
		Variation: Variation{
			Sessions:     recent.SessionsCount - (longer.SessionsCount - recent.SessionsCount),
			Exercises:    recent.ExercisesCount - (longer.ExercisesCount - recent.ExercisesCount),
			TotalSeconds: recent.TotalSeconds - (longer.TotalSeconds - recent.TotalSeconds),
		},
	}
}

// FormatDuration renders seconds as HH:MM:SS.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// mean averages the values it was given, skipping absent ones.
type mean struct {
	sum   float64
	count int
}

func (m *mean) addFloat(v *float64) {
	if v != nil {
		m.sum += *v
		m.count++
	}
}

func (m *mean) addInt(v *int) {
	if v != nil {
		m.sum += float64(*v)
		m.count++
	}
}

func (m *mean) value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) civilDate {
	y, m, d := t.Date()
	return civilDate{y, m, d}
}

func (c civilDate) addDays(n int) civilDate {
	return dateOf(time.Date(c.year, c.month, c.day+n, 12, 0, 0, 0, time.UTC))
}

func (c civilDate) before(o civilDate) bool {
	if c.year != o.year {
		return c.year < o.year
	}
	if c.month != o.month {
		return c.month < o.month
	}
	return c.day < o.day
}

func daysSinceMonday(c civilDate) int {
	wd := time.Date(c.year, c.month, c.day, 12, 0, 0, 0, time.UTC).Weekday()
	return (int(wd) + 6) % 7
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return naLabel
	}
	return *s
}

func limitTo[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
