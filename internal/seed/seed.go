// Package seed fills a user's account with workouts and a history of executed
// sessions, so statistics have something to aggregate in development.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/2beens/fittrack/internal/execution"
	"github.com/2beens/fittrack/internal/users"
	"github.com/2beens/fittrack/internal/workouts"
	"github.com/2beens/fittrack/pkg"

	"github.com/brianvoe/gofakeit/v6"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=seed_mocks_test.go -package=seed_test

type usersRepo interface {
	GetByEmail(ctx context.Context, email string) (*users.User, error)
	Add(ctx context.Context, user users.User) (*users.User, error)
}

type workoutsRepo interface {
	Create(ctx context.Context, w workouts.Workout) (*workouts.Workout, error)
	AddExercise(ctx context.Context, userID int, e workouts.Exercise) (*workouts.Exercise, error)
}

type sessionsRepo interface {
	Start(ctx context.Context, userID, workoutID int, now time.Time) (*execution.Session, error)
	Mutate(ctx context.Context, userID, id int, fn func(*execution.Session) error) (*execution.Session, error)
}

type Params struct {
	Email    string
	Password string
	Days     int
	PerWeek  int
	Now      time.Time
}

type Summary struct {
	UserID    int
	Workouts  int
	Finished  int
	Cancelled int
}

type Seeder struct {
	users    usersRepo
	catalog  workoutsRepo
	sessions sessionsRepo
	faker    *gofakeit.Faker

	// CancelChance and SkipChance are probabilities in [0, 1].
	CancelChance float64
	SkipChance   float64
}

func NewSeeder(users usersRepo, catalog workoutsRepo, sessions sessionsRepo, faker *gofakeit.Faker) *Seeder {
	return &Seeder{
		users:        users,
		catalog:      catalog,
		sessions:     sessions,
		faker:        faker,
		CancelChance: 0.05,
		SkipChance:   0.08,
	}
}

func (s *Seeder) Run(ctx context.Context, p Params) (Summary, error) {
	var summary Summary

	user, err := s.user(ctx, p)
	if err != nil {
		return summary, err
	}
	summary.UserID = user.ID

	var created []*workouts.Workout
	for _, tpl := range templates {
		w, err := s.workout(ctx, user.ID, tpl)
		if err != nil {
			return summary, err
		}
		created = append(created, w)
	}
	summary.Workouts = len(created)

	for i, startedAt := range Schedule(s.faker, p.Days, p.PerWeek, p.Now) {
		w := created[i%len(created)]
		status, err := s.session(ctx, user.ID, w.ID, startedAt)
		if err != nil {
			return summary, fmt.Errorf("session %d of workout %d: %w", i+1, w.ID, err)
		}
		if status == execution.StatusCancelled {
			summary.Cancelled++
		} else {
			summary.Finished++
		}
	}

	log.Debugf("seeded user %d: %d workouts, %d finished and %d cancelled sessions",
		summary.UserID, summary.Workouts, summary.Finished, summary.Cancelled)
	return summary, nil
}

func (s *Seeder) user(ctx context.Context, p Params) (*users.User, error) {
	user, err := s.users.GetByEmail(ctx, p.Email)
	if err == nil {
		log.Debugf("reusing user %d [%s]", user.ID, user.Email)
		return user, nil
	}
	if !errors.Is(err, users.ErrUserNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}

	hash, err := pkg.HashPassword(p.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err = s.users.Add(ctx, users.User{
		Name:         s.faker.Name(),
		Email:        p.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, fmt.Errorf("add user: %w", err)
	}
	log.Infof("created user %d [%s]", user.ID, user.Email)
	return user, nil
}

func (s *Seeder) workout(ctx context.Context, userID int, tpl workoutTemplate) (*workouts.Workout, error) {
	category, difficulty := tpl.category, tpl.difficulty
	w, err := s.catalog.Create(ctx, workouts.Workout{
		UserID:     userID,
		Name:       tpl.name,
		Category:   &category,
		Difficulty: &difficulty,
		Status:     workouts.StatusActive,
	})
	if err != nil {
		return nil, fmt.Errorf("create workout %s: %w", tpl.name, err)
	}

	for _, ex := range tpl.exercises {
		group := ex.group
		e := workouts.Exercise{
			WorkoutID:     w.ID,
			Name:          ex.name,
			MuscleGroup:   &group,
			ExecutionMode: ex.mode,
			Sets:          ex.sets,
			RestSecs:      intPtr(60),
			WeightUnit:    "kg",
			Status:        workouts.StatusActive,
		}
		if ex.mode == workouts.ModeDuration {
			e.DurationSecs = intPtr(ex.reps)
		} else {
			e.Reps = intPtr(ex.reps)
		}
		if ex.weight > 0 {
			e.Weight = floatPtr(ex.weight)
		}
		added, err := s.catalog.AddExercise(ctx, userID, e)
		if err != nil {
			return nil, fmt.Errorf("add exercise %s: %w", ex.name, err)
		}
		w.Exercises = append(w.Exercises, *added)
	}
	return w, nil
}

// session runs one workout from start to an end state, as a user in the gym would.
func (s *Seeder) session(ctx context.Context, userID, workoutID int, startedAt time.Time) (string, error) {
	started, err := s.sessions.Start(ctx, userID, workoutID, startedAt)
	if err != nil {
		return "", err
	}

	clock := startedAt
	closed, err := s.sessions.Mutate(ctx, userID, started.ID, func(session *execution.Session) error {
		if s.faker.Float64Range(0, 1) < s.CancelChance {
			clock = clock.Add(time.Duration(s.faker.Number(2, 10)) * time.Minute)
			return session.Cancel(clock)
		}

		for session.IsOpen() {
			def := session.CurrentDefinition()
			if def != nil && s.faker.Float64Range(0, 1) >= s.SkipChance {
				if _, err := session.UpdateCurrent(Realized(s.faker, *def)); err != nil {
					return err
				}
				clock = clock.Add(time.Duration(def.Sets*s.faker.Number(90, 180)) * time.Second)
				if err := session.Advance(clock); err != nil {
					return err
				}
				continue
			}

			clock = clock.Add(time.Duration(s.faker.Number(10, 60)) * time.Second)
			if err := session.Skip(clock, "sem tempo"); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return closed.Status, nil
}

// Schedule picks session start times over the days before now, at most one per
// day and perWeek per week on average, oldest first.
func Schedule(faker *gofakeit.Faker, days, perWeek int, now time.Time) []time.Time {
	chance := float64(perWeek) / 7
	var out []time.Time
	for i := days; i >= 1; i-- {
		if faker.Float64Range(0, 1) >= chance {
			continue
		}
		y, m, d := now.AddDate(0, 0, -i).Date()
		out = append(out, time.Date(y, m, d, faker.Number(6, 21), faker.Number(0, 59), 0, 0, now.Location()))
	}
	return out
}

// Realized varies the planned values of an exercise the way a real set would.
func Realized(faker *gofakeit.Faker, def workouts.Exercise) execution.ExerciseUpdate {
	upd := execution.ExerciseUpdate{
		Sets: intPtr(max(1, def.Sets+faker.Number(-1, 0))),
		Rest: intPtr(faker.Number(45, 120)),
	}
	if def.ExecutionMode == workouts.ModeDuration {
		planned := 30
		if def.DurationSecs != nil {
			planned = *def.DurationSecs
		}
		upd.Duration = intPtr(max(5, planned+faker.Number(-10, 15)))
		return upd
	}

	if def.Reps != nil {
		upd.Reps = intPtr(max(1, *def.Reps+faker.Number(-2, 2)))
	}
	if def.Weight != nil {
		// plates come in 2.5 kg steps
		weight := *def.Weight * faker.Float64Range(0.9, 1.1)
		upd.Weight = floatPtr(math.Round(weight/2.5) * 2.5)
	}
	return upd
}

func intPtr(v int) *int {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}
