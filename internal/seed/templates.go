package seed

import "github.com/2beens/fittrack/internal/workouts"

type exerciseTemplate struct {
	name   string
	group  string
	mode   string
	sets   int
	reps   int // seconds for duration exercises
	weight float64
}

type workoutTemplate struct {
	name       string
	category   string
	difficulty string
	exercises  []exerciseTemplate
}

var templates = []workoutTemplate{
	{
		name:       "Treino A - Peito e Triceps",
		category:   "forca",
		difficulty: workouts.DifficultyIntermediate,
		exercises: []exerciseTemplate{
			{name: "Supino reto", group: "peito", mode: workouts.ModeRepetition, sets: 4, reps: 10, weight: 60},
			{name: "Supino inclinado", group: "peito", mode: workouts.ModeRepetition, sets: 3, reps: 10, weight: 50},
			{name: "Triceps corda", group: "triceps", mode: workouts.ModeRepetition, sets: 3, reps: 12, weight: 25},
			{name: "Prancha", group: "core", mode: workouts.ModeDuration, sets: 3, reps: 45},
		},
	},
	{
		name:       "Treino B - Costas e Biceps",
		category:   "forca",
		difficulty: workouts.DifficultyIntermediate,
		exercises: []exerciseTemplate{
			{name: "Puxada frontal", group: "costas", mode: workouts.ModeRepetition, sets: 4, reps: 10, weight: 55},
			{name: "Remada curvada", group: "costas", mode: workouts.ModeRepetition, sets: 3, reps: 10, weight: 50},
			{name: "Rosca direta", group: "biceps", mode: workouts.ModeRepetition, sets: 3, reps: 12, weight: 20},
		},
	},
	{
		name:       "Treino C - Pernas",
		category:   "forca",
		difficulty: workouts.DifficultyAdvanced,
		exercises: []exerciseTemplate{
			{name: "Agachamento livre", group: "pernas", mode: workouts.ModeRepetition, sets: 4, reps: 8, weight: 80},
			{name: "Leg press", group: "pernas", mode: workouts.ModeRepetition, sets: 4, reps: 12, weight: 160},
			{name: "Panturrilha em pe", group: "panturrilha", mode: workouts.ModeRepetition, sets: 4, reps: 15, weight: 40},
			{name: "Bicicleta", group: "cardio", mode: workouts.ModeDuration, sets: 1, reps: 600},
		},
	},
}
