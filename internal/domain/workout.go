package domain

type Workout string

const (
	WorkoutRunning       Workout = "Running"
	WorkoutCycling       Workout = "Cycling"
	WorkoutWeightlifting Workout = "Weightlifting"
	WorkoutSwimming      Workout = "Swimming"
	WorkoutYoga          Workout = "Yoga"
	WorkoutWalking       Workout = "Walking"
	WorkoutBasketball    Workout = "Basketball"
	WorkoutTennis        Workout = "Tennis"
	WorkoutOther         Workout = "Other"
)

// Workouts lists every accepted workout in display order.
var Workouts = []Workout{
	WorkoutRunning,
	WorkoutCycling,
	WorkoutWeightlifting,
	WorkoutSwimming,
	WorkoutYoga,
	WorkoutWalking,
	WorkoutBasketball,
	WorkoutTennis,
	WorkoutOther,
}

func (w Workout) Valid() bool {
	for _, known := range Workouts {
		if w == known {
			return true
		}
	}
	return false
}
