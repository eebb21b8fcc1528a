package api

import (
	"errors"
	"github.com/burenotti/healthtrack/internal/app/goalapp"
	"github.com/burenotti/healthtrack/internal/app/unitofwork"
	"github.com/burenotti/healthtrack/internal/domain"
	"github.com/burenotti/healthtrack/internal/domain/goal"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"net/http"
	"time"
)

func (s *Server) MountGoals(api *echo.Group) {
	goals := api.Group("/goals", LoginRequired(s.authService.Authorizer))

	goals.GET("", s.ListGoals)
	goals.POST("", s.CreateGoal)
	goals.GET("/:date", s.GetGoalByDate)
	goals.PUT("/:id", s.UpdateGoal)
	goals.DELETE("/:id", s.DeleteGoal)
}

func (s *Server) getGoalUoW() *unitofwork.UnitOfWork[*goalapp.AtomicContext] {
	return unitofwork.New[*goalapp.AtomicContext](
		s.db,
		goalapp.NewAtomicContext,
		s.msgBus,
		s.logger,
	)
}

type BloodPressure struct {
	Systolic  int `json:"systolic"`
	Diastolic int `json:"diastolic"`
}

type Goal struct {
	ID               string        `json:"id"`
	UserID           string        `json:"userId"`
	Date             time.Time     `json:"date"`
	Workout          string        `json:"workout"`
	WorkoutMinutes   int           `json:"workoutMinutes"`
	CaloriesBurnt    int           `json:"caloriesBurnt"`
	WaterConsumption float64       `json:"waterConsumption"`
	SleepTime        string        `json:"sleepTime"`
	WakeupTime       string        `json:"wakeupTime"`
	BloodPressure    BloodPressure `json:"bloodPressure"`
	HeartRate        int           `json:"heartRate"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

func toGoal(g *goal.Goal) *Goal {
	if g == nil {
		return nil
	}
	return &Goal{
		ID:               g.GoalID,
		UserID:           g.UserID,
		Date:             g.Date,
		Workout:          string(g.Workout),
		WorkoutMinutes:   g.WorkoutMinutes,
		CaloriesBurnt:    g.CaloriesBurnt,
		WaterConsumption: g.WaterConsumption,
		SleepTime:        g.SleepTime,
		WakeupTime:       g.WakeupTime,
		BloodPressure: BloodPressure{
			Systolic:  g.BloodPressure.Systolic,
			Diastolic: g.BloodPressure.Diastolic,
		},
		HeartRate: g.HeartRate,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

type GoalResponse struct {
	Message string `json:"message"`
	Goal    *Goal  `json:"goal"`
}

func (s *Server) ListGoals(c echo.Context) error {
	user := currentUser(c)

	goals, err := s.goalService.List(c.Request().Context(), s.getGoalUoW(), user.UserID)
	if err != nil {
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusOK, lo.Map(goals, func(g *goal.Goal, _ int) *Goal {
		return toGoal(g)
	}))
}

type GetGoalByDateRequest struct {
	Date string `param:"date" json:"-"`
}

func (s *Server) GetGoalByDate(c echo.Context) error {
	var req GetGoalByDateRequest
	if err := s.bind(c, &req); err != nil {
		return s.badRequest(c, err)
	}
	user := currentUser(c)

	g, err := s.goalService.GetByDate(c.Request().Context(), s.getGoalUoW(), user.UserID, req.Date)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDate) {
			return JsonError(c, http.StatusBadRequest, fieldMessages["date"])
		}
		if errors.Is(err, goal.ErrGoalNotFound) {
			return JsonError(c, http.StatusNotFound, "No goal found for this date")
		}
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusOK, toGoal(g))
}

type BloodPressureRequest struct {
	Systolic  *Int `json:"systolic" validate:"required,min=50,max=300"`
	Diastolic *Int `json:"diastolic" validate:"required,min=30,max=200"`
}

type CreateGoalRequest struct {
	Date             *string              `json:"date" validate:"required,isodate"`
	Workout          *string              `json:"workout" validate:"required,workout"`
	WorkoutMinutes   *Int                 `json:"workoutMinutes" validate:"required,min=0"`
	CaloriesBurnt    *Int                 `json:"caloriesBurnt" validate:"required,min=0"`
	WaterConsumption *Float               `json:"waterConsumption" validate:"required,min=0"`
	SleepTime        *string              `json:"sleepTime" validate:"required,clock"`
	WakeupTime       *string              `json:"wakeupTime" validate:"required,clock"`
	BloodPressure    BloodPressureRequest `json:"bloodPressure"`
	HeartRate        *Int                 `json:"heartRate" validate:"required,min=30,max=220"`
}

func (s *Server) CreateGoal(c echo.Context) error {
	var req CreateGoalRequest
	if err := s.bind(c, &req); err != nil {
		return s.badRequest(c, err)
	}
	user := currentUser(c)

	g, err := s.goalService.Create(c.Request().Context(), s.getGoalUoW(), user.UserID, *req.Date, goal.Targets{
		Workout:          domain.Workout(*req.Workout),
		WorkoutMinutes:   req.WorkoutMinutes.Get(),
		CaloriesBurnt:    req.CaloriesBurnt.Get(),
		WaterConsumption: req.WaterConsumption.Get(),
		SleepTime:        *req.SleepTime,
		WakeupTime:       *req.WakeupTime,
		BloodPressure: goal.BloodPressure{
			Systolic:  req.BloodPressure.Systolic.Get(),
			Diastolic: req.BloodPressure.Diastolic.Get(),
		},
		HeartRate: req.HeartRate.Get(),
	})
	if err != nil {
		if errors.Is(err, goal.ErrGoalExists) {
			return JsonError(c, http.StatusBadRequest, "Goal already exists for this date")
		}
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusCreated, GoalResponse{
		Message: "Goal created successfully",
		Goal:    toGoal(g),
	})
}

type BloodPressurePatch struct {
	Systolic  *Int `json:"systolic" validate:"omitnil,min=50,max=300"`
	Diastolic *Int `json:"diastolic" validate:"omitnil,min=30,max=200"`
}

type UpdateGoalRequest struct {
	ID               string             `param:"id" json:"-"`
	Workout          *string            `json:"workout" validate:"omitnil,workout"`
	WorkoutMinutes   *Int               `json:"workoutMinutes" validate:"omitnil,min=0"`
	CaloriesBurnt    *Int               `json:"caloriesBurnt" validate:"omitnil,min=0"`
	WaterConsumption *Float             `json:"waterConsumption" validate:"omitnil,min=0"`
	SleepTime        *string            `json:"sleepTime" validate:"omitnil,clock"`
	WakeupTime       *string            `json:"wakeupTime" validate:"omitnil,clock"`
	BloodPressure    BloodPressurePatch `json:"bloodPressure"`
	HeartRate        *Int               `json:"heartRate" validate:"omitnil,min=30,max=220"`
}

func (s *Server) UpdateGoal(c echo.Context) error {
	var req UpdateGoalRequest
	if err := s.bind(c, &req); err != nil {
		return s.badRequest(c, err)
	}
	user := currentUser(c)

	g, err := s.goalService.Update(c.Request().Context(), s.getGoalUoW(), user.UserID, req.ID, goal.Patch{
		Workout:          workoutPtr(req.Workout),
		WorkoutMinutes:   req.WorkoutMinutes.Ptr(),
		CaloriesBurnt:    req.CaloriesBurnt.Ptr(),
		WaterConsumption: req.WaterConsumption.Ptr(),
		SleepTime:        req.SleepTime,
		WakeupTime:       req.WakeupTime,
		Systolic:         req.BloodPressure.Systolic.Ptr(),
		Diastolic:        req.BloodPressure.Diastolic.Ptr(),
		HeartRate:        req.HeartRate.Ptr(),
	})
	if err != nil {
		if errors.Is(err, goal.ErrGoalNotFound) {
			return JsonError(c, http.StatusNotFound, "Goal not found")
		}
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusOK, GoalResponse{
		Message: "Goal updated successfully",
		Goal:    toGoal(g),
	})
}

type DeleteGoalRequest struct {
	ID string `param:"id" json:"-"`
}

func (s *Server) DeleteGoal(c echo.Context) error {
	var req DeleteGoalRequest
	if err := s.bind(c, &req); err != nil {
		return s.badRequest(c, err)
	}
	user := currentUser(c)

	if err := s.goalService.Delete(c.Request().Context(), s.getGoalUoW(), user.UserID, req.ID); err != nil {
		if errors.Is(err, goal.ErrGoalNotFound) {
			return JsonError(c, http.StatusNotFound, "Goal not found")
		}
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Goal deleted successfully"})
}

func workoutPtr(s *string) *domain.Workout {
	if s == nil {
		return nil
	}
	return lo.ToPtr(domain.Workout(*s))
}
