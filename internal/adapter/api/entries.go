package api

import (
	"errors"
	"github.com/burenotti/healthtrack/internal/app/entryapp"
	"github.com/burenotti/healthtrack/internal/app/unitofwork"
	"github.com/burenotti/healthtrack/internal/domain"
	"github.com/burenotti/healthtrack/internal/domain/entry"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
	"net/http"
	"time"
)

func (s *Server) MountEntries(api *echo.Group) {
	entries := api.Group("/entries", LoginRequired(s.authService.Authorizer))

	entries.GET("", s.ListEntries)
	entries.POST("", s.CreateEntry)
	entries.GET("/today/comparison", s.GetTodayComparison)
	entries.GET("/stats/weekly", s.GetWeeklyStats)
	entries.GET("/:date", s.GetEntryByDate)
	entries.PUT("/:id", s.UpdateEntry)
	entries.DELETE("/:id", s.DeleteEntry)
}

func (s *Server) getEntryUoW() *unitofwork.UnitOfWork[*entryapp.AtomicContext] {
	return unitofwork.New[*entryapp.AtomicContext](
		s.db,
		entryapp.NewAtomicContext,
		s.msgBus,
		s.logger,
	)
}

type Entry struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	Date             time.Time `json:"date"`
	Workout          string    `json:"workout"`
	WorkoutMinutes   int       `json:"workoutMinutes"`
	WaterConsumption float64   `json:"waterConsumption"`
	SleepTime        string    `json:"sleepTime"`
	WakeupTime       string    `json:"wakeupTime"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func toEntry(e *entry.Entry) *Entry {
	if e == nil {
		return nil
	}
	return &Entry{
		ID:               e.EntryID,
		UserID:           e.UserID,
		Date:             e.Date,
		Workout:          string(e.Workout),
		WorkoutMinutes:   e.WorkoutMinutes,
		WaterConsumption: e.WaterConsumption,
		SleepTime:        e.SleepTime,
		WakeupTime:       e.WakeupTime,
		CreatedAt:        e.CreatedAt,
		UpdatedAt:        e.UpdatedAt,
	}
}

func toEntries(entries []*entry.Entry) []*Entry {
	return lo.Map(entries, func(e *entry.Entry, _ int) *Entry {
		return toEntry(e)
	})
}

type EntryResponse struct {
	Message string `json:"message"`
	Entry   *Entry `json:"entry"`
}

func (s *Server) ListEntries(c echo.Context) error {
	user := currentUser(c)

	entries, err := s.entryService.List(c.Request().Context(), s.getEntryUoW(), user.UserID)
	if err != nil {
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusOK, toEntries(entries))
}

type GetEntryByDateRequest struct {
	Date string `param:"date" json:"-"`
}

func (s *Server) GetEntryByDate(c echo.Context) error {
	var req GetEntryByDateRequest
	if err := s.bind(c, &req); err != nil {
		return s.badRequest(c, err)
	}
	user := currentUser(c)

	e, err := s.entryService.GetByDate(c.Request().Context(), s.getEntryUoW(), user.UserID, req.Date)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidDate) {
			return JsonError(c, http.StatusBadRequest, fieldMessages["date"])
		}
		if errors.Is(err, entry.ErrEntryNotFound) {
			return JsonError(c, http.StatusNotFound, "No entry found for this date")
		}
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusOK, toEntry(e))
}

type CreateEntryRequest struct {
	Date             *string `json:"date" validate:"required,isodate"`
	Workout          *string `json:"workout" validate:"required,workout"`
	WorkoutMinutes   *Int    `json:"workoutMinutes" validate:"required,min=0"`
	WaterConsumption *Float  `json:"waterConsumption" validate:"required,min=0"`
	SleepTime        *string `json:"sleepTime" validate:"required,clock"`
	WakeupTime       *string `json:"wakeupTime" validate:"required,clock"`
}

func (s *Server) CreateEntry(c echo.Context) error {
	var req CreateEntryRequest
	if err := s.bind(c, &req); err != nil {
		return s.badRequest(c, err)
	}
	user := currentUser(c)

	e, err := s.entryService.Create(c.Request().Context(), s.getEntryUoW(), user.UserID, *req.Date, entry.Activity{
		Workout:          domain.Workout(*req.Workout),
		WorkoutMinutes:   req.WorkoutMinutes.Get(),
		WaterConsumption: req.WaterConsumption.Get(),
		SleepTime:        *req.SleepTime,
		WakeupTime:       *req.WakeupTime,
	})
	if err != nil {
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusCreated, EntryResponse{
		Message: "Entry created successfully",
		Entry:   toEntry(e),
	})
}

type UpdateEntryRequest struct {
	ID               string  `param:"id" json:"-"`
	Workout          *string `json:"workout" validate:"omitnil,workout"`
	WorkoutMinutes   *Int    `json:"workoutMinutes" validate:"omitnil,min=0"`
	WaterConsumption *Float  `json:"waterConsumption" validate:"omitnil,min=0"`
	SleepTime        *string `json:"sleepTime" validate:"omitnil,clock"`
	WakeupTime       *string `json:"wakeupTime" validate:"omitnil,clock"`
}

func (s *Server) UpdateEntry(c echo.Context) error {
	var req UpdateEntryRequest
	if err := s.bind(c, &req); err != nil {
		return s.badRequest(c, err)
	}
	user := currentUser(c)

	e, err := s.entryService.Update(c.Request().Context(), s.getEntryUoW(), user.UserID, req.ID, entry.Patch{
		Workout:          workoutPtr(req.Workout),
		WorkoutMinutes:   req.WorkoutMinutes.Ptr(),
		WaterConsumption: req.WaterConsumption.Ptr(),
		SleepTime:        req.SleepTime,
		WakeupTime:       req.WakeupTime,
	})
	if err != nil {
		if errors.Is(err, entry.ErrEntryNotFound) {
			return JsonError(c, http.StatusNotFound, "Entry not found")
		}
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusOK, EntryResponse{
		Message: "Entry updated successfully",
		Entry:   toEntry(e),
	})
}

type DeleteEntryRequest struct {
	ID string `param:"id" json:"-"`
}

func (s *Server) DeleteEntry(c echo.Context) error {
	var req DeleteEntryRequest
	if err := s.bind(c, &req); err != nil {
		return s.badRequest(c, err)
	}
	user := currentUser(c)

	if err := s.entryService.Delete(c.Request().Context(), s.getEntryUoW(), user.UserID, req.ID); err != nil {
		if errors.Is(err, entry.ErrEntryNotFound) {
			return JsonError(c, http.StatusNotFound, "Entry not found")
		}
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Entry deleted successfully"})
}

type Metric[T int | float64] struct {
	Actual   T    `json:"actual"`
	Goal     T    `json:"goal"`
	Achieved bool `json:"achieved"`
}

type Totals struct {
	WorkoutMinutes   int     `json:"workoutMinutes"`
	WaterConsumption float64 `json:"waterConsumption"`
}

type Comparison struct {
	WorkoutMinutes   Metric[int]     `json:"workoutMinutes"`
	WaterConsumption Metric[float64] `json:"waterConsumption"`
}

type TodayComparisonResponse struct {
	Entries    []*Entry    `json:"entries"`
	Entry      *Entry      `json:"entry"`
	Goal       *Goal       `json:"goal"`
	Totals     *Totals     `json:"totals"`
	Comparison *Comparison `json:"comparison"`
}

func (s *Server) GetTodayComparison(c echo.Context) error {
	user := currentUser(c)

	view, err := s.entryService.TodayComparison(c.Request().Context(), user.UserID)
	if err != nil {
		return s.internalError(c, err)
	}

	resp := TodayComparisonResponse{
		Entries: toEntries(view.Entries),
		Entry:   toEntry(view.Latest),
		Goal:    toGoal(view.Goal),
	}
	if view.Totals != nil {
		resp.Totals = &Totals{
			WorkoutMinutes:   view.Totals.WorkoutMinutes,
			WaterConsumption: view.Totals.WaterConsumption,
		}
	}
	if cmp := view.Comparison; cmp != nil {
		resp.Comparison = &Comparison{
			WorkoutMinutes:   Metric[int](cmp.WorkoutMinutes),
			WaterConsumption: Metric[float64](cmp.WaterConsumption),
		}
	}

	return c.JSON(http.StatusOK, resp)
}

type DayStat struct {
	Date             time.Time `json:"date"`
	WorkoutMinutes   int       `json:"workoutMinutes"`
	WaterConsumption float64   `json:"waterConsumption"`
	Workout          string    `json:"workout"`
}

type Averages struct {
	WorkoutMinutes   int     `json:"workoutMinutes"`
	WaterConsumption float64 `json:"waterConsumption"`
}

type WeeklyStatsResponse struct {
	WeeklyStats  []DayStat `json:"weeklyStats"`
	Averages     Averages  `json:"averages"`
	TotalEntries int       `json:"totalEntries"`
}

func (s *Server) GetWeeklyStats(c echo.Context) error {
	user := currentUser(c)

	stats, err := s.entryService.WeeklyStats(c.Request().Context(), user.UserID)
	if err != nil {
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusOK, WeeklyStatsResponse{
		WeeklyStats: lo.Map(stats.Days, func(d entry.DayStat, _ int) DayStat {
			return DayStat{
				Date:             d.Date,
				WorkoutMinutes:   d.WorkoutMinutes,
				WaterConsumption: d.WaterConsumption,
				Workout:          string(d.Workout),
			}
		}),
		Averages: Averages{
			WorkoutMinutes:   stats.Averages.WorkoutMinutes,
			WaterConsumption: stats.Averages.WaterConsumption,
		},
		TotalEntries: stats.TotalEntries,
	})
}
