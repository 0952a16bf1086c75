package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/juju/clock"

	"github.com/asidocente/school-records/internal/application/result"
	"github.com/asidocente/school-records/internal/application/validation"
	"github.com/asidocente/school-records/internal/domain/academicperiod"
	"github.com/asidocente/school-records/internal/domain/shared"
	"github.com/asidocente/school-records/internal/domain/store"
	"github.com/asidocente/school-records/pkg/logger"
)

// CreateAcademicPeriodCommand opens a grading period.
type CreateAcademicPeriodCommand struct {
	Name         string    `json:"name" validate:"required,notblank,max=100"`
	PeriodType   int       `json:"periodType" validate:"gte=0,lte=3"`
	SchoolYear   int       `json:"schoolYear" validate:"gte=2000,lte=2100"`
	PeriodNumber int       `json:"periodNumber" validate:"gt=0"`
	StartDate    time.Time `json:"startDate" validate:"required"`
	EndDate      time.Time `json:"endDate" validate:"required"`
	SchoolID     int64     `json:"schoolId" validate:"gt=0"`
}

// ValidationMessages implements validation.Messenger.
func (CreateAcademicPeriodCommand) ValidationMessages() map[string]string {
	return map[string]string{
		"name.required":   "Period name is required",
		"periodType.gte":  "Invalid period type",
		"periodType.lte":  "Invalid period type",
		"schoolYear.gte":  "Invalid school year",
		"schoolYear.lte":  "Invalid school year",
		"periodNumber.gt": "Period number must be greater than zero",
	}
}

// Check implements validation.Checker.
func (c CreateAcademicPeriodCommand) Check(time.Time) []validation.FieldError {
	if !c.StartDate.IsZero() && !c.EndDate.IsZero() && !c.StartDate.Before(c.EndDate) {
		return []validation.FieldError{{Field: "endDate", Message: "Start date must be before end date"}}
	}
	return nil
}

// CreateAcademicPeriodHandler handles the CreateAcademicPeriodCommand.
type CreateAcademicPeriodHandler struct {
	store store.Store
	clock clock.Clock
}

// NewCreateAcademicPeriodHandler creates a new CreateAcademicPeriodHandler.
func NewCreateAcademicPeriodHandler(st store.Store, clk clock.Clock) *CreateAcademicPeriodHandler {
	return &CreateAcademicPeriodHandler{store: st, clock: clk}
}

// Handle creates the period.
func (h *CreateAcademicPeriodHandler) Handle(ctx context.Context, cmd CreateAcademicPeriodCommand) (result.Result[int64], error) {
	const op, prefix = "create_academic_period", "Error creating academic period: "
	now := h.clock.Now()

	var id int64
	_, err := h.store.Do(ctx, func(ctx context.Context, tx store.Repositories) ([]shared.Event, error) {
		if _, err := activeSchool(ctx, tx, cmd.SchoolID); err != nil {
			return nil, err
		}
		p, err := academicperiod.NewAcademicPeriod(academicperiod.NewAcademicPeriodParams{
			Name:         cmd.Name,
			PeriodType:   academicperiod.PeriodType(cmd.PeriodType),
			SchoolYear:   cmd.SchoolYear,
			PeriodNumber: cmd.PeriodNumber,
			StartDate:    cmd.StartDate,
			EndDate:      cmd.EndDate,
			SchoolID:     cmd.SchoolID,
		}, now)
		if err != nil {
			return nil, err
		}
		if err := tx.AcademicPeriods().Add(ctx, p); err != nil {
			return nil, err
		}
		id = p.ID
		return nil, nil
	})
	if err != nil {
		return outcome[int64](op, prefix, err)
	}

	logger.FromContext(ctx).InfoContext(ctx, "academic period created", slog.Int64("academic_period_id", id))
	return result.Success(id), nil
}
