package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biskaken/garage-api/internal/apperr"
	"github.com/biskaken/garage-api/internal/httpx"
	"github.com/biskaken/garage-api/internal/middleware"
	"github.com/biskaken/garage-api/internal/model"
	"github.com/biskaken/garage-api/internal/repository"
	"github.com/biskaken/garage-api/internal/validation"
)

// JobHandler implements repair-job management.
type JobHandler struct {
	Jobs *repository.JobRepo
}

func NewJobHandler(jobs *repository.JobRepo) *JobHandler {
	return &JobHandler{Jobs: jobs}
}

type createJobBody struct {
	CustomerID     string  `json:"customer_id" validate:"required,uuid4"`
	VehicleID      string  `json:"vehicle_id" validate:"required,uuid4"`
	AssignedUserID *uint64 `json:"assigned_user_id" validate:"omitempty,gt=0"`
	Description    string  `json:"description" validate:"required,min=3,max=2000"`
}

type updateJobBody struct {
	Description    string  `json:"description" validate:"required,min=3,max=2000"`
	AssignedUserID *uint64 `json:"assigned_user_id" validate:"omitempty,gt=0"`
}

type jobStatusBody struct {
	Status string `json:"status" validate:"required,oneof=IN_PROGRESS COMPLETED CANCELLED"`
}

type jobListQuery struct {
	Page   int    `query:"page" validate:"omitempty,gte=1"`
	Limit  int    `query:"limit" validate:"omitempty,gte=1,lte=100"`
	Status string `query:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED CANCELLED"`
}

func (q jobListQuery) norm() (int, int) {
	return pageQuery{Page: q.Page, Limit: q.Limit}.norm()
}

var (
	ListJobsSchema = validation.Schema{
		Query: func() interface{} { return new(jobListQuery) },
	}
	CreateJobSchema = validation.Schema{
		Body: func() interface{} { return new(createJobBody) },
	}
	UpdateJobSchema = validation.Schema{
		Params: func() interface{} { return new(idParam) },
		Body:   func() interface{} { return new(updateJobBody) },
	}
	JobStatusSchema = validation.Schema{
		Params: func() interface{} { return new(idParam) },
		Body:   func() interface{} { return new(jobStatusBody) },
	}
	JobIDSchema = validation.Schema{
		Params: func() interface{} { return new(idParam) },
	}
)

// List returns a page of jobs, optionally filtered by status.
func (h *JobHandler) List(c echo.Context) error {
	q := middleware.Input(c).Query.(*jobListQuery)
	page, limit := q.norm()

	ctx, cancel := reqCtx(c)
	defer cancel()

	jobs, total, err := h.Jobs.List(ctx, page, limit, q.Status)
	if err != nil {
		return err
	}
	return httpx.Page(c, jobs, httpx.NewPagination(page, limit, total))
}

// Create opens a job in PENDING state.
func (h *JobHandler) Create(c echo.Context) error {
	body := middleware.Input(c).Body.(*createJobBody)

	ctx, cancel := reqCtx(c)
	defer cancel()

	j := model.Job{
		CustomerID:     body.CustomerID,
		VehicleID:      body.VehicleID,
		AssignedUserID: body.AssignedUserID,
		Description:    body.Description,
	}
	if err := h.Jobs.Create(ctx, &j); err != nil {
		return err
	}
	created, err := h.Jobs.GetByID(ctx, j.ID)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusCreated, created)
}

// Get returns one job.
func (h *JobHandler) Get(c echo.Context) error {
	id := middleware.Input(c).Params.(*idParam).ID

	ctx, cancel := reqCtx(c)
	defer cancel()

	j, err := h.Jobs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, j)
}

// Update rewrites a job's description and assignment.
func (h *JobHandler) Update(c echo.Context) error {
	in := middleware.Input(c)
	id := in.Params.(*idParam).ID
	body := in.Body.(*updateJobBody)

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Jobs.Update(ctx, id, body.Description, body.AssignedUserID); err != nil {
		return err
	}
	j, err := h.Jobs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, j)
}

// UpdateStatus moves a job along PENDING → IN_PROGRESS → COMPLETED, with
// CANCELLED reachable from any non-terminal state.
func (h *JobHandler) UpdateStatus(c echo.Context) error {
	in := middleware.Input(c)
	id := in.Params.(*idParam).ID
	target := in.Body.(*jobStatusBody).Status

	ctx, cancel := reqCtx(c)
	defer cancel()

	j, err := h.Jobs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !model.CanTransitionJob(j.Status, target) {
		return apperr.New(apperr.Conflict, "Job is "+j.Status+" and cannot become "+target)
	}
	if err := h.Jobs.UpdateStatus(ctx, id, j.Status, target); err != nil {
		return err
	}
	updated, err := h.Jobs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return httpx.OK(c, http.StatusOK, updated)
}

// Delete removes a job permanently.
func (h *JobHandler) Delete(c echo.Context) error {
	id := middleware.Input(c).Params.(*idParam).ID

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Jobs.Delete(ctx, id); err != nil {
		return err
	}
	return httpx.Message(c, http.StatusOK, "Job deleted")
}
