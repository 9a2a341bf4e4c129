package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/learnhub/course-portal/internal/core/domain"
	"github.com/learnhub/course-portal/internal/core/ports"
)

// CourseHandler serves the JSON course API.
type CourseHandler struct {
	service ports.CourseService
	log     zerolog.Logger
}

func NewCourseHandler(service ports.CourseService, log zerolog.Logger) *CourseHandler {
	return &CourseHandler{service: service, log: log}
}

// List handles GET /courses.
//
// @Summary      List courses
// @Tags         courses
// @Produce      json
// @Success      200  {array}   domain.Course
// @Failure      500  {object}  errorResponse
// @Router       /courses [get]
func (h *CourseHandler) List(c echo.Context) error {
	courses, err := h.service.List(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(courses))
}

// Create handles POST /courses. The educator is the caller's identity.
//
// @Summary      Create a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string               false  "Replays within 24h return the original id"
// @Param        body             body      createCourseRequest  true   "Course to create"
// @Success      201              {object}  createCourseResponse
// @Success      200              {object}  createCourseResponse  "Idempotent replay"
// @Failure      400              {object}  errorResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /courses [post]
func (h *CourseHandler) Create(c echo.Context) error {
	who, err := actor(c)
	if err != nil {
		return err
	}

	var req createCourseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err)
	}

	result, err := h.service.Create(c.Request().Context(), ports.CreateCourseInput{
		Title:          req.Title,
		Description:    req.Description,
		Educator:       who.User,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		return h.fail(c, err)
	}

	status := http.StatusCreated
	if result.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, createCourseResponse{Message: "Course created", ID: result.ID})
}

// Update handles PUT /courses/:id.
//
// @Summary      Rename a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Course id"
// @Param        body  body      updateCourseRequest  true  "New title"
// @Success      200   {object}  mutationResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /courses/{id} [put]
func (h *CourseHandler) Update(c echo.Context) error {
	id, err := courseID(c)
	if err != nil {
		return err
	}
	who, err := actor(c)
	if err != nil {
		return err
	}

	var req updateCourseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return h.fail(c, err)
	}

	n, err := h.service.Update(c.Request().Context(), ports.UpdateCourseInput{ID: id, Title: req.Title, Actor: who.User})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, mutationResponse{Message: "Course updated", Affected: n})
}

// Delete handles DELETE /courses/:id.
//
// @Summary      Delete a course
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Course id"
// @Success      200  {object}  mutationResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /courses/{id} [delete]
func (h *CourseHandler) Delete(c echo.Context) error {
	id, err := courseID(c)
	if err != nil {
		return err
	}
	who, err := actor(c)
	if err != nil {
		return err
	}

	n, err := h.service.Delete(c.Request().Context(), ports.DeleteCourseInput{ID: id, Actor: who.User})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, mutationResponse{Message: "Course deleted", Affected: n})
}

// Search handles GET /search?q= (keyword= is accepted as an alias).
//
// @Summary      Search courses by title
// @Tags         courses
// @Produce      json
// @Param        q        query     string  false  "Case-insensitive title fragment"
// @Param        keyword  query     string  false  "Alias of q"
// @Success      200      {array}   domain.Course
// @Failure      500      {object}  errorResponse
// @Router       /search [get]
func (h *CourseHandler) Search(c echo.Context) error {
	keyword := c.QueryParam("q")
	if keyword == "" {
		keyword = c.QueryParam("keyword")
	}

	courses, err := h.service.Search(c.Request().Context(), keyword)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, nonNil(courses))
}

// fail renders err as the JSON error envelope and logs causes the client
// does not get to see.
func (h *CourseHandler) fail(c echo.Context, err error) error {
	code, msg, known := ErrorStatus(err)
	if !known || code >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("method", c.Request().Method).Str("path", c.Path()).Msg("course request failed")
	}
	return c.JSON(code, errorResponse{Error: msg})
}

func nonNil(courses []domain.Course) []domain.Course {
	if courses == nil {
		return []domain.Course{}
	}
	return courses
}
