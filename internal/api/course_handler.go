package api

import (
	"net/http"

	"github.com/phrazzld/devcamper-api/internal/api/shared"
	"github.com/phrazzld/devcamper-api/internal/domain"
	"github.com/phrazzld/devcamper-api/internal/service"
)

// CourseHandler handles the /courses routes and the courses nested under a bootcamp.
type CourseHandler struct {
	courseService service.CourseService
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(courseService service.CourseService) *CourseHandler {
	return &CourseHandler{courseService: courseService}
}

type bootcampCoursesResponse struct {
	Success bool             `json:"success"`
	Count   int              `json:"count"`
	Data    []*domain.Course `json:"data"`
}

// ListCourses handles GET /courses.
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	page, err := h.courseService.List(r.Context(), shared.QueryParams(r))
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	respondWithPage(w, r, page)
}

// ListBootcampCourses handles GET /bootcamps/{bootcampId}/courses. It returns
// every course of the bootcamp without paging.
func (h *CourseHandler) ListBootcampCourses(w http.ResponseWriter, r *http.Request) {
	bootcampID, ok := pathUUID(w, r, "bootcampId", "Bootcamp")
	if !ok {
		return
	}

	courses, err := h.courseService.ListForBootcamp(r.Context(), bootcampID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, bootcampCoursesResponse{
		Success: true,
		Count:   len(courses),
		Data:    courses,
	})
}

// GetCourse handles GET /courses/{id}.
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "Course")
	if !ok {
		return
	}

	course, err := h.courseService.Get(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, course)
}

// AddCourse handles POST /bootcamps/{bootcampId}/courses.
func (h *CourseHandler) AddCourse(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	bootcampID, ok := pathUUID(w, r, "bootcampId", "Bootcamp")
	if !ok {
		return
	}
	var req CourseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	course, err := h.courseService.Add(r.Context(), actor, bootcampID, req.ToCourse())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithData(w, r, http.StatusCreated, course)
}

// UpdateCourse handles PUT /courses/{id}.
func (h *CourseHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "Course")
	if !ok {
		return
	}
	var req CourseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	course, err := h.courseService.Update(r.Context(), actor, id, req.ToChanges())
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, course)
}

// DeleteCourse handles DELETE /courses/{id}.
func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "id", "Course")
	if !ok {
		return
	}

	if err := h.courseService.Delete(r.Context(), actor, id); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, struct{}{})
}
