package api

import (
	"log/slog"
	"net/http"
)

// courseDirectory is the slice of the vector store the analytics
// endpoint reads.
type courseDirectory interface {
	CourseCount() int
	Titles() []string
}

// CoursesResponse is the body of GET /api/courses.
type CoursesResponse struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

type coursesHandler struct {
	directory courseDirectory
	logger    *slog.Logger
}

func (h *coursesHandler) courses(w http.ResponseWriter, _ *http.Request) {
	titles := h.directory.Titles()
	if titles == nil {
		titles = []string{}
	}
	writeJSON(w, http.StatusOK, CoursesResponse{
		TotalCourses: h.directory.CourseCount(),
		CourseTitles: titles,
	})
}
