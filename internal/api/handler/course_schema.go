package handler

import "github.com/learnhub/course-portal/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

// createCourseRequest is accepted both as a form post and as JSON.
type createCourseRequest struct {
	Title       string `json:"title"       form:"title"       validate:"required"`
	Description string `json:"description" form:"description"`
}

type updateCourseRequest struct {
	Title string `json:"title" form:"title" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password"`
	// Role is only read in assertion mode.
	Role string `json:"role" form:"role"`
}

type createCourseResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type mutationResponse struct {
	Message  string `json:"message"`
	Affected int64  `json:"affected"`
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  string      `json:"user"`
	Role  domain.Role `json:"role"`
}

// dashboardPage is the data handed to dashboard.html.
type dashboardPage struct {
	User     string
	Role     domain.Role
	Courses  []domain.Course
	Educator bool
}

// loginPage is the data handed to login.html.
type loginPage struct {
	Error    string
	AskRole  bool
	Username string
}
