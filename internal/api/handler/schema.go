package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error" example:"Employee not found"`
}

type messageResponse struct {
	Message string `json:"message" example:"Deleted"`
}

// --- Auth ---

type registerRequest struct {
	Username   string `json:"username"   validate:"required"      example:"alice"`
	Password   string `json:"password"   validate:"required"      example:"pw1"`
	Role       string `json:"role"                                example:"user"`
	Name       string `json:"name"                                example:"Alice"`
	Email      string `json:"email"                               example:"a@x.io"`
	Department string `json:"department"                          example:"Eng"`
}

type registerResponse struct {
	Message string `json:"message" example:"User and profile created"`
	UserID  string `json:"userId"  example:"65f0c0ffee0000000000abcd"`
}

type loginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"pw1"`
}

type loginResponse struct {
	Token      string  `json:"token"`
	Role       string  `json:"role"       example:"user"`
	UserID     string  `json:"userId"     example:"65f0c0ffee0000000000abcd"`
	EmployeeID *string `json:"employeeId" example:"65f0c0ffee0000000000beef"`
}

// --- Employees ---

type createEmployeeRequest struct {
	Name       string `json:"name"       validate:"required" example:"Alice"`
	Email      string `json:"email"      validate:"required" example:"a@x.io"`
	Department string `json:"department" validate:"required" example:"Eng"`
	UserID     string `json:"userId"                         example:"65f0c0ffee0000000000abcd"`
}

// updateEmployeeRequest is a partial update; omitted fields are unchanged.
type updateEmployeeRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Department *string `json:"department"`
	UserID     *string `json:"userId"`
}

type ownerResponse struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type employeeResponse struct {
	ID         string         `json:"_id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Department string         `json:"department"`
	UserID     *string        `json:"userId"`
	User       *ownerResponse `json:"user,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

type listEmployeesResponse struct {
	Employees   []employeeResponse `json:"employees"`
	TotalPages  int                `json:"totalPages"  example:"1"`
	CurrentPage int                `json:"currentPage" example:"1"`
}
