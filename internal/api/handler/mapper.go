package handler

import (
	"github.com/employee-portal/employee-api/internal/core/domain"
	"github.com/employee-portal/employee-api/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Username:   req.Username,
		Password:   req.Password,
		Role:       req.Role,
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
	}
}

func toCreateInput(req createEmployeeRequest) ports.CreateEmployeeInput {
	return ports.CreateEmployeeInput{
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		OwnerID:    req.UserID,
	}
}

func toPatch(req updateEmployeeRequest) domain.EmployeePatch {
	return domain.EmployeePatch{
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		OwnerID:    req.UserID,
	}
}

// --- Service output → Response ---

func toEmployeeResponse(v ports.EmployeeView) employeeResponse {
	resp := employeeResponse{
		ID:         v.ID,
		Name:       v.Name,
		Email:      v.Email,
		Department: v.Department,
		UserID:     optional(v.OwnerID),
		CreatedAt:  v.CreatedAt,
	}
	if v.Owner != nil {
		resp.User = &ownerResponse{ID: v.Owner.ID, Username: v.Owner.Username, Role: v.Owner.Role}
	}
	return resp
}

func toListResponse(r *ports.ListEmployeesResult) listEmployeesResponse {
	items := make([]employeeResponse, 0, len(r.Items))
	for _, v := range r.Items {
		items = append(items, toEmployeeResponse(v))
	}
	return listEmployeesResponse{
		Employees:   items,
		TotalPages:  r.TotalPages,
		CurrentPage: r.CurrentPage,
	}
}

func toLoginResponse(r *ports.LoginResult) loginResponse {
	return loginResponse{
		Token:      r.Token,
		Role:       r.Role,
		UserID:     r.UserID,
		EmployeeID: optional(r.EmployeeID),
	}
}

// optional maps "" to a JSON null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
