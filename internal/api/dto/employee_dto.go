package dto

import "github.com/spec-kit/dispatch-service/internal/domain"

// EmployeeResponse is the wire shape of a directory engineer.
type EmployeeResponse struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Unit           string `json:"unit"`
	Email          string `json:"email"`
	Attendance     string `json:"attendance"`
	YearsOfService int    `json:"yearsOfService"`
}

// FromEngineer maps a directory engineer to its wire shape.
func FromEngineer(e *domain.Engineer) EmployeeResponse {
	return EmployeeResponse{
		ID:             e.ID,
		Name:           e.Name,
		Unit:           e.Unit,
		Email:          e.Email,
		Attendance:     e.Attendance,
		YearsOfService: e.YearsOfService,
	}
}

// FromEngineers maps a slice of engineers.
func FromEngineers(engineers []domain.Engineer) []EmployeeResponse {
	out := make([]EmployeeResponse, 0, len(engineers))
	for i := range engineers {
		out = append(out, FromEngineer(&engineers[i]))
	}
	return out
}
