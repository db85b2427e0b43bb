package auditlog

import "github.com/dalemusser/attendhub/internal/app/store/audit"

// listResponse is one page of the audit trail.
type listResponse struct {
	Events     []audit.Event `json:"events"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Total      int64         `json:"total"`
}

var categories = map[string]bool{
	audit.CategoryAuth:       true,
	audit.CategoryAdmin:      true,
	audit.CategoryAttendance: true,
}
