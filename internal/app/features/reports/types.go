package reports

import (
	"github.com/dalemusser/attendhub/internal/app/store/queries/attendancequeries"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type percentageResponse struct {
	StudentID primitive.ObjectID `json:"student_id"`
	SubjectID string             `json:"subject_id,omitempty"`
	From      string             `json:"from,omitempty"`
	To        string             `json:"to,omitempty"`
	attendancequeries.Counts
}

type breakdownResponse struct {
	StudentID primitive.ObjectID             `json:"student_id"`
	Subjects  []attendancequeries.SubjectRow `json:"subjects"`
}

type cohortResponse struct {
	Students []attendancequeries.StudentRow `json:"students"`
}

type defaultersResponse struct {
	Threshold  float64                        `json:"threshold"`
	Count      int                            `json:"count"`
	Defaulters []attendancequeries.StudentRow `json:"defaulters"`
}

type historyResponse struct {
	Snapshots []models.DefaulterSnapshot `json:"snapshots"`
}
