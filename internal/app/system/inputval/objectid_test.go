package inputval

import (
	"testing"

	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestObjectID(t *testing.T) {
	valid := primitive.NewObjectID()

	tests := []struct {
		in      string
		want    primitive.ObjectID
		wantErr bool
	}{
		{valid.Hex(), valid, false},
		{"  " + valid.Hex() + " ", valid, false},
		{"", primitive.NilObjectID, true},
		{"xyz", primitive.NilObjectID, true},
		{valid.Hex()[:23], primitive.NilObjectID, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ObjectID("student_id", tt.in)
			if tt.wantErr {
				if !apperr.IsValidation(err) {
					t.Errorf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ObjectID(%q) = %v, %v", tt.in, got, err)
			}
		})
	}
}

func TestOptionalObjectID(t *testing.T) {
	got, err := OptionalObjectID("subject_id", "")
	if err != nil || !got.IsZero() {
		t.Errorf("empty input: got %v, %v", got, err)
	}
	if _, err := OptionalObjectID("subject_id", "nope"); !apperr.IsValidation(err) {
		t.Errorf("malformed input: expected ValidationError, got %v", err)
	}
}
