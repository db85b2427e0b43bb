package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/attendhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents user data for testing HTTP handlers.
type TestUser struct {
	ID      string
	Name    string
	LoginID string
	Role    string
}

// AdminUser returns a TestUser with admin role.
func AdminUser() TestUser {
	return TestUser{ID: primitive.NewObjectID().Hex(), Name: "Test Admin", LoginID: "admin", Role: "admin"}
}

// TeacherUser returns a TestUser with teacher role bound to userID.
func TeacherUser(userID primitive.ObjectID) TestUser {
	return TestUser{ID: userID.Hex(), Name: "Test Teacher", LoginID: "teacher", Role: "teacher"}
}

// StudentUser returns a TestUser with student role bound to userID.
func StudentUser(userID primitive.ObjectID) TestUser {
	return TestUser{ID: userID.Hex(), Name: "Test Student", LoginID: "student", Role: "student"}
}

// WithUser adds a user to the request context for testing authenticated handlers.
// This bypasses the session middleware and injects the user directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	return auth.WithTestUser(r, &auth.SessionUser{
		ID:      user.ID,
		Name:    user.Name,
		LoginID: user.LoginID,
		Role:    user.Role,
	})
}

// JSONRequest builds a request whose body is body encoded as JSON.
// A nil body sends no payload.
func JSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// DecodeJSON decodes the recorder body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response body: %v (body=%q)", err, rec.Body.String())
	}
}

// AssertStatus checks the response status code.
func AssertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Errorf("status code: got %d, want %d (body=%q)", rec.Code, want, rec.Body.String())
	}
}
