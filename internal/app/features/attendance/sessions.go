package attendance

import (
	"context"
	"net/http"

	attendancestore "github.com/dalemusser/attendhub/internal/app/store/attendance"
	"github.com/dalemusser/attendhub/internal/app/system/inputval"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/waffle/httputil"
)

type entryRequest struct {
	StudentID string                  `json:"student_id"`
	Status    models.AttendanceStatus `json:"status"`
	Remarks   string                  `json:"remarks,omitempty"`
}

type sessionRequest struct {
	SubjectID   string             `json:"subject_id"`
	TeacherID   string             `json:"teacher_id,omitempty"`
	Date        string             `json:"date"`
	SessionType models.SessionType `json:"session_type"`
	Period      int                `json:"period"`
	Batch       string             `json:"batch,omitempty"`
	Division    string             `json:"division,omitempty"`
	Entries     []entryRequest     `json:"entries"`
}

type keyRequest struct {
	SubjectID   string             `json:"subject_id"`
	Date        string             `json:"date"`
	SessionType models.SessionType `json:"session_type"`
	Period      int                `json:"period"`
}

func (k keyRequest) toKey() (models.SessionKey, error) {
	id, err := inputval.ObjectID("subject_id", k.SubjectID)
	if err != nil {
		return models.SessionKey{}, err
	}
	return models.SessionKey{SubjectID: id, Date: k.Date, SessionType: k.SessionType, Period: k.Period}, nil
}

// HandleRecordSession handles POST /attendance/sessions. The body carries
// the whole session; the stored records are replaced by its entries.
func (h *Handler) HandleRecordSession(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	var req sessionRequest
	if err := httputil.BindJSON(r, &req); err != nil {
		h.ErrLog.BadRequest(w, err)
		return
	}
	subjectID, err := inputval.ObjectID("subject_id", req.SubjectID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	requested, err := inputval.OptionalObjectID("teacher_id", req.TeacherID)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	entries := make([]attendancestore.Entry, len(req.Entries))
	for i, e := range req.Entries {
		id, err := inputval.ObjectID("entries.student_id", e.StudentID)
		if err != nil {
			h.ErrLog.Write(w, r, err)
			return
		}
		entries[i] = attendancestore.Entry{StudentID: id, Status: e.Status, Remarks: e.Remarks}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	teacherID, err := h.resolveTeacherID(ctx, actor, requested)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}
	in := attendancestore.Session{
		SubjectID:   subjectID,
		TeacherID:   teacherID,
		Date:        req.Date,
		SessionType: req.SessionType,
		Period:      req.Period,
		Batch:       req.Batch,
		Division:    req.Division,
		Entries:     entries,
	}
	n, err := h.Ledger.RecordSession(ctx, actor, in)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	h.AuditLog.SessionRecorded(ctx, r, actor.ID, in.Key(), n)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"written": n})
}

// HandleLock handles POST /attendance/sessions/lock.
func (h *Handler) HandleLock(w http.ResponseWriter, r *http.Request) {
	h.setLock(w, r, true)
}

// HandleUnlock handles POST /attendance/sessions/unlock.
func (h *Handler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	h.setLock(w, r, false)
}

func (h *Handler) setLock(w http.ResponseWriter, r *http.Request, lock bool) {
	actor, ok := h.ErrLog.Actor(w, r)
	if !ok {
		return
	}
	var req keyRequest
	if err := httputil.BindJSON(r, &req); err != nil {
		h.ErrLog.BadRequest(w, err)
		return
	}
	key, err := req.toKey()
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var n int64
	if lock {
		n, err = h.Ledger.LockSession(ctx, actor, key)
	} else {
		n, err = h.Ledger.UnlockSession(ctx, actor, key)
	}
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	if lock {
		h.AuditLog.SessionLocked(ctx, r, actor.ID, key, n)
	} else {
		h.AuditLog.SessionUnlocked(ctx, r, actor.ID, key, n)
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"locked": lock, "records": n})
}
