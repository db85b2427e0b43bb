package dashboard

import (
	"context"
	"net/http"

	"github.com/dalemusser/attendhub/internal/app/system/apperr"
	"github.com/dalemusser/attendhub/internal/app/system/authz"
	"github.com/dalemusser/attendhub/internal/app/system/dates"
	"github.com/dalemusser/attendhub/internal/app/system/timeouts"
	"github.com/dalemusser/attendhub/internal/domain/models"
	"github.com/dalemusser/waffle/httputil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type todaySlot struct {
	models.TimetableSlot
	SubjectCode string `json:"subject_code"`
	SubjectName string `json:"subject_name"`
}

type teacherData struct {
	Role      string      `json:"role"`
	TeacherID string      `json:"teacher_id"`
	Name      string      `json:"name"`
	Day       string      `json:"day"`
	Date      string      `json:"date"`
	Slots     []todaySlot `json:"slots"`
}

// ServeTeacher lists the teacher's timetable for today, ordered by period.
func (h *Handler) ServeTeacher(w http.ResponseWriter, r *http.Request, actor authz.Actor) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	tc, err := h.Roster.TeacherByUserID(ctx, actor.ID)
	if apperr.IsNotFound(err) {
		err = apperr.Forbidden("no teacher profile is linked to this account")
	}
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	now := h.Now().In(h.Location)
	day := dates.Weekday(now, h.Location)
	slots, err := h.Roster.SlotsForTeacherOnDay(ctx, tc.ID, day)
	if err != nil {
		h.ErrLog.Write(w, r, err)
		return
	}

	names := make(map[primitive.ObjectID]*models.Subject, len(slots))
	out := make([]todaySlot, 0, len(slots))
	for _, s := range slots {
		sub, ok := names[s.SubjectID]
		if !ok {
			sub, err = h.Roster.GetSubject(ctx, s.SubjectID)
			if err != nil && !apperr.IsNotFound(err) {
				h.ErrLog.Write(w, r, err)
				return
			}
			names[s.SubjectID] = sub
		}
		ts := todaySlot{TimetableSlot: s}
		if sub != nil {
			ts.SubjectCode = sub.Code
			ts.SubjectName = sub.Name
		}
		out = append(out, ts)
	}

	httputil.WriteJSON(w, http.StatusOK, teacherData{
		Role:      models.RoleTeacher,
		TeacherID: tc.ID.Hex(),
		Name:      tc.Name,
		Day:       day,
		Date:      now.Format(models.DateLayout),
		Slots:     out,
	})
}
