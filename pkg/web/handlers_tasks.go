package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/smckee/nagmail/pkg/auth"
	"github.com/smckee/nagmail/pkg/db"
	"github.com/smckee/nagmail/pkg/logger"
	"github.com/smckee/nagmail/pkg/schedule"
)

type taskRow struct {
	ID           uint
	Name         string
	IntervalDays int
	DueLabel     string
	IsDue        bool
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromRequest(r)
	now := time.Now().UTC()

	var tasks []db.Task
	if err := db.DB.Where("user_id = ?", identity.User.ID).Order("due, id").Find(&tasks).Error; err != nil {
		logger.Error("failed to load tasks", "user_id", identity.User.ID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rows := make([]taskRow, 0, len(tasks))
	for i := range tasks {
		rows = append(rows, taskRow{
			ID:           tasks[i].ID,
			Name:         tasks[i].Name,
			IntervalDays: tasks[i].IntervalDays,
			DueLabel:     tasks[i].Due.Format(schedule.DateLayout),
			IsDue:        schedule.IsDue(&tasks[i], identity.Timezone, now),
		})
	}

	render(w, "profile", map[string]any{
		"Title": "Your tasks",
		"User":  identity.User,
		"Tasks": rows,
	})
}

// ownTask loads a task and checks it belongs to the requester. A
// missing or foreign task renders as 404 either way.
func ownTask(w http.ResponseWriter, r *http.Request) (*db.Task, bool) {
	identity := auth.FromRequest(r)
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.NotFound(w, r)
		return nil, false
	}
	var task db.Task
	if err := db.DB.Where("id = ? AND user_id = ?", id, identity.User.ID).First(&task).Error; err != nil {
		http.NotFound(w, r)
		return nil, false
	}
	return &task, true
}

func validationMessages(errs []schedule.ValidationError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Message
	}
	return out
}

func (s *Server) handleTaskForm(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromRequest(r)
	today := localToday(identity, time.Now().UTC())

	if r.PathValue("id") == "new" {
		render(w, "task_form", map[string]any{
			"Title":       "New task",
			"User":        identity.User,
			"TaskID":      "new",
			"Name":        "",
			"Description": "",
			"Kind":        db.TaskKindNormal,
			"Interval":    "7",
			"Due":         today.AddDate(0, 0, 1).Format(schedule.DateLayout),
			"Errors":      map[string]string{},
		})
		return
	}

	task, ok := ownTask(w, r)
	if !ok {
		return
	}
	render(w, "task_form", map[string]any{
		"Title":       "Edit task",
		"User":        identity.User,
		"TaskID":      strconv.FormatUint(uint64(task.ID), 10),
		"Name":        task.Name,
		"Description": task.Description,
		"Kind":        task.Kind,
		"Interval":    strconv.Itoa(task.IntervalDays),
		"Due":         task.Due.Format(schedule.DateLayout),
		"Errors":      map[string]string{},
	})
}

func (s *Server) handleTaskSave(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromRequest(r)
	today := localToday(identity, time.Now().UTC())

	input, errs := schedule.ParseTaskForm(
		r.FormValue("name"),
		r.FormValue("description"),
		r.FormValue("kind"),
		r.FormValue("interval"),
		r.FormValue("due"),
		today,
	)
	if len(errs) > 0 {
		render(w, "task_form", map[string]any{
			"Title":       "Edit task",
			"User":        identity.User,
			"TaskID":      r.PathValue("id"),
			"Name":        input.Name,
			"Description": input.Description,
			"Kind":        input.Kind,
			"Interval":    r.FormValue("interval"),
			"Due":         r.FormValue("due"),
			"Errors":      validationMessages(errs),
		})
		return
	}

	if r.PathValue("id") == "new" {
		task := db.Task{
			UserID:       identity.User.ID,
			Kind:         input.Kind,
			Name:         input.Name,
			Description:  input.Description,
			IntervalDays: input.IntervalDays,
			Due:          input.Due,
		}
		if err := db.DB.Create(&task).Error; err != nil {
			logger.Error("failed to create task", "user_id", identity.User.ID, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	} else {
		task, ok := ownTask(w, r)
		if !ok {
			return
		}
		task.Kind = input.Kind
		task.Name = input.Name
		task.Description = input.Description
		task.IntervalDays = input.IntervalDays
		task.Due = input.Due
		if err := db.DB.Save(task).Error; err != nil {
			logger.Error("failed to update task", "task_id", task.ID, "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	identity := auth.FromRequest(r)
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := db.DeleteTaskCascade(uint(id), identity.User.ID); err != nil {
		if db.IsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		logger.Error("failed to delete task", "task_id", id, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

type historyRow struct {
	DoneLabel string
}

func (s *Server) handleAckForm(w http.ResponseWriter, r *http.Request) {
	task, ok := ownTask(w, r)
	if !ok {
		return
	}
	identity := auth.FromRequest(r)
	today := localToday(identity, time.Now().UTC())

	s.renderAck(w, identity, task,
		today.Format(schedule.DateLayout),
		schedule.DefaultNextDue(today, task.IntervalDays).Format(schedule.DateLayout),
		map[string]string{})
}

func (s *Server) handleAck(w http.ResponseWriter, r *http.Request) {
	task, ok := ownTask(w, r)
	if !ok {
		return
	}
	identity := auth.FromRequest(r)
	today := localToday(identity, time.Now().UTC())

	input, errs := schedule.ParseAck(r.FormValue("done"), r.FormValue("next"), task.IntervalDays, today)
	if len(errs) > 0 {
		s.renderAck(w, identity, task,
			input.Done.Format(schedule.DateLayout),
			input.NextDue.Format(schedule.DateLayout),
			validationMessages(errs))
		return
	}

	if err := schedule.Acknowledge(task, input.Done, input.NextDue); err != nil {
		logger.Error("failed to acknowledge task", "task_id", task.ID, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (s *Server) renderAck(w http.ResponseWriter, identity *auth.Identity, task *db.Task, done, next string, errs map[string]string) {
	var history []db.TaskDone
	if err := db.DB.Where("task_id = ?", task.ID).Order("done DESC").Limit(20).Find(&history).Error; err != nil {
		logger.Error("failed to load task history", "task_id", task.ID, "error", err)
	}
	rows := make([]historyRow, 0, len(history))
	for _, h := range history {
		rows = append(rows, historyRow{DoneLabel: h.Done.Format(schedule.DateLayout)})
	}

	render(w, "ack", map[string]any{
		"Title":    "Mark as done",
		"User":     identity.User,
		"TaskID":   strconv.FormatUint(uint64(task.ID), 10),
		"TaskName": task.Name,
		"Done":     done,
		"Next":     next,
		"Errors":   errs,
		"History":  rows,
	})
}
