package db_test

import (
	"testing"
	"time"

	"github.com/smckee/nagmail/pkg/db"
	"github.com/smckee/nagmail/pkg/internal/testutil"
	"github.com/smckee/nagmail/pkg/logger"
)

func seedUser(t *testing.T, email string) *db.User {
	t.Helper()
	user := db.User{Email: email, LastLoginEmail: time.Now().UTC()}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return &user
}

func seedTask(t *testing.T, userID uint, name string) *db.Task {
	t.Helper()
	task := db.Task{UserID: userID, Name: name, IntervalDays: 7, Due: db.Date(2025, 6, 2)}
	if err := db.DB.Create(&task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	return &task
}

func TestDeleteUserCascade(t *testing.T) {
	testutil.SetupTestDB(t)
	logger.SetLogLevel(logger.ERROR)

	user := seedUser(t, "bob@example.com")
	other := seedUser(t, "alice@example.com")
	task := seedTask(t, user.ID, "water plant")
	otherTask := seedTask(t, other.ID, "take out bins")

	done := db.TaskDone{TaskID: task.ID, Done: db.Date(2025, 6, 1)}
	if err := db.DB.Create(&done).Error; err != nil {
		t.Fatalf("failed to create completion: %v", err)
	}
	if _, err := db.CreateSession(user.ID, nil, time.Hour); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	if err := db.DeleteUserCascade(user.ID); err != nil {
		t.Fatalf("failed to delete user: %v", err)
	}

	if _, err := db.GetUserByID(user.ID); !db.IsNotFound(err) {
		t.Fatalf("expected user gone, got %v", err)
	}
	var tasks, dones, sessions int64
	db.DB.Model(&db.Task{}).Count(&tasks)
	db.DB.Model(&db.TaskDone{}).Count(&dones)
	db.DB.Model(&db.Session{}).Count(&sessions)
	if tasks != 1 || dones != 0 || sessions != 0 {
		t.Fatalf("unexpected leftovers after cascade: tasks=%d dones=%d sessions=%d", tasks, dones, sessions)
	}

	// The other user's data is untouched.
	var remaining db.Task
	if err := db.DB.First(&remaining, otherTask.ID).Error; err != nil {
		t.Fatalf("expected unrelated task to survive: %v", err)
	}
}

func TestDeleteTaskCascadeChecksOwnership(t *testing.T) {
	testutil.SetupTestDB(t)
	logger.SetLogLevel(logger.ERROR)

	owner := seedUser(t, "bob@example.com")
	intruder := seedUser(t, "mallory@example.com")
	task := seedTask(t, owner.ID, "water plant")
	done := db.TaskDone{TaskID: task.ID, Done: db.Date(2025, 6, 1)}
	if err := db.DB.Create(&done).Error; err != nil {
		t.Fatalf("failed to create completion: %v", err)
	}

	if err := db.DeleteTaskCascade(task.ID, intruder.ID); !db.IsNotFound(err) {
		t.Fatalf("expected not-found for foreign task, got %v", err)
	}
	var still db.Task
	if err := db.DB.First(&still, task.ID).Error; err != nil {
		t.Fatalf("foreign delete must not remove the task: %v", err)
	}

	if err := db.DeleteTaskCascade(task.ID, owner.ID); err != nil {
		t.Fatalf("failed to delete own task: %v", err)
	}
	var dones int64
	db.DB.Model(&db.TaskDone{}).Count(&dones)
	if dones != 0 {
		t.Fatalf("expected completion history removed with the task")
	}
}

func TestTasksWithOwners(t *testing.T) {
	testutil.SetupTestDB(t)
	logger.SetLogLevel(logger.ERROR)

	user := seedUser(t, "bob@example.com")
	seedTask(t, user.ID, "water plant")
	seedTask(t, user.ID, "descale kettle")

	tasks, err := db.TasksWithOwners()
	if err != nil {
		t.Fatalf("failed to load tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected two tasks, got %d", len(tasks))
	}
	for _, task := range tasks {
		if task.User.Email != "bob@example.com" {
			t.Fatalf("expected owner preloaded, got %+v", task.User)
		}
	}
}

func TestSessionLifecycle(t *testing.T) {
	testutil.SetupTestDB(t)
	logger.SetLogLevel(logger.ERROR)

	user := seedUser(t, "bob@example.com")
	session, err := db.CreateSession(user.ID, map[string]any{"language": "fr"}, time.Hour)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if len(session.Token) != 64 {
		t.Fatalf("expected a 64-char hex token, got %d chars", len(session.Token))
	}

	now := time.Now().UTC()
	loaded, err := db.GetSession(session.Token, now)
	if err != nil {
		t.Fatalf("failed to load session: %v", err)
	}
	if lang, _ := loaded.Data["language"].(string); lang != "fr" {
		t.Fatalf("expected session data to round-trip, got %v", loaded.Data)
	}

	if _, err := db.GetSession(session.Token, now.Add(2*time.Hour)); !db.IsNotFound(err) {
		t.Fatalf("expected expired session to be invisible, got %v", err)
	}

	deleted, err := db.CleanupExpiredSessions(now.Add(2 * time.Hour))
	if err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected one session swept, got %d", deleted)
	}
}

func TestDateHelpers(t *testing.T) {
	instant := time.Date(2025, 6, 2, 17, 45, 12, 999, time.UTC)
	if got := db.ToDate(instant); !got.Equal(db.Date(2025, 6, 2)) {
		t.Fatalf("expected midnight UTC, got %v", got)
	}
}
