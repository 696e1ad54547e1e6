package db

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/smckee/nagmail/pkg/config"
	"github.com/smckee/nagmail/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Export DB variable
var DB *gorm.DB

func InitDB(cfg config.DatabaseConfig) error {
	gormLogger, gormErr := newGormLogger(config.AppConfig.Logging.GormLevel)
	if gormErr != nil {
		logger.Error("invalid gorm log level", "value", config.AppConfig.Logging.GormLevel, "error", gormErr)
	}

	dialector, err := openDialector(cfg)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return err
	}
	if err := DB.AutoMigrate(&User{}, &Task{}, &TaskDone{}, &Session{}); err != nil {
		logger.Error("failed to auto-migrate database", "error", err)
		return err
	}
	return nil
}

func openDialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite":
		path := cfg.Path
		if path == "" {
			path = "nagmail.db"
		}
		return sqlite.Open(path), nil
	case "postgres", "":
		dsn := "host=" + cfg.Host +
			" user=" + cfg.User +
			" password=" + cfg.Password +
			" dbname=" + cfg.DBName +
			" port=" + strconv.Itoa(cfg.Port) +
			" sslmode=" + cfg.SSLMode
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func GetUserByID(id uint) (*User, error) {
	var user User
	if err := DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByEmail(email string) (*User, error) {
	var user User
	if err := DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// DeleteUserCascade removes a user together with their tasks, task
// history and sessions. Cascades are done explicitly so behavior does
// not depend on the sqlite foreign_keys pragma.
func DeleteUserCascade(userID uint) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint
		if err := tx.Model(&Task{}).Where("user_id = ?", userID).Pluck("id", &taskIDs).Error; err != nil {
			return err
		}
		if len(taskIDs) > 0 {
			if err := tx.Where("task_id IN ?", taskIDs).Delete(&TaskDone{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", userID).Delete(&Task{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", userID).Delete(&Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(&User{}, userID).Error
	})
}

// DeleteTaskCascade removes a task and its completion history after
// checking ownership.
func DeleteTaskCascade(taskID, userID uint) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var task Task
		if err := tx.Where("id = ? AND user_id = ?", taskID, userID).First(&task).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&TaskDone{}).Error; err != nil {
			return err
		}
		return tx.Delete(&task).Error
	})
}

// TasksWithOwners loads every task joined with its owning user, for
// the reminder job.
func TasksWithOwners() ([]Task, error) {
	var tasks []Task
	if err := DB.Preload("User").Order("id").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Date truncates an instant to a calendar date stored at midnight UTC.
// Task.Due, Task.Reminded and TaskDone.Done all hold values produced
// here so date comparisons stay exact.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func ToDate(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}
