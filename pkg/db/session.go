package db

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/smckee/nagmail/pkg/logger"
	"gorm.io/datatypes"
)

const SessionCleanupInterval = time.Hour

func CreateSession(userID uint, data map[string]any, ttl time.Duration) (*Session, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	session := Session{
		Token:     hex.EncodeToString(buf),
		UserID:    userID,
		Data:      datatypes.JSONMap(data),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := DB.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func GetSession(token string, now time.Time) (*Session, error) {
	var session Session
	if err := DB.Where("token = ? AND expires_at > ?", token, now).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func SaveSession(session *Session) error {
	return DB.Save(session).Error
}

func DeleteSession(token string) error {
	return DB.Where("token = ?", token).Delete(&Session{}).Error
}

func CleanupExpiredSessions(now time.Time) (int64, error) {
	if DB == nil {
		return 0, nil
	}
	res := DB.Where("expires_at <= ?", now).Delete(&Session{})
	return res.RowsAffected, res.Error
}

func StartSessionCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = SessionCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := CleanupExpiredSessions(time.Now().UTC()); err != nil {
				logger.Error("failed to cleanup expired sessions", "error", err)
			}
		}
	}
}
