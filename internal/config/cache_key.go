package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's login session.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// AttemptClockKey returns the cache key holding a student's attempt clock:
// the entry timestamp and granted budget, written together in one value so a
// reader never sees one without the other.
func (r *CacheKeyStruct) AttemptClockKey(examID string, userID int) string {
	return fmt.Sprintf("attempt:%s:%d:clock", examID, userID)
}

// AttemptAnswersKey returns the cache key for a student's autosaved answers.
func (r *CacheKeyStruct) AttemptAnswersKey(examID string, userID int) string {
	return fmt.Sprintf("attempt:%s:%d:answers", examID, userID)
}

// ActiveAttemptsKey returns the Redis set holding user IDs with an open
// attempt on the exam. Swept by the deadline worker.
func (r *CacheKeyStruct) ActiveAttemptsKey(examID string) string {
	return fmt.Sprintf("exam:%s:active_attempts", examID)
}

// OpenExamsKey returns the Redis set of exam IDs with at least one open
// attempt.
func (r *CacheKeyStruct) OpenExamsKey() string {
	return "exams:open"
}

// ExamPaperKey returns the cache key for an exam's student-facing paper.
func (r *CacheKeyStruct) ExamPaperKey(examID string) string {
	return fmt.Sprintf("exam:%s:paper", examID)
}

// ExamAnswerKeyKey returns the cache key for an exam's answer key hash.
func (r *CacheKeyStruct) ExamAnswerKeyKey(examID string) string {
	return fmt.Sprintf("exam:%s:key", examID)
}

// ExamWindowKey returns the cache key for an exam's window and time limit.
func (r *CacheKeyStruct) ExamWindowKey(examID string) string {
	return fmt.Sprintf("exam:%s:window", examID)
}

// ExamStatsKey returns the cache key for an exam's aggregated results.
func (r *CacheKeyStruct) ExamStatsKey(examID string) string {
	return fmt.Sprintf("exam:%s:stats", examID)
}

var CacheKey = NewCacheKeyStruct()
