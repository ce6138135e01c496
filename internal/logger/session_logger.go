// Package logger provides audit logging for recording sessions.
package logger

import (
	"github.com/sirupsen/logrus"
)

// SessionLogger provides a dedicated audit trail of what the operator
// recorded: every saved record, every duplicate skip and every validation
// rejection, so a session can be reconstructed after the fact.
type SessionLogger struct {
	*logrus.Entry
}

// NewSessionLogger creates a new session audit logger.
func NewSessionLogger(baseLogger *logrus.Logger) *SessionLogger {
	return &SessionLogger{
		Entry: baseLogger.WithField("component", "session"),
	}
}

// LogRecordSaved logs one persisted record.
func (sl *SessionLogger) LogRecordSaved(date, venue string, raceNumber int, playerName string, laneNo int, move string) {
	sl.WithFields(logrus.Fields{
		"date":        date,
		"venue":       venue,
		"race_number": raceNumber,
		"player":      playerName,
		"lane":        laneNo,
		"move":        move,
	}).Info("Record saved")
}

// LogDuplicateSkip logs a duplicate insert attempt that was skipped.
func (sl *SessionLogger) LogDuplicateSkip(date, venue string, raceNumber int, playerName string) {
	sl.WithFields(logrus.Fields{
		"date":        date,
		"venue":       venue,
		"race_number": raceNumber,
		"player":      playerName,
	}).Warn("Record already saved, skipped")
}

// LogValidationFailure logs a record the builder rejected.
func (sl *SessionLogger) LogValidationFailure(playerName, code, message string) {
	sl.WithFields(logrus.Fields{
		"player": playerName,
		"code":   code,
	}).Warnf("Record rejected: %s", message)
}

// LogCardFallback logs a degraded competitor-list fetch.
func (sl *SessionLogger) LogCardFallback(raceKey, reason string) {
	sl.WithFields(logrus.Fields{
		"race":   raceKey,
		"reason": reason,
	}).Warn("Race card unavailable, continuing with empty list")
}
