package observability

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypeClassify  EventType = "classify"
	EventTypePlan      EventType = "plan"
	EventTypeValidate  EventType = "validate"
	EventTypeStep      EventType = "step"
	EventTypeRollback  EventType = "rollback"
	EventTypeRateLimit EventType = "rate_limit"
	EventTypeLLM       EventType = "llm"
	EventTypeHeartbeat EventType = "heartbeat"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	PlanID    string    `json:"plan_id,omitempty"`
	StepID    string    `json:"step_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging. Step and rollback events form the
// execution audit trail and are persisted to a JSONL file.
type Logger struct {
	auditLogPath string
	maxSize      int64
}

func NewLogger() *Logger {
	return &Logger{
		auditLogPath: filepath.Join("logs", "audit.jsonl"),
		maxSize:      10 * 1024 * 1024, // 10MB
	}
}

// NewLoggerAt places the audit trail at a custom path.
func NewLoggerAt(path string) *Logger {
	return &Logger{
		auditLogPath: path,
		maxSize:      10 * 1024 * 1024,
	}
}

// Log emits a structured JSON event to stdout.
func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		fmt.Printf("{\"error\": \"failed to marshal event: %v\"}\n", err)
		return
	}
	fmt.Println(string(data))

	if evt.Type == EventTypeStep || evt.Type == EventTypeRollback {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.auditLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.auditLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.auditLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.auditLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.auditLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogClassify(userID, requestType, intent string) {
	l.Log(Event{
		Type:   EventTypeClassify,
		UserID: userID,
		Data: map[string]string{
			"request_type": requestType,
			"intent":       intent,
		},
	})
}

func (l *Logger) LogPlan(userID, planID string, steps int, status string) {
	l.Log(Event{
		Type:   EventTypePlan,
		UserID: userID,
		PlanID: planID,
		Data: map[string]any{
			"steps":  steps,
			"status": status,
		},
	})
}

func (l *Logger) LogValidate(userID, planID string, valid, requiresApproval bool, warnings int) {
	l.Log(Event{
		Type:   EventTypeValidate,
		UserID: userID,
		PlanID: planID,
		Data: map[string]any{
			"valid":             valid,
			"requires_approval": requiresApproval,
			"warnings":          warnings,
		},
	})
}

func (l *Logger) LogStep(userID, planID, stepID, action, status, preview string) {
	l.Log(Event{
		Type:   EventTypeStep,
		UserID: userID,
		PlanID: planID,
		StepID: stepID,
		Data: map[string]string{
			"action":  action,
			"status":  status,
			"preview": preview,
		},
	})
}

func (l *Logger) LogRateLimit(userID string, waited time.Duration) {
	l.Log(Event{
		Type:   EventTypeRateLimit,
		UserID: userID,
		Data:   map[string]any{"waited_seconds": waited.Seconds()},
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Event{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}
