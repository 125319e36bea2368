package output

import "time"

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type EventName string

const (
	EventBatchStarted  EventName = "batch_started"
	EventAlbumStarted  EventName = "album_started"
	EventTrackStarted  EventName = "track_started"
	EventTrackFinished EventName = "track_finished"
	EventTrackSkipped  EventName = "track_skipped"
	EventTrackFailed   EventName = "track_failed"
	EventBatchFinished EventName = "batch_finished"
)

type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Event     EventName      `json:"event"`
	Track     string         `json:"track,omitempty"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}
