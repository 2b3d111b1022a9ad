package models

import "time"

// Event is the envelope written to the activity topic.
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // prediction.completed, dataset.uploaded, ...
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}
