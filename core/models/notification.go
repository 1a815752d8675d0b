package models

import "time"

// ModelUpdated is the notification type that triggers a regeneration pass.
const ModelUpdated = "model-updated"

type Notification struct {
	Type  string    `json:"type"`
	Stage string    `json:"stage,omitempty"`
	At    time.Time `json:"at"`
}

func (n Notification) IsModelUpdate() bool {
	return n.Type == ModelUpdated
}
