package audit

import (
	"encoding/json"
	"time"
)

type EntryResponse struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	TargetType string          `json:"targetType"`
	TargetID   string          `json:"targetId"`
	ActorID    string          `json:"actorId,omitempty"`
	ActorName  string          `json:"actorName"`
	Meta       json.RawMessage `json:"meta,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type ListResponse struct {
	Entries []EntryResponse `json:"entries"`
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}
