package nda

import "time"

type AcceptRequest struct {
	NDAVersion string `json:"ndaVersion" binding:"required,max=32"`
}

type AcceptanceResponse struct {
	ID         string    `json:"id"`
	NDAVersion string    `json:"ndaVersion"`
	AcceptedAt time.Time `json:"acceptedAt"`
}

type StatusResponse struct {
	Required   bool       `json:"required"`
	Accepted   bool       `json:"accepted"`
	NDAVersion string     `json:"ndaVersion,omitempty"`
	AcceptedAt *time.Time `json:"acceptedAt,omitempty"`
}
