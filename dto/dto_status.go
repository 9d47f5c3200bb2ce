package dto

import "time"

// UpdateStatusReq trusts the caller's isOnline flag; a missing lastSeen
// means "stamp server time".
type UpdateStatusReq struct {
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen"`
}
