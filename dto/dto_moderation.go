package dto

type PinReq struct {
	IsPinned bool `json:"isPinned"`
}

type LockReq struct {
	IsLocked bool `json:"isLocked"`
}
