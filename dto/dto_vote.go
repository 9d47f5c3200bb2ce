package dto

type VoteReq struct {
	IsUpvote bool `json:"isUpvote"`
}
