package dto

type CreateCommentReq struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parentId"`
}
