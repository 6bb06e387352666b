package models

type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

type IngestURLRequest struct {
	URL string `json:"url" binding:"required"`
}
