package models

type InitializeRequest struct {
	ForceRecreate bool `json:"force_recreate"`
}

type ChatRequest struct {
	Question    string     `json:"question" binding:"required"`
	ChatHistory []ChatTurn `json:"chat_history,omitempty"`
}
