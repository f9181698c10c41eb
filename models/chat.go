package models

import "time"

// ChatTranscriptLimit — размер скользящего окна переписки.
const ChatTranscriptLimit = 100

// MaxChatMessageLength caps an accepted message after trimming.
const MaxChatMessageLength = 200

type ChatMessage struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
