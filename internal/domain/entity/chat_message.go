package entity

import "time"

const MaxChatMessageLength = 1000

type ChatMessage struct {
	ID         string    `json:"id" firestore:"id"`
	RequestID  string    `json:"requestId" firestore:"requestId"`
	SenderID   string    `json:"senderId" firestore:"senderId"`
	SenderRole Role      `json:"senderRole" firestore:"senderRole"`
	Text       string    `json:"text" firestore:"text"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
}
