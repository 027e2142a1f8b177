package domain

import "time"

// Message is a direct message between two wallet addresses. Messaging is an
// eventually-consistent collaborator of the donation platform; it shares the
// credibility-gate idea but has its own independently configured threshold.
type Message struct {
	ID           string    `json:"id"`
	FromAddress  string    `json:"fromAddress"`
	ToAddress    string    `json:"toAddress"`
	FromUsername string    `json:"fromUsername,omitempty"`
	FromScore    int       `json:"fromEthosScore"`
	Body         string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
	Read         bool      `json:"read"`
}

// ConversationSummary is one inbox row: the latest message exchanged with a
// counterparty plus the unread count.
type ConversationSummary struct {
	Counterparty  string    `json:"counterparty"`
	LastMessage   string    `json:"lastMessage"`
	LastTimestamp time.Time `json:"lastTimestamp"`
	UnreadCount   int64     `json:"unreadCount"`
}
