package models

import (
	"time"
)

const (
	SenderUser	= "user"
	SenderSystem	= "system"
)

type Record struct {
	ID		int64		`db:"id" json:"id"`
	Timestamp	time.Time	`db:"timestamp" json:"timestamp"`
	Sender		string		`db:"sender" json:"sender"`
	LineID		string		`db:"line_id" json:"line_id"`
	StripeID	*string		`db:"stripe_id" json:"stripe_id,omitempty"`
	Message		string		`db:"message" json:"message"`
	IsActive	bool		`db:"is_active" json:"is_active"`
	SysPrompt	string		`db:"sys_prompt" json:"sys_prompt"`
}

type HistoryItem struct {
	Role	string	`db:"role" json:"role"`
	Content	string	`db:"content" json:"content"`
}
