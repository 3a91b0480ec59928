package model

import "time"

type Wallet struct {
	Balance   Money     `json:"balance"`
	Currency  Currency  `json:"currency"`
	UpdatedAt time.Time `json:"updated_at"`
}
