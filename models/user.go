package models

import "time"

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RolePlayer UserRole = "player"
)

// User — зарегистрированный зритель со ставочным балансом. Администратор
// в этой таблице не хранится: у него нет баланса и он не делает ставок.
type User struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Balance      int       `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserSummary is the public users-list entry pushed to observers.
type UserSummary struct {
	Username string `json:"username"`
	Balance  int    `json:"balance"`
	IsOnline bool   `json:"is_online"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
