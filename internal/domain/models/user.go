package models

import "time"

// Роли пользователей. Самостоятельная регистрация всегда даёт RoleUser.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User представляет пользователя магазина
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"` // Уникальное имя пользователя
	Email     string    `json:"email"`
	PassHash  []byte    `json:"-"`
	Role      string    `json:"role"` // ADMIN или USER, фиксируется при создании
	CreatedAt time.Time `json:"created_at"`
}
