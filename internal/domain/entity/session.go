package entity

import "time"

// Session es la aserción decodificada del token de sesión.
type Session struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}
