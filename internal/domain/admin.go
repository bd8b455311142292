package domain

type AdminRole string

const (
	RoleOwner AdminRole = "owner"
	RoleAdmin AdminRole = "admin"
)

type Admin struct {
	TelegramID int64
	Role       AdminRole
}
