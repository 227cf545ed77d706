package admins

import "strings"

// Admin captures an admin panel account with locally stored credentials.
type Admin struct {
	AdminID           string `gorm:"column:admin_id;primaryKey;size:190;not null"`
	Email             string `gorm:"column:email;size:320;not null;uniqueIndex"`
	DisplayName       string `gorm:"column:display_name;size:320"`
	PasswordHash      string `gorm:"column:password_hash;size:190;not null"`
	Role              string `gorm:"column:role;size:32;not null;default:'admin'"`
	LastLoginAtSecond int64  `gorm:"column:last_login_at_s"`
	CreatedAtSeconds  int64  `gorm:"column:created_at_s;not null"`
}

// TableName exposes the table backing admin accounts.
func (Admin) TableName() string {
	return "admin_accounts"
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
