package types

import "time"

type User struct {
	UserID       int64     `db:"user_id" json:"user_id"`
	AuthSubject  *string   `db:"auth_subject" json:"-"`
	Name         string    `db:"name" json:"name"`
	Nickname     string    `db:"nickname" json:"nickname"`
	Email        *string   `db:"email" json:"email"`
	ProfileImage *string   `db:"profile_image" json:"profile_image"`
	Balance      int64     `db:"balance" json:"balance"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserUpdate carries a partial profile update. Nil fields are left unchanged.
type UserUpdate struct {
	Nickname     *string
	ProfileImage *string
}
