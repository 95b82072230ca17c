package models

import "time"

// Teacher represents an evaluator account. Password holds the stored
// credential in pbkdf2 format (legacy rows may still be plaintext).
type Teacher struct {
	EmployeeCode string    `db:"employee_code" json:"employee_code"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Password     string    `db:"password" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
