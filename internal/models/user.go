package models

import (
	"time"
)

type User struct {
	UserID           uint      `gorm:"primaryKey;autoIncrement" json:"user_id"`
	Email            string    `gorm:"uniqueIndex;not null" json:"email"`
	MonthlyIncome    float64   `json:"monthly_income"`
	CreditScore      int       `json:"credit_score"`
	EmploymentStatus string    `json:"employment_status"`
	Age              int       `json:"age"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
