package validation

import (
	"fmt"
	"strconv"
	"strings"
)

// Record is a normalized applicant row that passed validation. It is
// ephemeral; the repository layer maps it onto the stored model.
type Record struct {
	Email            string
	MonthlyIncome    float64
	CreditScore      int
	EmploymentStatus string
	Age              int
}

// Rejection explains why one row was refused. RowIndex is 1-based over the
// data rows (the header row is not counted).
type Rejection struct {
	RowIndex int
	Field    string
	Value    string
	Reason   string
}

func (r Rejection) Error() string {
	return fmt.Sprintf("row %d: %s", r.RowIndex, r.Reason)
}

// Outcome is either a validated record or a rejection, never both.
type Outcome struct {
	Record    *Record
	Rejection *Rejection
}

func reject(rowIndex int, field, value, reason string) Outcome {
	return Outcome{Rejection: &Rejection{
		RowIndex: rowIndex,
		Field:    field,
		Value:    value,
		Reason:   reason,
	}}
}

// ValidateRow checks one raw CSV row against the applicant rules. Rules are
// applied in order and the first failure wins; a row is never partially
// accepted. Missing monthly_income defaults to 0 and missing
// employment_status to the empty string; everything else is required.
func ValidateRow(rowIndex int, row map[string]string) Outcome {
	email := strings.TrimSpace(row["email"])
	if email == "" || !strings.Contains(email, "@") {
		return reject(rowIndex, "email", email, fmt.Sprintf("invalid email %q", email))
	}

	income := 0.0
	if raw := strings.TrimSpace(row["monthly_income"]); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return reject(rowIndex, "monthly_income", raw, fmt.Sprintf("monthly income %q is not a number", raw))
		}
		income = parsed
	}
	if income < 0 {
		return reject(rowIndex, "monthly_income",
			strconv.FormatFloat(income, 'f', -1, 64), "monthly income cannot be negative")
	}

	rawScore := strings.TrimSpace(row["credit_score"])
	score, err := strconv.Atoi(rawScore)
	if err != nil {
		return reject(rowIndex, "credit_score", rawScore, fmt.Sprintf("credit score %q is not an integer", rawScore))
	}
	if score < 300 || score > 850 {
		return reject(rowIndex, "credit_score", rawScore, fmt.Sprintf("credit score %d out of range (300-850)", score))
	}

	rawAge := strings.TrimSpace(row["age"])
	age, err := strconv.Atoi(rawAge)
	if err != nil {
		return reject(rowIndex, "age", rawAge, fmt.Sprintf("age %q is not an integer", rawAge))
	}
	if age < 18 || age > 100 {
		return reject(rowIndex, "age", rawAge, fmt.Sprintf("age %d out of range (18-100)", age))
	}

	return Outcome{Record: &Record{
		Email:            email,
		MonthlyIncome:    income,
		CreditScore:      score,
		EmploymentStatus: strings.TrimSpace(row["employment_status"]),
		Age:              age,
	}}
}
