package models

import (
	"strings"
	"time"
)

// User represents a registered parent account
type User struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	PhoneNumber string     `json:"phone_number" db:"phone_number"`
	Email       *string    `json:"email,omitempty" db:"email"`
	CreatedAt   *time.Time `json:"created_at,omitempty" db:"created_at"`
	LastActive  *time.Time `json:"last_active,omitempty" db:"last_active"`
}

// UserProfile is the optional 1:1 extension of a user with the child's details
type UserProfile struct {
	UserID         string  `json:"user_id" db:"user_id"`
	ChildAgeMonths *int    `json:"child_age_months,omitempty" db:"child_age_months"`
	ChildName      *string `json:"child_name,omitempty" db:"child_name"`
	ParentName     *string `json:"parent_name,omitempty" db:"parent_name"`
	AdditionalInfo *string `json:"additional_info,omitempty" db:"additional_info"`
}

// Matches reports whether the user matches a free-text search term on
// name, phone number or email. An empty term matches everyone.
func (u *User) Matches(term string) bool {
	if term == "" {
		return true
	}
	lower := strings.ToLower(term)
	if strings.Contains(strings.ToLower(u.Name), lower) {
		return true
	}
	if strings.Contains(u.PhoneNumber, term) {
		return true
	}
	return u.Email != nil && strings.Contains(strings.ToLower(*u.Email), lower)
}

// IndexUsers builds an id -> user lookup
func IndexUsers(users []User) map[string]*User {
	index := make(map[string]*User, len(users))
	for i := range users {
		index[users[i].ID] = &users[i]
	}
	return index
}
