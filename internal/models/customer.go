package models

import (
	"fmt"
)

// Customer represents a customer in the system.
// Blocked marks a suspended customer; it is distinct from deletion.
type Customer struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name" validate:"required,notblank,max=63"`
	Address     string `json:"address" db:"address" validate:"required,notblank,max=256"`
	Email       string `json:"email" db:"email" validate:"required,email,max=50"`
	PhoneNumber string `json:"phonenumber" db:"phonenumber" validate:"required,notblank,max=25"`
	Blocked     bool   `json:"blocked" db:"blocked"`
}

// Validate validates the customer data
func (c *Customer) Validate() error {
	return ValidateStruct(c)
}

// CustomerAction is a state change that can be applied to an existing customer
type CustomerAction string

const (
	ActionSuspend  CustomerAction = "suspend"
	ActionActivate CustomerAction = "activate"
)

// Blocked returns the blocked flag the action leads to
func (a CustomerAction) Blocked() (bool, error) {
	switch a {
	case ActionSuspend:
		return true, nil
	case ActionActivate:
		return false, nil
	default:
		return false, &ValidationError{
			Field:   "action",
			Message: fmt.Sprintf("Action '%s' is not supported", string(a)),
			Value:   string(a),
		}
	}
}

// Result is the word reported back to the client once the action is applied
func (a CustomerAction) Result() string {
	switch a {
	case ActionSuspend:
		return "suspended"
	case ActionActivate:
		return "activated"
	default:
		return string(a)
	}
}
