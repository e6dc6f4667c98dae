package models

import (
	"errors"
	"strings"
	"testing"
)

func validCustomer() *Customer {
	return &Customer{
		Name:        "Eve",
		Address:     "1 Main St",
		Email:       "eve@example.com",
		PhoneNumber: "555-0101",
	}
}

func TestCustomerValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Customer)
		wantField string
	}{
		{"valid", func(c *Customer) {}, ""},
		{"missing name", func(c *Customer) { c.Name = "" }, "name"},
		{"blank address", func(c *Customer) { c.Address = "   " }, "address"},
		{"missing email", func(c *Customer) { c.Email = "" }, "email"},
		{"malformed email", func(c *Customer) { c.Email = "not-an-email" }, "email"},
		{"missing phone", func(c *Customer) { c.PhoneNumber = "" }, "phonenumber"},
		{"name too long", func(c *Customer) { c.Name = strings.Repeat("a", 64) }, "name"},
		{"blocked customer", func(c *Customer) { c.Blocked = true }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCustomer()
			tt.mutate(c)
			err := c.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("Expected ValidationErrors, got %T (%v)", err, err)
			}
			if len(verrs) != 1 || verrs[0].Field != tt.wantField {
				t.Errorf("Expected single failure on %s, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestValidationMessages(t *testing.T) {
	c := validCustomer()
	c.Email = ""
	c.Name = ""

	err := c.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}

	msg := err.Error()
	if !strings.Contains(msg, "name is required") || !strings.Contains(msg, "email is required") {
		t.Errorf("Expected readable messages for name and email, got %q", msg)
	}
}

func TestCustomerAction(t *testing.T) {
	blocked, err := ActionSuspend.Blocked()
	if err != nil || !blocked {
		t.Errorf("suspend: got blocked=%v err=%v", blocked, err)
	}
	if ActionSuspend.Result() != "suspended" {
		t.Errorf("Expected suspended, got %s", ActionSuspend.Result())
	}

	blocked, err = ActionActivate.Blocked()
	if err != nil || blocked {
		t.Errorf("activate: got blocked=%v err=%v", blocked, err)
	}
	if ActionActivate.Result() != "activated" {
		t.Errorf("Expected activated, got %s", ActionActivate.Result())
	}

	if _, err := CustomerAction("delete").Blocked(); err == nil {
		t.Error("Expected error for unsupported action")
	} else if err.Error() != "Action 'delete' is not supported" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}
