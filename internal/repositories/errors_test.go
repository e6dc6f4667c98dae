package repositories

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorPredicates(t *testing.T) {
	notFound := NotFoundError("customer", "42")
	if !IsNotFound(notFound) {
		t.Error("Expected NotFoundError to be detected")
	}
	if notFound.Error() != "customer with id '42' was not found" {
		t.Errorf("Unexpected message: %s", notFound.Error())
	}

	wrapped := fmt.Errorf("failed to get customer: %w", notFound)
	if !IsNotFound(wrapped) {
		t.Error("Expected wrapped NotFoundError to be detected")
	}
	if IsValidation(wrapped) || IsConnection(wrapped) {
		t.Error("NotFoundError matched the wrong predicate")
	}

	cause := errors.New("email is required")
	validation := ValidationError("customer", "", cause)
	if !IsValidation(validation) {
		t.Error("Expected ValidationError to be detected")
	}
	if !errors.Is(validation, cause) {
		t.Error("Expected validation cause to remain reachable")
	}
	if validation.Error() != "Invalid customer: email is required" {
		t.Errorf("Unexpected message: %s", validation.Error())
	}

	conn := ConnectionError("list", "customer", errors.New("dial tcp: refused"))
	if !IsConnection(conn) {
		t.Error("Expected ConnectionError to be detected")
	}
	if IsNotFound(conn) {
		t.Error("ConnectionError must not look like NotFound")
	}
}

func TestCustomerFilterConditions(t *testing.T) {
	name := "Albert"
	blocked := false
	id := int64(7)

	if !(CustomerFilter{}).IsEmpty() {
		t.Error("Expected empty filter")
	}

	conds := CustomerFilter{Blocked: &blocked, Name: &name, ID: &id}.Conditions()
	if len(conds) != 3 {
		t.Fatalf("Expected 3 conditions, got %d", len(conds))
	}

	want := []string{"id", "name", "blocked"}
	for i, c := range conds {
		if c.Column != want[i] {
			t.Errorf("Condition %d column = %s, want %s", i, c.Column, want[i])
		}
	}
	if conds[1].Value != "Albert" {
		t.Errorf("Expected name value Albert, got %v", conds[1].Value)
	}
}
