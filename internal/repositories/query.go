package repositories

// Condition is one exact-match predicate of a list query
type Condition struct {
	Column string
	Value  interface{}
}

// Filter yields the conditions a list query must satisfy
type Filter interface {
	Conditions() []Condition
}

// CustomerFilter selects customers by exact attribute values.
// Nil fields are not constrained.
type CustomerFilter struct {
	ID          *int64
	Name        *string
	Address     *string
	Email       *string
	PhoneNumber *string
	Blocked     *bool
}

// Conditions returns the set fields in column order
func (f CustomerFilter) Conditions() []Condition {
	var conds []Condition
	if f.ID != nil {
		conds = append(conds, Condition{Column: "id", Value: *f.ID})
	}
	if f.Name != nil {
		conds = append(conds, Condition{Column: "name", Value: *f.Name})
	}
	if f.Address != nil {
		conds = append(conds, Condition{Column: "address", Value: *f.Address})
	}
	if f.Email != nil {
		conds = append(conds, Condition{Column: "email", Value: *f.Email})
	}
	if f.PhoneNumber != nil {
		conds = append(conds, Condition{Column: "phonenumber", Value: *f.PhoneNumber})
	}
	if f.Blocked != nil {
		conds = append(conds, Condition{Column: "blocked", Value: *f.Blocked})
	}
	return conds
}

// IsEmpty reports whether the filter matches every customer
func (f CustomerFilter) IsEmpty() bool {
	return len(f.Conditions()) == 0
}
