package models

import (
	"encoding/json"
	"unicode/utf8"

	dErrors "contactbook/pkg/domain-errors"
)

const (
	MaxIDLength      = 10
	MaxNameLength    = 10
	PhoneDigits      = 10
	MaxAddressLength = 30
)

// Contact is a single address book entry.
//
// Invariants:
//   - ID is 1 to 10 characters and immutable after construction
//   - FirstName and LastName are at most 10 characters (empty allowed)
//   - Phone is exactly 10 ASCII digits
//   - Address is at most 30 characters (empty allowed)
//
// Every setter validates before assigning, so a Contact is never observable
// in a partially valid state. Fields are unexported to keep ID read-only.
type Contact struct {
	id        string
	firstName string
	lastName  string
	phone     string
	address   string
}

// NewContact validates every field in declaration order and returns the first
// violation as a validation error.
func NewContact(id, firstName, lastName, phone, address string) (*Contact, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if err := ValidateFirstName(firstName); err != nil {
		return nil, err
	}
	if err := ValidateLastName(lastName); err != nil {
		return nil, err
	}
	if err := ValidatePhone(phone); err != nil {
		return nil, err
	}
	if err := ValidateAddress(address); err != nil {
		return nil, err
	}
	return &Contact{
		id:        id,
		firstName: firstName,
		lastName:  lastName,
		phone:     phone,
		address:   address,
	}, nil
}

func (c *Contact) ID() string        { return c.id }
func (c *Contact) FirstName() string { return c.firstName }
func (c *Contact) LastName() string  { return c.lastName }
func (c *Contact) Phone() string     { return c.phone }
func (c *Contact) Address() string   { return c.address }

func (c *Contact) SetFirstName(firstName string) error {
	if err := ValidateFirstName(firstName); err != nil {
		return err
	}
	c.firstName = firstName
	return nil
}

func (c *Contact) SetLastName(lastName string) error {
	if err := ValidateLastName(lastName); err != nil {
		return err
	}
	c.lastName = lastName
	return nil
}

func (c *Contact) SetPhone(phone string) error {
	if err := ValidatePhone(phone); err != nil {
		return err
	}
	c.phone = phone
	return nil
}

func (c *Contact) SetAddress(address string) error {
	if err := ValidateAddress(address); err != nil {
		return err
	}
	c.address = address
	return nil
}

// Clone returns an independent copy. Stores hand out clones so callers cannot
// mutate stored contacts behind the service's back.
func (c *Contact) Clone() *Contact {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

type contactJSON struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

func (c *Contact) MarshalJSON() ([]byte, error) {
	return json.Marshal(contactJSON{
		ID:        c.id,
		FirstName: c.firstName,
		LastName:  c.lastName,
		Phone:     c.phone,
		Address:   c.address,
	})
}

func ValidateID(id string) error {
	if id == "" || utf8.RuneCountInString(id) > MaxIDLength {
		return dErrors.New(dErrors.CodeValidation, "contact ID must be non-empty and at most 10 characters")
	}
	return nil
}

func ValidateFirstName(firstName string) error {
	if utf8.RuneCountInString(firstName) > MaxNameLength {
		return dErrors.New(dErrors.CodeValidation, "first name must be at most 10 characters")
	}
	return nil
}

func ValidateLastName(lastName string) error {
	if utf8.RuneCountInString(lastName) > MaxNameLength {
		return dErrors.New(dErrors.CodeValidation, "last name must be at most 10 characters")
	}
	return nil
}

// ValidatePhone accepts exactly ten ASCII digits: no signs, spaces or separators.
func ValidatePhone(phone string) error {
	if len(phone) != PhoneDigits {
		return dErrors.New(dErrors.CodeValidation, "phone must be exactly 10 digits")
	}
	for i := 0; i < len(phone); i++ {
		if phone[i] < '0' || phone[i] > '9' {
			return dErrors.New(dErrors.CodeValidation, "phone must be exactly 10 digits")
		}
	}
	return nil
}

func ValidateAddress(address string) error {
	if utf8.RuneCountInString(address) > MaxAddressLength {
		return dErrors.New(dErrors.CodeValidation, "address must be at most 30 characters")
	}
	return nil
}

// IsValidationError reports whether err is a field validation failure.
func IsValidationError(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeValidation)
}
