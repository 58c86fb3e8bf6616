package models

// ContactPatch carries optional replacements for a contact's mutable fields.
// A nil field means "not provided" and is left unchanged; a pointer to ""
// is a real value.
type ContactPatch struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
}

// IsEmpty reports whether the patch provides no field at all.
func (p ContactPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil && p.Address == nil
}

// Validate checks every provided field in the order first name, last name,
// phone, address and returns the first violation.
func (p ContactPatch) Validate() error {
	if p.FirstName != nil {
		if err := ValidateFirstName(*p.FirstName); err != nil {
			return err
		}
	}
	if p.LastName != nil {
		if err := ValidateLastName(*p.LastName); err != nil {
			return err
		}
	}
	if p.Phone != nil {
		if err := ValidatePhone(*p.Phone); err != nil {
			return err
		}
	}
	if p.Address != nil {
		if err := ValidateAddress(*p.Address); err != nil {
			return err
		}
	}
	return nil
}

// ApplyTo runs the setters for every provided field in validation order and
// stops at the first rejected value. Fields set before the rejection keep
// their new values; call Validate first when the update must be
// all-or-nothing.
func (p ContactPatch) ApplyTo(c *Contact) error {
	_, err := p.Apply(c)
	return err
}

// Apply is ApplyTo that also reports the names of the fields that were set,
// including when a later field is rejected.
func (p ContactPatch) Apply(c *Contact) ([]string, error) {
	steps := []struct {
		name  string
		value *string
		set   func(string) error
	}{
		{"first_name", p.FirstName, c.SetFirstName},
		{"last_name", p.LastName, c.SetLastName},
		{"phone", p.Phone, c.SetPhone},
		{"address", p.Address, c.SetAddress},
	}

	var applied []string
	for _, step := range steps {
		if step.value == nil {
			continue
		}
		if err := step.set(*step.value); err != nil {
			return applied, err
		}
		applied = append(applied, step.name)
	}
	return applied, nil
}

// Fields lists the names of the provided fields, for logging.
func (p ContactPatch) Fields() []string {
	var fields []string
	if p.FirstName != nil {
		fields = append(fields, "first_name")
	}
	if p.LastName != nil {
		fields = append(fields, "last_name")
	}
	if p.Phone != nil {
		fields = append(fields, "phone")
	}
	if p.Address != nil {
		fields = append(fields, "address")
	}
	return fields
}
