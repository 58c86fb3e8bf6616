package models

// Domain events emitted by the contact service after a successful mutation.

type ContactAdded struct {
	ContactID string
}

type ContactDeleted struct {
	ContactID string
}

type ContactUpdated struct {
	ContactID string
	Fields    []string
}
