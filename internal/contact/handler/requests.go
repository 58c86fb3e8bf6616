package handler

import (
	"contactbook/internal/contact/models"
	dErrors "contactbook/pkg/domain-errors"
)

// CreateContactRequest is the body of POST /contacts. Every field must be
// present; first name, last name and address may be empty strings.
type CreateContactRequest struct {
	ID        *string `json:"id"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

// Validate checks presence only. Format and length rules belong to the
// contact model and are applied by the service.
func (r *CreateContactRequest) Validate() error {
	switch {
	case r.ID == nil:
		return dErrors.New(dErrors.CodeBadRequest, "id is required")
	case r.FirstName == nil:
		return dErrors.New(dErrors.CodeBadRequest, "first_name is required")
	case r.LastName == nil:
		return dErrors.New(dErrors.CodeBadRequest, "last_name is required")
	case r.Phone == nil:
		return dErrors.New(dErrors.CodeBadRequest, "phone is required")
	case r.Address == nil:
		return dErrors.New(dErrors.CodeBadRequest, "address is required")
	}
	return nil
}

// UpdateContactRequest is the body of PATCH /contacts/{id}. Omitted or null
// fields are left unchanged.
type UpdateContactRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

func (r *UpdateContactRequest) ToPatch() models.ContactPatch {
	return models.ContactPatch{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Phone:     r.Phone,
		Address:   r.Address,
	}
}

type ListContactsResponse struct {
	Contacts []*models.Contact `json:"contacts"`
	Count    int               `json:"count"`
}
