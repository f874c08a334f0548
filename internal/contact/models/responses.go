package models

// MessageResponse is the confirmation body for deletes.
type MessageResponse struct {
	Message string `json:"message"`
}

// DeletedMessage confirms a successful delete.
const DeletedMessage = "Successfully deleted contact"
