package dto

// CreateProfileRequest represents a request to create the posting profile
type CreateProfileRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}
