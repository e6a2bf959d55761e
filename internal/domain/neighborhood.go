package domain

// Neighborhood is an admin-managed reference entry users pick their profile
// neighborhood from.
type Neighborhood struct {
	NeighborhoodID string `json:"id" dynamodbav:"neighborhood_id"`
	Name           string `json:"name" dynamodbav:"name"`
	City           string `json:"city,omitempty" dynamodbav:"city"`
}

type NeighborhoodInput struct {
	Name string `json:"name" validate:"required"`
	City string `json:"city"`
}
