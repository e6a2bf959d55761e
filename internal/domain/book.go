package domain

import "time"

// Condition grades the physical quality of a book. ConditionAny is valid only
// on wanted books, where it acts as a wildcard that matches every owned-book
// condition.
type Condition string

const (
	ConditionLikeNew  Condition = "like_new"
	ConditionVeryGood Condition = "very_good"
	ConditionGood     Condition = "good"
	ConditionFair     Condition = "fair"
	ConditionPoor     Condition = "poor"
	ConditionAny      Condition = "any"
)

// ValidCondition reports whether c is a known condition grade.
// allowAny permits the wanted-book wildcard.
func ValidCondition(c Condition, allowAny bool) bool {
	switch c {
	case ConditionLikeNew, ConditionVeryGood, ConditionGood, ConditionFair, ConditionPoor:
		return true
	case ConditionAny:
		return allowAny
	}
	return false
}

// OwnedBook is a book a user possesses and is willing to swap. Owner display
// name and neighborhood are denormalized onto the record so match results and
// book listings never need a second lookup; the neighborhood copies are kept
// consistent by the profile-update cascade.
type OwnedBook struct {
	BookID            string    `json:"id" dynamodbav:"book_id"`
	Title             string    `json:"title" dynamodbav:"title"`
	Author            string    `json:"author" dynamodbav:"author"`
	Condition         Condition `json:"condition" dynamodbav:"condition"`
	Neighborhood      string    `json:"neighborhood" dynamodbav:"neighborhood"`
	OwnerID           string    `json:"owner_id" dynamodbav:"owner_id"`
	OwnerDisplayName  string    `json:"owner_display_name" dynamodbav:"owner_display_name"`
	OwnerNeighborhood string    `json:"owner_neighborhood" dynamodbav:"owner_neighborhood"`
	CatalogID         *string   `json:"catalog_id,omitempty" dynamodbav:"catalog_id"`
	GenreTags         []string  `json:"genre_tags,omitempty" dynamodbav:"genre_tags"`
	Enable            bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt         time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt         time.Time `json:"updated" dynamodbav:"updated_at"`
}

// WantedBook is a wishlist entry. DesiredCondition may be ConditionAny.
type WantedBook struct {
	BookID           string    `json:"id" dynamodbav:"book_id"`
	Title            string    `json:"title" dynamodbav:"title"`
	Author           string    `json:"author" dynamodbav:"author"`
	DesiredCondition Condition `json:"desired_condition" dynamodbav:"desired_condition"`
	Neighborhood     string    `json:"neighborhood" dynamodbav:"neighborhood"`
	UserID           string    `json:"user_id" dynamodbav:"user_id"`
	GenreTags        []string  `json:"genre_tags,omitempty" dynamodbav:"genre_tags"`
	Enable           bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateOwnedBookRequest struct {
	Title     string   `json:"title" validate:"required"`
	Author    string   `json:"author" validate:"required"`
	Condition string   `json:"condition" validate:"required"`
	CatalogID *string  `json:"catalog_id"`
	GenreTags []string `json:"genre_tags"`
}

type UpdateOwnedBookRequest struct {
	Condition *string   `json:"condition"`
	GenreTags *[]string `json:"genre_tags"`
}

type CreateWantedBookRequest struct {
	Title     string   `json:"title" validate:"required"`
	Author    string   `json:"author" validate:"required"`
	Condition string   `json:"condition" validate:"required"`
	GenreTags []string `json:"genre_tags"`
}
