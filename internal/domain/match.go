package domain

// MatchCandidate is a ranked swap partner. Computed on demand by the match
// engine, never persisted. A candidate is only emitted when at least one of
// the two offer lists is non-empty.
type MatchCandidate struct {
	OtherUserID           string      `json:"other_user_id"`
	OtherUserName         string      `json:"other_user_name"`
	OtherUserNeighborhood string      `json:"other_user_neighborhood"`
	TheyOfferThatIWant    []OwnedBook `json:"they_offer_that_i_want"`
	IOfferThatTheyWant    []OwnedBook `json:"i_offer_that_they_want"`
	Score                 int         `json:"score"` // clamped to [0,10]
}
