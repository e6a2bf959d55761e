package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldEnable            = "enable"
	fieldReaded            = "readed"
	fieldRefreshToken      = "refresh_token"
	fieldRefreshExpiresAt  = "refresh_expires_at"
	fieldNeighborhood      = "neighborhood"
	fieldOwnerNeighborhood = "owner_neighborhood"
	fieldUpdatedAt         = "updated_at"
	fieldStatus            = "status"
)
