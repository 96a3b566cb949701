package model

const UserCollection = "users"

// UserDocument is the snapshot projection of one registered user. The event
// journal stays authoritative; snapshots exist for API reads and external
// consumers.
type UserDocument struct {
	Address      string `bson:"_id"`
	Referrer     string `bson:"referrer"`
	RefereeCount uint64 `bson:"referee_count"`
	ActiveStakes uint64 `bson:"active_stakes"`
	RegisteredAt int64  `bson:"registered_at"`
}
