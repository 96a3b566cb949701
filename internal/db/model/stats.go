package model

const OverallStatsCollection = "overall_stats"

// OverallStatsDocument represents the overall ledger statistics
type OverallStatsDocument struct {
	ID           string `bson:"_id"`           // Always "overall_stats"
	TotalUsers   uint64 `bson:"total_users"`   // Registrations since genesis
	ActiveStakes uint64 `bson:"active_stakes"` // Open stake count across all users
	TotalStaked  string `bson:"total_staked"`  // Locked principal in base units
	LastUpdated  int64  `bson:"last_updated"`  // Unix timestamp of last update
}
