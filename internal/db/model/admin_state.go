package model

const AdminStateCollection = "admin_state"

// AdminStateDocument holds the administrative configuration of the ledger.
// Unlike stakes and users it is not derivable from the event journal, since
// pause toggles and pool changes are not journaled.
type AdminStateDocument struct {
	ID          string `bson:"_id"` // Always "admin_state"
	Owner       string `bson:"owner"`
	Pool        string `bson:"pool"`
	Paused      bool   `bson:"paused"`
	LastUpdated int64  `bson:"last_updated"`
}
