package models

// AccountRef identifies an account either directly by principal or by its
// pay-id alias. Exactly one side is expected to be set; when both are,
// Principal wins.
type AccountRef struct {
	Principal string
	PayID     string
}

func (r AccountRef) Empty() bool { return r.Principal == "" && r.PayID == "" }
