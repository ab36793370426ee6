package auth

// HasPermission reports whether capability is in the identity's materialized
// set. Anonymous callers and unknown capabilities are denied.
func HasPermission(id *Identity, capability string) bool {
	if id == nil || capability == "" {
		return false
	}
	_, ok := id.Permissions[capability]
	return ok
}

// CanActOnEvent grants base+".all" regardless of ownership, otherwise requires
// both ownership and base+".own".
func CanActOnEvent(id *Identity, ownerID int64, base string) bool {
	if id == nil {
		return false
	}
	if HasPermission(id, base+".all") {
		return true
	}
	return id.ID == ownerID && HasPermission(id, base+".own")
}
