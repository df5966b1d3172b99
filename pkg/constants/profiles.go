package constants

// Profile IDs. Admin sees restricted (cost/margin) catalog fields and the
// admin-only widget bucket; standard users see the filtered catalog.
const (
	ProfileAdmin        = "admin"
	ProfileStandardUser = "standard_user"
)

// IsAdmin checks if a profile ID carries admin privileges
func IsAdmin(profileID string) bool {
	return profileID == ProfileAdmin
}
