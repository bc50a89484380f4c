package models

// Account roles.
const (
	RoleUser    = "user"
	RoleCompany = "company"
)

// Profile is the companion record for an identity (private user or company).
type Profile struct {
	ID          string `db:"id" json:"id"`
	Role        string `db:"role" json:"role"`
	DisplayName string `db:"display_name" json:"display_name,omitempty"`
	CompanyName string `db:"company_name" json:"company_name,omitempty"`
	Username    string `db:"username" json:"username,omitempty"`
	Email       string `db:"email" json:"email,omitempty"`
	AvatarURL   string `db:"avatar_url" json:"avatar_url,omitempty"`
	Verified    bool   `db:"verified" json:"verified"`
}

// Name resolves a display name through the denormalized fallback chain,
// ending at the raw id.
func (p Profile) Name() string {
	for _, candidate := range []string{p.DisplayName, p.CompanyName, p.Username, p.Email} {
		if candidate != "" {
			return candidate
		}
	}
	return p.ID
}
