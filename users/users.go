package users

// RoleType represents a backend user role.
type RoleType string

const (
	RoleUser   RoleType = "USER"
	RoleDriver RoleType = "DRIVER"
	RoleAdmin  RoleType = "ADMIN"
)

// User is the backend's representation of a registered rider. The phone number
// is the stable lookup key until an id is known; once assigned, the id is the
// preferred key for all subsequent mutations.
type User struct {
	UserID      string   `json:"userId,omitempty"` // Assigned by the backend on registration
	Name        string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Address     string   `json:"address,omitempty"`
	Phone       string   `json:"phone,omitempty"` // Digits only, no country prefix
	Role        RoleType `json:"role,omitempty"`
	Verified    bool     `json:"verified,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Gender      string   `json:"gender,omitempty"`
	DateOfBirth string   `json:"dateOfBirth,omitempty"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
	UserStatus  string   `json:"userStatus,omitempty"`
}

// DefaultDisplayName derives the placeholder name given to a freshly
// registered user from the last four digits of the phone number.
func DefaultDisplayName(phoneDigits string) string {
	last4 := phoneDigits
	if len(last4) > 4 {
		last4 = last4[len(last4)-4:]
	}
	return "User" + last4
}

// NewMinimal builds the minimal record sent to the backend when no identity
// exists yet for a phone number.
func NewMinimal(phoneDigits string) *User {
	return &User{
		Name:     DefaultDisplayName(phoneDigits),
		Phone:    phoneDigits,
		Role:     RoleUser,
		Verified: true,
	}
}
