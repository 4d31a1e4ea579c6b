package user

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	User *User `json:"user"`
}

// ClerkUserRequest carries the fields a Clerk webhook can set on a user.
type ClerkUserRequest struct {
	ClerkID   string
	Email     string
	Name      string
	AvatarURL string
}
