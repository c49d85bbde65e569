package dto

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthOutput is returned by register and login. The refresh token travels in a
// cookie and is never part of the body.
type AuthOutput struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
}
