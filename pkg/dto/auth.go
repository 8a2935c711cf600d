package dto

type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
	Provider string `json:"provider,omitempty"`
	Code     string `json:"code,omitempty"`
	State    string `json:"state,omitempty"`
}

type ConsentURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Role         string `json:"role"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SessionResponse struct {
	Subject  string `json:"subject"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider"`
	Role     string `json:"role"`
}
