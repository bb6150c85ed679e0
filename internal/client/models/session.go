package models

// Session is the persisted authentication record. The refresh token is only
// read by the HTTP client's retry hook and the auth manager.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"userId"`
}

// Valid reports whether the session carries both tokens.
func (s Session) Valid() bool {
	return s.AccessToken != "" && s.RefreshToken != ""
}
