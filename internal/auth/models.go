package auth

import "github.com/golang-jwt/jwt/v5"

// DevUserID — пользователь, для которого выдаётся dev-токен
const DevUserID = "dev-user"

// DevAuthResponse — ответ на dev-авторизацию
type DevAuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      string `json:"user_id"`
}

// Claims — claims нашего access token (sub = user_id)
type Claims struct {
	jwt.RegisteredClaims
}
