package httpclient

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthBearer uses Bearer token authentication.
	AuthBearer
	// AuthToken uses "Token <key>" header authentication (Deepgram style).
	AuthToken
	// AuthAPIKey uses API key authentication via a named header.
	AuthAPIKey
)

// AuthConfig configures request authentication.
type AuthConfig struct {
	// Type is the authentication method.
	Type AuthType
	// Token is the credential value.
	Token string
	// Header is the header name for AuthAPIKey. Defaults to "Authorization".
	Header string
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// TokenAuth creates a "Token" scheme auth config.
func TokenAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthToken, Token: token}
}

// APIKeyAuth creates an API key auth config with a custom header name.
func APIKeyAuth(key, headerName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Token: key, Header: headerName}
}

// headerValue returns the header name and value to set, or empty names for AuthNone.
func (a *AuthConfig) headerValue() (string, string) {
	switch a.Type {
	case AuthBearer:
		return "Authorization", "Bearer " + a.Token
	case AuthToken:
		return "Authorization", "Token " + a.Token
	case AuthAPIKey:
		header := a.Header
		if header == "" {
			header = "Authorization"
		}
		return header, a.Token
	default:
		return "", ""
	}
}
