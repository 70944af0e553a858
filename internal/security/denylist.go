package security

// RevokedTokenKey names the redis entry that marks a token id as logged out.
func RevokedTokenKey(tokenID string) string {
	return "revoked_token:" + tokenID
}
