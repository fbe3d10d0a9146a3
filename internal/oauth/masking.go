package oauth

// MaskSecret masks a secret by showing the first 3 and last 4 characters.
// Secrets shorter than 8 characters are fully masked.
func MaskSecret(secret string) string {
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:3] + "***" + secret[len(secret)-4:]
}
