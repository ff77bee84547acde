package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateTempPassword generates a random initial password in the format
// xxxx-xxxx-xxxx. The seeder prints it once; members are expected to
// change it after their first login.
func GenerateTempPassword() (string, error) {
	bytes := make([]byte, 6)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	hex := hex.EncodeToString(bytes)
	// Format: xxxx-xxxx-xxxx
	return fmt.Sprintf("%s-%s-%s",
		hex[0:4],
		hex[4:8],
		hex[8:12],
	), nil
}
