package common

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// RandToken generates a random hexadecimal token of 2*size characters.
// Used for public share identifiers; size 5 yields a ten character token.
func RandToken(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

const passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()_+"

// GeneratePassword returns a random password of the given length drawn
// from the charset the web client used for its "magic password" button.
func GeneratePassword(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(passwordCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordCharset[n.Int64()]
	}
	return string(out), nil
}

// FormatSize renders a byte count the way the UI did: raw below 1 KiB,
// otherwise one decimal with a KB/MB/GB suffix (1024-based).
func FormatSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	if bytes < 1024 {
		return fmt.Sprintf("%d B", bytes)
	}
	units := []string{"KB", "MB", "GB"}
	v := float64(bytes)
	i := -1
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", v, units[i])
}

// WipeBytes overwrites the contents of b with zeros. Useful for removing
// passwords and derived keys from memory after use. A nil slice is a no-op.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
