package services

import (
	"crypto/rand"
	"math/big"
)

const (
	codeCharset = "0123456789abcdefghijklmnopqrstuvwxyz"
	codeLength  = 4
)

// reservedCodes would shadow top-level routes.
var reservedCodes = map[string]bool{
	"api": true, "auth": true, "link": true, "dashboard": true,
	"healthz": true, "storage": true, "static": true, "admin": true,
}

// generateShortCode returns a random base-36 token of codeLength characters
// that is not a reserved route word.
func generateShortCode() (string, error) {
	for {
		code, err := randomString(codeLength)
		if err != nil {
			return "", err
		}
		if !reservedCodes[code] {
			return code, nil
		}
	}
}

func randomString(length int) (string, error) {
	b := make([]byte, length)
	max := big.NewInt(int64(len(codeCharset)))
	for i := range b {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = codeCharset[num.Int64()]
	}
	return string(b), nil
}
