package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// InviteCodeLength is the number of characters in a group invite code.
const InviteCodeLength = 6

const inviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateInviteCode returns a random code of uppercase letters and digits, e.g. "K3X9QA".
func GenerateInviteCode() (string, error) {
	max := big.NewInt(int64(len(inviteCodeAlphabet)))
	code := make([]byte, InviteCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random index: %w", err)
		}
		code[i] = inviteCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
