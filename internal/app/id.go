package app

import (
	"crypto/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const vendorIDMaxLen = 32

// generateVendorID produces a self-service vendor id: "_v", the creation
// time in milliseconds and random hex, cut to 32 characters.
func generateVendorID(now time.Time) (string, error) {
	suffix, err := randomHex(8)
	if err != nil {
		return "", err
	}
	id := "_v" + strconv.FormatInt(now.UnixMilli(), 10) + suffix
	if len(id) > vendorIDMaxLen {
		id = id[:vendorIDMaxLen]
	}
	return id, nil
}

// generateInvitationCode returns an unguessable invitation code.
func generateInvitationCode() (string, error) {
	code, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return code.String(), nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	const hex = "0123456789abcdef"
	out := make([]byte, n*2)
	for i, v := range b {
		out[i*2] = hex[v>>4]
		out[i*2+1] = hex[v&0x0f]
	}
	return string(out), nil
}
