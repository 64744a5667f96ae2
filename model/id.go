package model

import (
	"encoding/base32"
	"strings"

	"github.com/gofrs/uuid"
)

const publicTokenLen = 10

var tokenEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

func NewID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// NewPublicToken returns a short random token for anonymous form links.
func NewPublicToken() string {
	u := uuid.Must(uuid.NewV4())
	return strings.ToLower(tokenEncoding.EncodeToString(u.Bytes()))[:publicTokenLen]
}
