package util

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/weiwei-tsao/tgchecker/pkg/model"
)

// HashNumber creates an MD5 hash of a cleaned number, used as the latest-status document ID.
// The leading '+' is ignored so both spellings map to one document.
func HashNumber(n model.PhoneNumber) string {
	return hashString(n.Digits())
}

// HashBatch hashes the comma-joined batch, letting identical requests be grouped in history.
func HashBatch(b model.NumberBatch) string {
	builder := strings.Builder{}
	for i, n := range b {
		if i > 0 {
			builder.WriteString("|")
		}
		builder.WriteString(n.Digits())
	}
	return hashString(builder.String())
}

func hashString(input string) string {
	sum := md5.Sum([]byte(input))
	return hex.EncodeToString(sum[:])
}
