/*
Package randx generates identifiers from cryptographically secure randomness.

User ids are UUIDv4 strings; connection ids are short Base62 tags used to
correlate log lines of one WebSocket session.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the number of characters in Base62Chars.
	Base62Len = int64(len(Base62Chars))

	// ConnIDLength is the length of a connection id.
	ConnIDLength = 10
)

// UserID returns a fresh random UUIDv4 string. Ids never depend on the user's name.
func UserID() string {
	return uuid.NewString()
}

// Base62 returns a random Base62 string of the given length.
func Base62(length int) (string, error) {
	result := make([]byte, length)

	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random Base62 character: %w", err)
		}

		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// ConnID returns a connection id. If the random source fails it falls back to hex
// digits of a UUID so that a connection is never refused over a log tag.
func ConnID() string {
	id, err := Base62(ConnIDLength)
	if err != nil {
		return strings.ReplaceAll(uuid.NewString(), "-", "")[:ConnIDLength]
	}
	return id
}
