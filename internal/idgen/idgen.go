package idgen

import (
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultTokenLength yields 192 bits of entropy with the nanoid alphabet.
const DefaultTokenLength = 32

// MinTokenLength keeps review tokens above 128 bits of entropy.
const MinTokenLength = 22

// New returns a new globally unique identifier as string. It is implemented
// as a thin wrapper so tests can stub it.
var NewFunc = func() string { return uuid.New().String() }

func New() string { return NewFunc() }

// TokenFunc produces an unguessable URL-safe token of the requested length.
// go-nanoid reads from crypto/rand.
var TokenFunc = func(length int) (string, error) {
	if length < MinTokenLength {
		length = MinTokenLength
	}
	return gonanoid.New(length)
}

// Token returns a capability token for review links.
func Token(length int) (string, error) { return TokenFunc(length) }
