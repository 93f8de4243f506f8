package crypto

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	upperChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars = "abcdefghijklmnopqrstuvwxyz"
	digitChars = "0123456789"

	// DefaultPasswordLength is used for bootstrap credentials when no
	// length is chosen.
	DefaultPasswordLength = 20

	minPasswordLength = 8
	maxPasswordLength = 128
)

var (
	ErrPasswordTooShort = errors.New("password length must be at least 8")
	ErrPasswordTooLong  = errors.New("password length must be at most 128")
)

// GeneratePassword mints a random password of the given length from
// letters and digits, guaranteed to contain at least one character of
// each class. Letters and digits only: generated passwords get printed
// to terminals and pasted into login forms, so no shell-hostile
// characters.
func GeneratePassword(length int) (string, error) {
	if length < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	if length > maxPasswordLength {
		return "", ErrPasswordTooLong
	}

	sets := []string{upperChars, lowerChars, digitChars}
	pool := upperChars + lowerChars + digitChars

	result := make([]byte, length)

	// One character from each class first, the rest from the full pool.
	for i, charset := range sets {
		ch, err := randChar(charset)
		if err != nil {
			return "", err
		}
		result[i] = ch
	}
	for i := len(sets); i < length; i++ {
		ch, err := randChar(pool)
		if err != nil {
			return "", err
		}
		result[i] = ch
	}

	// Fisher-Yates with crypto/rand, so the class-guaranteed prefix
	// does not leak position information.
	for i := len(result) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}

	return string(result), nil
}

func randChar(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[n.Int64()], nil
}
