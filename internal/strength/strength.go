// Package strength rates platform passwords and generates strong random ones.
//
// Ratings are advisory: the vault never rejects a weak secret, callers decide
// whether to warn or re-prompt.
package strength

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rating is the outcome of Rate.
type Rating int

const (
	Weak Rating = iota
	Medium
	Strong
	VeryStrong
)

func (r Rating) String() string {
	switch r {
	case Weak:
		return "Weak"
	case Medium:
		return "Medium"
	case Strong:
		return "Strong"
	case VeryStrong:
		return "Very Strong"
	default:
		return fmt.Sprintf("Rating(%d)", int(r))
	}
}

const (
	MinLength     = 8
	MaxLength     = 1024
	DefaultLength = 12

	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Digits    = "0123456789"
	// Symbols is the ASCII punctuation set.
	Symbols = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

var (
	ErrTooShort = fmt.Errorf("password length must be at least %d", MinLength)
	ErrTooLong  = fmt.Errorf("password length must be at most %d", MaxLength)
)

// Score counts how many of the five criteria password meets: length of at
// least MinLength runes, a lowercase letter, an uppercase letter, a digit and
// a character from Symbols.
func Score(password string) int {
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(Symbols, r):
			symbol = true
		}
	}

	score := 0
	for _, ok := range []bool{utf8.RuneCountInString(password) >= MinLength, lower, upper, digit, symbol} {
		if ok {
			score++
		}
	}
	return score
}

// Rate maps Score onto a Rating: 0-2 Weak, 3 Medium, 4 Strong, 5 VeryStrong.
func Rate(password string) Rating {
	switch s := Score(password); {
	case s <= 2:
		return Weak
	case s == 3:
		return Medium
	case s == 4:
		return Strong
	default:
		return VeryStrong
	}
}

// Generate returns a random password of the given length containing at least
// one lowercase letter, uppercase letter, digit and symbol. All randomness
// comes from crypto/rand.
func Generate(length int) (string, error) {
	if length < MinLength {
		return "", ErrTooShort
	}
	if length > MaxLength {
		return "", ErrTooLong
	}

	all := Lowercase + Uppercase + Digits + Symbols
	buf := make([]byte, 0, length)
	for _, set := range []string{Lowercase, Uppercase, Digits, Symbols} {
		c, err := pick(set)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}
	for len(buf) < length {
		c, err := pick(all)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}

	// Fisher-Yates
	for i := len(buf) - 1; i > 0; i-- {
		j, err := randInt(i + 1)
		if err != nil {
			return "", err
		}
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf), nil
}

func pick(set string) (byte, error) {
	i, err := randInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, errors.Join(errors.New("random source failed"), err)
	}
	return int(v.Int64()), nil
}
