package key

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// PrefixLen is the length of the alphabetic tag in front of the digits.
const PrefixLen = 2

// ErrMalformedIdentifier is returned when an identifier has no digits after
// its tag, contains a non-digit after the tag, or overflows 64 bits.
var ErrMalformedIdentifier = errors.New("malformed identifier")

// Encode returns the numeric form of id, ignoring its tag.
func Encode(id string) (uint64, error) {
	return encode(id)
}

// EncodeBytes is Encode for a raw byte view. It does not allocate and
// returns the same value as Encode for the same characters.
func EncodeBytes(id []byte) (uint64, error) {
	return encode(id)
}

func encode[T ~string | ~[]byte](id T) (uint64, error) {
	if len(id) <= PrefixLen {
		return 0, ErrMalformedIdentifier
	}

	var v uint64
	for i := PrefixLen; i < len(id); i++ {
		c := id[i]
		if c < '0' || c > '9' {
			return 0, ErrMalformedIdentifier
		}
		d := uint64(c - '0')
		if v > (math.MaxUint64-d)/10 {
			return 0, ErrMalformedIdentifier
		}
		v = v*10 + d
	}
	return v, nil
}

// Decode renders v with the given tag, left-padding the digits with zeros to
// at least width characters.
func Decode(tag string, v uint64, width int) string {
	digits := strconv.FormatUint(v, 10)
	if pad := width - len(digits); pad > 0 {
		return fmt.Sprintf("%s%0*d", tag, width, v)
	}
	return tag + digits
}

// Kind is the constraint for typed keys.
type Kind interface {
	~uint64
	fmt.Stringer
}

// Title is the numeric form of a title identifier ("tt...").
type Title uint64

// String implements fmt.Stringer.
func (k Title) String() string { return Decode(TitleTag, uint64(k), DefaultWidth) }

// Person is the numeric form of a person identifier ("nm...").
type Person uint64

// String implements fmt.Stringer.
func (k Person) String() string { return Decode(PersonTag, uint64(k), DefaultWidth) }

const (
	// TitleTag prefixes title identifiers.
	TitleTag = "tt"
	// PersonTag prefixes person identifiers.
	PersonTag = "nm"
	// DefaultWidth is the minimum digit count of published identifiers.
	DefaultWidth = 7
)
