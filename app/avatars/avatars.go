// Package avatars maps opaque seeds to cosmetic avatar image URLs.
package avatars

import (
	"fmt"
	"math/rand/v2"
	"net/url"
	"strconv"
	"strings"
)

// DefaultBaseURL is the avatar rendering service used when none is configured.
const DefaultBaseURL = "https://i.pravatar.cc/150"

// imageCount is the number of distinct images the service serves.
const imageCount = 70

// NewSeed returns a random base36 seed. Collisions are acceptable.
func NewSeed() string {
	return strconv.FormatUint(rand.Uint64(), 36)
}

// Mapper turns seeds into URLs at a fixed avatar service.
type Mapper struct {
	baseURL string
}

// NewMapper creates a Mapper; an empty baseURL selects DefaultBaseURL.
func NewMapper(baseURL string) *Mapper {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Mapper{baseURL: strings.TrimRight(baseURL, "?")}
}

// URL returns the image URL for seed. The same seed always yields the same URL.
func (m *Mapper) URL(seed string) string {
	return fmt.Sprintf("%s?img=%d&u=%s", m.baseURL, imageIndex(seed), url.QueryEscape(seed))
}

// URL maps seed using DefaultBaseURL.
func URL(seed string) string {
	return NewMapper("").URL(seed)
}

// imageIndex reads the seed's decimal digits as one number and reduces it
// modulo imageCount, digit by digit so long seeds cannot overflow.
func imageIndex(seed string) int {
	n := 0
	for _, r := range seed {
		if r >= '0' && r <= '9' {
			n = (n*10 + int(r-'0')) % imageCount
		}
	}
	return n
}
