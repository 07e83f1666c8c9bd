package shortener

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Candidate returns the short code tried at the given attempt for url.
// Attempt 0 hashes the URL alone; later attempts append the decimal attempt
// number before hashing. length is clamped to the hex digest size.
func Candidate(url string, attempt, length int) string {
	input := url
	if attempt > 0 {
		input += strconv.Itoa(attempt)
	}

	sum := sha256.Sum256([]byte(input))
	digest := hex.EncodeToString(sum[:])

	if length > len(digest) {
		length = len(digest)
	}
	if length < 0 {
		length = 0
	}
	return digest[:length]
}
