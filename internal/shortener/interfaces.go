package shortener

// MaxAttempts bounds the collision resolution loop.
const MaxAttempts = 10

// Config holds configuration for short code allocation
type Config struct {
	HashLength int `yaml:"hash_length" json:"hash_length"` // Number of hex characters kept from the digest
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		HashLength: 8,
	}
}

// Observer receives allocation events, typically to export metrics
type Observer interface {
	// ObserveAllocation is called once per successful Allocate call
	ObserveAllocation(attempts int, created bool)

	// ObserveCollision is called each time a candidate is held by a different URL
	ObserveCollision()

	// ObserveExhausted is called when every candidate was taken
	ObserveExhausted()
}

type nopObserver struct{}

func (nopObserver) ObserveAllocation(int, bool) {}
func (nopObserver) ObserveCollision()           {}
func (nopObserver) ObserveExhausted()           {}
