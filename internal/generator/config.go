package generator

// Config drives the synthetic link graph generator.
type Config struct {
	NumPages int
	MinLinks int
	MaxLinks int
	// ReciprocalChance is the probability that a link is mirrored by a link
	// back from its target.
	ReciprocalChance float64
	// OrgChance is the probability that a page is an organisation (studio,
	// label, company) rather than a person.
	OrgChance float64
	Seed      int64
}

// DefaultConfig returns baseline settings for a mid-sized demo graph.
func DefaultConfig() Config {
	return Config{
		NumPages:         2000,
		MinLinks:         2,
		MaxLinks:         12,
		ReciprocalChance: 0.3,
		OrgChance:        0.2,
		Seed:             42,
	}
}
