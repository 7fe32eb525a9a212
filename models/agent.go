package models

// UnknownAgentName tags records that carry no name, phone or email at all.
// Such listings still count toward aggregate totals and must never be dropped.
const UnknownAgentName = "unknown agent"

// AgentFacts is the normalized view of a single raw listing: the candidate
// contact fields extracted from whatever nested shape the API returned.
// Empty string means the field could not be recovered from the payload.
type AgentFacts struct {
	Name           string
	Phone          string
	Email          string
	Brokerage      string
	Region         string
	City           string
	Specialization string
	DetailText     string
	ListingURL     string

	// Taxonomy codes of the listing, used for the per-agent category
	// breakdown. Zero when the payload did not carry them.
	CategoryMain int
	CategoryType int
}

// AgentRecord is the flat, export-ready form of one aggregated agent.
// Set-like fields (Specializations, Links) are already joined to display
// strings; this is what every sink (CSV, XLSX, Postgres) consumes.
type AgentRecord struct {
	Source         string
	Name           string
	Phone          string
	Email          string
	Brokerage      string
	Region         string
	City           string
	Specialization string
	DetailText     string
	Links          string
	Breakdown      string
	ListingCount   int
}

// InsightReport holds the computed summary over one finished crawl or merge.
type InsightReport struct {
	TotalAgents    int
	TotalListings  int
	WithPhone      int
	WithEmail      int
	WithBoth       int
	TopAgents      []*AgentRecord
	AgentsByRegion map[string]int
}
