package storage

import "sreality-agents/models"

// AgentWriter is the interface any export sink must satisfy. Writers receive
// records already ordered for presentation.
type AgentWriter interface {
	Write(records []*models.AgentRecord) error
	Close() error
}

// columns is the canonical flat-record column order shared by every sink.
var columns = []string{
	"source", "name", "phone", "email", "brokerage", "region", "city",
	"specialization", "detail_text", "links", "listing_count", "breakdown",
}
