package sreality

import (
	"fmt"
	"sort"
	"strings"

	"sreality-agents/models"
	"sreality-agents/utils"
)

// Identity & aggregation. Within one crawl an agent is identified by exact
// field equality on (name, phone, email, brokerage). Two facts that agree on
// every populated field but differ in which fields are unset get different
// keys on purpose; fuzzy identity resolution is the merge engine's job
// (services.Merger), not this one's.

const keyPlaceholder = "-"

// IdentityKey is the exact deduplication key for a crawl. Unset components
// hold a fixed placeholder so that Go map equality does the right thing.
type IdentityKey struct {
	Name      string
	Phone     string
	Email     string
	Brokerage string
}

func newIdentityKey(f *models.AgentFacts) IdentityKey {
	return IdentityKey{
		Name:      orPlaceholder(f.Name),
		Phone:     orPlaceholder(f.Phone),
		Email:     orPlaceholder(f.Email),
		Brokerage: orPlaceholder(f.Brokerage),
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return keyPlaceholder
	}
	return s
}

// String renders the key for logging.
func (k IdentityKey) String() string {
	return strings.Join([]string{k.Name, k.Phone, k.Email, k.Brokerage}, "|")
}

// aggregate is the mutable per-key accumulator. It is never exposed outside
// the engine; Finalize flattens it into models.AgentRecord.
type aggregate struct {
	name      string
	phone     string
	email     string
	brokerage string
	region    string
	city      string

	specializations map[string]struct{}
	detailNotes     []string
	links           *utils.OrderedSet
	breakdown       map[breakdownKey]int
	listingCount    int
}

type breakdownKey struct {
	categoryMain int
	categoryType int
}

// Aggregator accumulates per-agent statistics across a paginated crawl.
// It is owned by a single Scraper run and is not safe for concurrent use;
// the crawl is strictly sequential.
type Aggregator struct {
	source string
	agents map[IdentityKey]*aggregate
	order  []IdentityKey
}

// NewAggregator creates an empty Aggregator tagging records with the given
// source label.
func NewAggregator(source string) *Aggregator {
	return &Aggregator{
		source: source,
		agents: make(map[IdentityKey]*aggregate),
	}
}

// Ingest folds one normalized listing into the per-agent accumulator.
func (a *Aggregator) Ingest(f *models.AgentFacts) {
	key := newIdentityKey(f)

	agg, ok := a.agents[key]
	if !ok {
		agg = &aggregate{
			name:      f.Name,
			phone:     f.Phone,
			email:     f.Email,
			brokerage: f.Brokerage,
			// Region and city come from the first contributing listing
			// only and are never overwritten.
			region:          f.Region,
			city:            f.City,
			specializations: make(map[string]struct{}),
			links:           utils.NewOrderedSet(),
			breakdown:       make(map[breakdownKey]int),
		}
		a.agents[key] = agg
		a.order = append(a.order, key)
	}

	agg.listingCount++
	if f.Specialization != "" {
		agg.specializations[f.Specialization] = struct{}{}
	}
	if f.DetailText != "" {
		agg.detailNotes = append(agg.detailNotes, f.DetailText)
	}
	agg.links.Add(f.ListingURL)
	if f.CategoryMain != 0 || f.CategoryType != 0 {
		agg.breakdown[breakdownKey{f.CategoryMain, f.CategoryType}]++
	}
}

// Size returns the number of distinct identity keys seen so far.
func (a *Aggregator) Size() int {
	return len(a.agents)
}

// Finalize flattens the accumulators into flat export records, in first-seen
// key order. Callers wanting a presentation order (listing count descending)
// sort the result themselves.
func (a *Aggregator) Finalize() []*models.AgentRecord {
	records := make([]*models.AgentRecord, 0, len(a.order))
	for _, key := range a.order {
		agg := a.agents[key]
		records = append(records, &models.AgentRecord{
			Source:         a.source,
			Name:           agg.name,
			Phone:          agg.phone,
			Email:          agg.email,
			Brokerage:      agg.brokerage,
			Region:         agg.region,
			City:           agg.city,
			Specialization: joinSorted(agg.specializations),
			DetailText:     strings.Join(agg.detailNotes, " | "),
			Links:          strings.Join(agg.links.Values(), ", "),
			Breakdown:      formatBreakdown(agg.breakdown),
			ListingCount:   agg.listingCount,
		})
	}
	return records
}

func joinSorted(set map[string]struct{}) string {
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return strings.Join(values, ", ")
}

// formatBreakdown renders "Byty/Prodej: 12, Domy/Prodej: 3", most frequent
// first, ties in taxonomy-code order.
func formatBreakdown(breakdown map[breakdownKey]int) string {
	type entry struct {
		key   breakdownKey
		count int
	}
	entries := make([]entry, 0, len(breakdown))
	for k, c := range breakdown {
		entries = append(entries, entry{k, c})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		if entries[i].key.categoryMain != entries[j].key.categoryMain {
			return entries[i].key.categoryMain < entries[j].key.categoryMain
		}
		return entries[i].key.categoryType < entries[j].key.categoryType
	})

	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		label := specialization(e.key.categoryMain, e.key.categoryType)
		if label == "" {
			label = fmt.Sprintf("Kategorie %d/%d", e.key.categoryMain, e.key.categoryType)
		}
		parts = append(parts, fmt.Sprintf("%s: %d", label, e.count))
	}
	return strings.Join(parts, ", ")
}
