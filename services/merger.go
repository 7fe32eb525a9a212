package services

import (
	"regexp"
	"sort"
	"strings"

	"sreality-agents/models"
	"sreality-agents/utils"
)

// Cross-run merging. Independent crawls (or previously exported files read
// back) describe the same agent with noisy variations: formatted phone
// numbers, missing emails, diacritics typed or not. Merging is therefore
// deliberately looser than the in-crawl identity key. Records are connected
// when they share any one normalized signal (folded name, trailing nine
// phone digits, folded email), so a record missing its email still folds
// into the agent it names. The two identity schemes stay separate algorithms
// on purpose; one clean crawl must not over-merge, while merging across runs
// must tolerate noise.

var (
	agentIDRx     = regexp.MustCompile(`/(?:makleri|makler)/(\d+)`)
	trailingIDRx  = regexp.MustCompile(`/(\d+)(?:[/?#]|$)`)
	nonDigitRx    = regexp.MustCompile(`\D`)
	linkSplitRx   = regexp.MustCompile(`[,|\n]`)
	placeholderNA = "N/A"
)

// Merger combines aggregated agent records from independent sources into a
// single deduplicated list.
type Merger struct {
	logger *utils.Logger
}

// NewMerger creates a Merger with the given logger.
func NewMerger(logger *utils.Logger) *Merger {
	return &Merger{logger: logger}
}

type mergedAgent struct {
	record *models.AgentRecord

	links           *utils.OrderedSet
	specializations map[string]struct{}
	countSum        int
	linksComplete   bool // every contributor carried a link set
}

// Merge combines one or more record sets. Records sharing an identity
// signal are folded together: the first-seen record wins as base, empty
// contact fields are backfilled from later duplicates, link and
// specialization sets are re-unioned, and listing counts are summed, or
// replaced by the true link-union size when every duplicate carried links.
// Records with zero identity signal never merge.
func (m *Merger) Merge(sets ...[]*models.AgentRecord) []*models.AgentRecord {
	var records []*models.AgentRecord
	for _, set := range sets {
		records = append(records, set...)
	}

	// Connect records transitively: a phone-only record and an email-only
	// record still merge when a third record carries both.
	uf := newUnionFind(len(records))
	bySignal := make(map[string]int)
	for i, rec := range records {
		for _, sig := range identitySignals(rec) {
			if j, ok := bySignal[sig]; ok {
				uf.union(i, j)
			} else {
				bySignal[sig] = i
			}
		}
	}

	merged := make(map[int]*mergedAgent)
	var order []int
	for i, rec := range records {
		root := uf.find(i)

		agent, ok := merged[root]
		if !ok {
			base := *rec
			agent = &mergedAgent{
				record:          &base,
				links:           utils.NewOrderedSet(),
				specializations: make(map[string]struct{}),
				linksComplete:   true,
			}
			merged[root] = agent
			order = append(order, root)
		} else {
			backfill(agent.record, rec)
		}

		links := splitJoined(rec.Links)
		agent.links.AddAll(links...)
		if len(links) == 0 {
			agent.linksComplete = false
		}
		for _, spec := range splitJoined(rec.Specialization) {
			agent.specializations[spec] = struct{}{}
		}
		agent.countSum += rec.ListingCount
	}

	out := make([]*models.AgentRecord, 0, len(order))
	for _, root := range order {
		agent := merged[root]
		rec := agent.record
		rec.Links = strings.Join(agent.links.Values(), ", ")
		rec.Specialization = joinSortedSet(agent.specializations)
		if agent.linksComplete && agent.links.Len() > 0 {
			rec.ListingCount = agent.links.Len()
		} else {
			rec.ListingCount = agent.countSum
		}
		out = append(out, rec)
	}

	if m.logger != nil {
		m.logger.Info("[merge] %d records in → %d unique agents out", len(records), len(out))
	}
	return out
}

// identitySignals returns the normalized signals a record can merge on. The
// sentinel name carries no identity; a numeric agent id from the record's
// URLs is used only when no contact field normalizes to anything.
func identitySignals(rec *models.AgentRecord) []string {
	var sigs []string
	if rec.Name != models.UnknownAgentName {
		if name := utils.FoldText(clean(rec.Name)); name != "" {
			sigs = append(sigs, "n:"+name)
		}
	}
	if phone := normalizePhone(rec.Phone); phone != "" {
		sigs = append(sigs, "p:"+phone)
	}
	if email := utils.FoldText(clean(rec.Email)); email != "" {
		sigs = append(sigs, "e:"+email)
	}
	if len(sigs) == 0 {
		if id := agentIDFromURLs(rec.Links); id != "" {
			sigs = append(sigs, "id:"+id)
		}
	}
	return sigs
}

// unionFind is a plain disjoint-set over record indices. Union keeps the
// smaller index as root, so each group's root is its first-seen record.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	switch {
	case ra == rb:
	case ra < rb:
		u.parent[rb] = ra
	default:
		u.parent[ra] = rb
	}
}

// normalizePhone strips everything but digits and keeps the trailing nine,
// collapsing "+420 123 456 789" and "123456789" onto the same key.
func normalizePhone(phone string) string {
	digits := nonDigitRx.ReplaceAllString(clean(phone), "")
	if len(digits) > 9 {
		return digits[len(digits)-9:]
	}
	return digits
}

// agentIDFromURLs looks for a numeric agent identifier in any of the joined
// URLs: an agent-directory path segment first, then any trailing numeric
// path segment.
func agentIDFromURLs(joined string) string {
	for _, link := range splitJoined(joined) {
		if match := agentIDRx.FindStringSubmatch(link); match != nil {
			return match[1]
		}
	}
	for _, link := range splitJoined(joined) {
		if match := trailingIDRx.FindStringSubmatch(link); match != nil {
			return match[1]
		}
	}
	return ""
}

// backfill copies populated simple fields from src into dst where dst is
// empty. Set-like and numeric fields are handled by the caller.
func backfill(dst, src *models.AgentRecord) {
	if clean(dst.Phone) == "" {
		dst.Phone = src.Phone
	}
	if clean(dst.Email) == "" {
		dst.Email = src.Email
	}
	if clean(dst.Brokerage) == "" {
		dst.Brokerage = src.Brokerage
	}
	if clean(dst.Region) == "" {
		dst.Region = src.Region
	}
	if clean(dst.City) == "" {
		dst.City = src.City
	}
	if clean(dst.DetailText) == "" {
		dst.DetailText = src.DetailText
	}
	if clean(dst.Breakdown) == "" {
		dst.Breakdown = src.Breakdown
	}
	if clean(dst.Source) == "" {
		dst.Source = src.Source
	}
	nameless := clean(dst.Name) == "" || dst.Name == models.UnknownAgentName
	if nameless && clean(src.Name) != "" && src.Name != models.UnknownAgentName {
		dst.Name = src.Name
	}
}

// DedupeExact deduplicates records on exact field equality of
// (name, phone, email, brokerage), keeping the first occurrence. Used when
// one invocation runs several crawl combinations whose listings overlap.
func DedupeExact(records []*models.AgentRecord) []*models.AgentRecord {
	seen := make(map[string]struct{})
	out := make([]*models.AgentRecord, 0, len(records))
	for _, rec := range records {
		key := strings.Join([]string{rec.Name, rec.Phone, rec.Email, rec.Brokerage}, "|")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// SortByListingCount orders records by listing count descending, name
// ascending on ties. Purely a presentation concern for the export sinks.
func SortByListingCount(records []*models.AgentRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].ListingCount != records[j].ListingCount {
			return records[i].ListingCount > records[j].ListingCount
		}
		return records[i].Name < records[j].Name
	})
}

// clean treats the spreadsheet placeholder "N/A" as empty.
func clean(s string) string {
	s = strings.TrimSpace(s)
	if s == placeholderNA {
		return ""
	}
	return s
}

func splitJoined(joined string) []string {
	var parts []string
	for _, part := range linkSplitRx.Split(joined, -1) {
		part = strings.TrimSpace(part)
		if part != "" && part != placeholderNA {
			parts = append(parts, part)
		}
	}
	return parts
}

func joinSortedSet(set map[string]struct{}) string {
	values := make([]string, 0, len(set))
	for v := range set {
		values = append(values, v)
	}
	sort.Strings(values)
	return strings.Join(values, ", ")
}
