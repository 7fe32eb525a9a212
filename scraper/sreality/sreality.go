// Package sreality crawls the Sreality.cz listing API and aggregates
// real-estate agent contact records out of the listings it finds.
package sreality

import (
	"fmt"
	"strconv"

	"sreality-agents/config"
	"sreality-agents/models"
	"sreality-agents/utils"
)

const (
	// SourceName labels every exported record.
	SourceName = "Sreality.cz"

	apiPath = "/api/cs/v2/estates"
	perPage = 60
)

// Params describes one crawl combination.
type Params struct {
	CategoryMain int  // property type, 1-5
	CategoryType int  // offer type, 1-3
	Region       int  // locality_region_id 10-23, 0 = whole country
	MaxPages     int  // 0 = unbounded
	FetchDetails bool // fetch per-listing detail responses for richer contacts
}

// Describe renders the combination for logs.
func (p Params) Describe() string {
	region := "celá ČR"
	if name, ok := RegionNames[p.Region]; ok {
		region = name
	}
	return fmt.Sprintf("%s/%s, %s",
		CategoryNames[p.CategoryMain], OfferNames[p.CategoryType], region)
}

// Result is the outcome of one crawl. Warnings are degraded-but-continuable
// conditions; Errors mean the page walk was aborted early. Records already
// aggregated before an abort are always kept.
type Result struct {
	Records  []*models.AgentRecord
	Warnings []string
	Errors   []string
	Pages    int
	Listings int
}

// Scraper walks the paginated listing endpoint for one or more parameter
// combinations. A Scraper is single-threaded by design: requests must be
// spaced out, so there is nothing to gain from crawling pages in parallel
// and a real chance of getting blocked.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	fetch  Fetcher
}

// New creates a Scraper using the real HTTP client.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{cfg: cfg, logger: logger, fetch: NewClient(cfg, logger)}
}

// NewWithFetcher creates a Scraper with a custom transport collaborator.
func NewWithFetcher(cfg *config.Config, logger *utils.Logger, fetch Fetcher) *Scraper {
	return &Scraper{cfg: cfg, logger: logger, fetch: fetch}
}

func (s *Scraper) apiURL() string {
	return s.cfg.BaseURL + apiPath
}

// Scrape runs one full page walk and returns the finalized agent records.
func (s *Scraper) Scrape(p Params) *Result {
	result := &Result{}
	agg := NewAggregator(SourceName)

	s.logger.Info("[sreality] Crawl start — %s, max pages: %s, details: %v",
		p.Describe(), pageCap(p.MaxPages), p.FetchDetails)

	page := 1
	fetched := 0

	for {
		if p.MaxPages > 0 && page > p.MaxPages {
			s.logger.Info("[sreality] Page cap %d reached", p.MaxPages)
			break
		}

		payload := s.fetch.FetchJSON(s.apiURL(), s.pageQuery(p, page))
		if payload == nil {
			// Transport failure: abort the rest of the walk, keep what
			// was aggregated so far.
			result.Errors = append(result.Errors,
				fmt.Sprintf("page %d fetch failed — walk aborted (possible block)", page))
			break
		}

		estates := childList(payload, "_embedded", "estates")
		if len(estates) == 0 {
			s.logger.Info("[sreality] Page %d empty — listings exhausted", page)
			break
		}

		result.Pages++
		s.logger.Info("[sreality] Page %d: %d listings", page, len(estates))

		for _, raw := range estates {
			summary := asObject(raw)
			if summary == nil {
				continue
			}

			detail := summary
			if p.FetchDetails {
				detail = s.fetchDetail(summary, result)
			}

			facts := extractFacts(s.cfg.BaseURL, detail, summary)
			if facts.CategoryMain == 0 {
				facts.CategoryMain = p.CategoryMain
			}
			if facts.CategoryType == 0 {
				facts.CategoryType = p.CategoryType
			}
			if facts.Specialization == "" {
				facts.Specialization = specialization(facts.CategoryMain, facts.CategoryType)
			}
			agg.Ingest(facts)
		}
		fetched += len(estates)
		result.Listings = fetched

		resultSize := asInt(payload["result_size"])
		if resultSize > 0 && fetched >= resultSize {
			s.logger.Info("[sreality] All %d listings fetched", resultSize)
			break
		}

		page++
	}

	result.Records = agg.Finalize()
	s.logger.Info("[sreality] Crawl done — %d listings across %d pages, %d distinct agents",
		result.Listings, result.Pages, len(result.Records))
	return result
}

func (s *Scraper) pageQuery(p Params, page int) map[string]string {
	query := map[string]string{
		"category_main_cb": strconv.Itoa(p.CategoryMain),
		"category_type_cb": strconv.Itoa(p.CategoryType),
		"page":             strconv.Itoa(page),
		"per_page":         strconv.Itoa(perPage),
	}
	if p.Region != 0 {
		query["locality_region_id"] = strconv.Itoa(p.Region)
	}
	return query
}

// fetchDetail pulls the detail response for one listing. Detail payloads
// carry nested contact arrays the summary rows lack. On failure the summary
// payload is used instead and a warning is recorded; a missing detail must
// not drop the listing from the counts.
func (s *Scraper) fetchDetail(summary map[string]any, result *Result) map[string]any {
	hashID := stringField(summary, "hash_id", "hashId")
	if hashID == "" {
		return summary
	}

	detail := s.fetch.FetchJSON(s.apiURL()+"/"+hashID, nil)
	if detail == nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("detail fetch failed for listing %s — using summary fields", hashID))
		return summary
	}
	return detail
}

func pageCap(maxPages int) string {
	if maxPages <= 0 {
		return "unbounded"
	}
	return strconv.Itoa(maxPages)
}
