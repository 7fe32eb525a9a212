package sreality

import (
	"strings"
	"testing"

	"sreality-agents/config"
	"sreality-agents/utils"
)

// fakeFetcher serves canned page and detail payloads. A page request carries
// a query; a detail request does not, and its listing id is the last path
// segment.
type fakeFetcher struct {
	pages   map[string]map[string]any
	details map[string]map[string]any

	pageCalls   int
	detailCalls int
}

func (f *fakeFetcher) FetchJSON(rawURL string, query map[string]string) map[string]any {
	if query == nil {
		f.detailCalls++
		id := rawURL[strings.LastIndex(rawURL, "/")+1:]
		return f.details[id]
	}
	f.pageCalls++
	return f.pages[query["page"]]
}

func testScraper(fetch Fetcher) *Scraper {
	cfg := &config.Config{BaseURL: "https://www.sreality.cz"}
	logger := utils.NewLogger()
	logger.SetQuiet(true)
	return NewWithFetcher(cfg, logger, fetch)
}

func estate(hashID float64, seller map[string]any) map[string]any {
	return map[string]any{
		"name":     "Prodej bytu 2+kk",
		"locality": "Praha",
		"hash_id":  hashID,
		"_embedded": map[string]any{
			"seller": seller,
		},
	}
}

func page(resultSize int, estates ...any) map[string]any {
	return map[string]any{
		"result_size": float64(resultSize),
		"_embedded":   map[string]any{"estates": estates},
	}
}

func TestScrapeStopsOnEmptyPage(t *testing.T) {
	fetch := &fakeFetcher{
		pages: map[string]map[string]any{
			"1": page(100,
				estate(1, map[string]any{"user_name": "Jana Nováková"}),
				estate(2, map[string]any{"user_name": "Petr Svoboda"}),
			),
			"2": page(100),
		},
	}
	result := testScraper(fetch).Scrape(Params{CategoryMain: 1, CategoryType: 1})

	if len(result.Errors) != 0 {
		t.Fatalf("Errors = %v", result.Errors)
	}
	if result.Pages != 1 {
		t.Errorf("Pages = %d, want 1", result.Pages)
	}
	if result.Listings != 2 {
		t.Errorf("Listings = %d, want 2", result.Listings)
	}
	if len(result.Records) != 2 {
		t.Errorf("Records = %d, want 2", len(result.Records))
	}
	if fetch.pageCalls != 2 {
		t.Errorf("pageCalls = %d, want 2", fetch.pageCalls)
	}
}

func TestScrapeStopsAtResultSize(t *testing.T) {
	fetch := &fakeFetcher{
		pages: map[string]map[string]any{
			"1": page(1, estate(1, map[string]any{"user_name": "Jana Nováková"})),
		},
	}
	result := testScraper(fetch).Scrape(Params{CategoryMain: 1, CategoryType: 1})

	if fetch.pageCalls != 1 {
		t.Errorf("pageCalls = %d, want 1 (result_size reached)", fetch.pageCalls)
	}
	if result.Listings != 1 {
		t.Errorf("Listings = %d, want 1", result.Listings)
	}
}

func TestScrapeHonorsPageCap(t *testing.T) {
	fetch := &fakeFetcher{
		pages: map[string]map[string]any{
			"1": page(500, estate(1, map[string]any{"user_name": "A"})),
			"2": page(500, estate(2, map[string]any{"user_name": "B"})),
		},
	}
	result := testScraper(fetch).Scrape(Params{CategoryMain: 1, CategoryType: 1, MaxPages: 1})

	if fetch.pageCalls != 1 {
		t.Errorf("pageCalls = %d, want 1", fetch.pageCalls)
	}
	if result.Pages != 1 {
		t.Errorf("Pages = %d, want 1", result.Pages)
	}
}

func TestScrapeAbortsOnPageFailure(t *testing.T) {
	fetch := &fakeFetcher{
		pages: map[string]map[string]any{
			"1": page(500, estate(1, map[string]any{"user_name": "Jana Nováková"})),
			// page 2 missing: the fetcher returns nil
		},
	}
	result := testScraper(fetch).Scrape(Params{CategoryMain: 1, CategoryType: 1})

	if len(result.Errors) != 1 {
		t.Fatalf("Errors = %v, want one abort error", result.Errors)
	}
	// Records aggregated before the failure are kept.
	if len(result.Records) != 1 {
		t.Errorf("Records = %d, want 1", len(result.Records))
	}
}

func TestScrapeDetailFallsBackToSummary(t *testing.T) {
	fetch := &fakeFetcher{
		pages: map[string]map[string]any{
			"1": page(1, estate(42, map[string]any{
				"user_name": "Jana Nováková",
				"phone":     "777123456",
			})),
		},
		// no detail payload for 42: fetch returns nil
	}
	result := testScraper(fetch).Scrape(Params{CategoryMain: 1, CategoryType: 1, FetchDetails: true})

	if fetch.detailCalls != 1 {
		t.Errorf("detailCalls = %d, want 1", fetch.detailCalls)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want one detail warning", result.Warnings)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Errors = %v, want none (detail failure is not fatal)", result.Errors)
	}
	if len(result.Records) != 1 {
		t.Fatalf("Records = %d, want 1", len(result.Records))
	}
	if result.Records[0].Phone != "777123456" {
		t.Errorf("Phone = %q, want summary contact kept", result.Records[0].Phone)
	}
}

func TestScrapeUsesDetailContacts(t *testing.T) {
	fetch := &fakeFetcher{
		pages: map[string]map[string]any{
			"1": page(1, estate(42, nil)),
		},
		details: map[string]map[string]any{
			"42": {
				"_embedded": map[string]any{
					"seller": map[string]any{
						"user_name": "Jana Nováková",
						"email":     "jana@remax.cz",
					},
				},
			},
		},
	}
	result := testScraper(fetch).Scrape(Params{CategoryMain: 1, CategoryType: 1, FetchDetails: true})

	if len(result.Records) != 1 {
		t.Fatalf("Records = %d, want 1", len(result.Records))
	}
	rec := result.Records[0]
	if rec.Name != "Jana Nováková" || rec.Email != "jana@remax.cz" {
		t.Errorf("record = %q/%q, want detail contacts", rec.Name, rec.Email)
	}
}

func TestScrapeParamFallbackSpecialization(t *testing.T) {
	// Listings without taxonomy codes or a usable title inherit the crawl
	// parameters.
	summary := map[string]any{
		"hash_id": float64(7),
		"_embedded": map[string]any{
			"seller": map[string]any{"user_name": "Karel Dvořák"},
		},
	}
	fetch := &fakeFetcher{
		pages: map[string]map[string]any{
			"1": page(1, summary),
		},
	}
	result := testScraper(fetch).Scrape(Params{CategoryMain: 2, CategoryType: 2})

	if len(result.Records) != 1 {
		t.Fatalf("Records = %d, want 1", len(result.Records))
	}
	rec := result.Records[0]
	if rec.Specialization != "Domy/Pronájem" {
		t.Errorf("Specialization = %q, want params fallback", rec.Specialization)
	}
	if rec.Breakdown != "Domy/Pronájem: 1" {
		t.Errorf("Breakdown = %q", rec.Breakdown)
	}
}

func TestParamsDescribe(t *testing.T) {
	got := Params{CategoryMain: 1, CategoryType: 1, Region: 10}.Describe()
	if got != "Byty/Prodej, Praha" {
		t.Errorf("Describe = %q", got)
	}
	got = Params{CategoryMain: 3, CategoryType: 2}.Describe()
	if got != "Pozemky/Pronájem, celá ČR" {
		t.Errorf("Describe = %q", got)
	}
}
