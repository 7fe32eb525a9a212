package sreality

import (
	"strings"

	"sreality-agents/models"
)

// Record normalization. The contact-bearing sub-object may live under a
// "seller", "broker" or "company" role inside _embedded, with the fields
// named differently per role and per API version. extractFacts is a pure
// function: any missing or malformed structure degrades the individual field
// to empty rather than failing the listing.

var (
	phoneKeySubs = []string{"phone", "tel", "mobil"}
	emailKeySubs = []string{"mail"}
)

// extractFacts normalizes one listing. detail is the payload the contact
// fields are read from (the detail response when fetched, the summary
// otherwise); summary is always the row from the listing page and supplies
// title, locality and taxonomy codes when the detail lacks them.
func extractFacts(base string, detail, summary map[string]any) *models.AgentFacts {
	if detail == nil {
		detail = summary
	}
	if summary == nil {
		summary = detail
	}
	if detail == nil {
		return &models.AgentFacts{Name: models.UnknownAgentName}
	}

	embedded := childMap(detail, "_embedded")
	seller := childMap(embedded, "seller")
	broker := childMap(embedded, "broker")
	company := childMap(embedded, "company")

	facts := &models.AgentFacts{}

	// Name priority: seller display name, seller short name, then the same
	// for broker. The company role carries no person name.
	facts.Name = stringField(seller, "user_name", "name")
	if facts.Name == "" {
		facts.Name = stringField(broker, "user_name", "name")
	}

	facts.Brokerage = brokerageName(seller, company)

	facts.Phone = firstByKeySubstring(detail, phoneKeySubs...)
	if facts.Phone == "" {
		facts.Phone = firstByKeySubstring(summary, phoneKeySubs...)
	}
	facts.Email = firstByKeySubstring(detail, emailKeySubs...)
	if facts.Email == "" {
		facts.Email = firstByKeySubstring(summary, emailKeySubs...)
	}

	locality := stringField(summary, "locality")
	if locality == "" {
		locality = stringField(detail, "locality")
	}
	facts.City, facts.Region = splitLocality(locality)

	facts.CategoryMain, facts.CategoryType = taxonomyCodes(summary)
	if facts.CategoryMain == 0 && facts.CategoryType == 0 {
		facts.CategoryMain, facts.CategoryType = taxonomyCodes(detail)
	}

	facts.Specialization = specialization(facts.CategoryMain, facts.CategoryType)
	if facts.Specialization == "" {
		facts.Specialization = stringField(summary, "name_disposition", "name")
	}

	facts.DetailText = stringField(summary, "name")
	if facts.DetailText == "" {
		facts.DetailText = stringField(detail, "name")
	}

	facts.ListingURL = resolveListingURL(base, detail)
	if facts.ListingURL == "" {
		facts.ListingURL = resolveListingURL(base, summary)
	}

	// A record with no contact signal at all is still kept; dropping it
	// would silently shrink the aggregate listing counts.
	if facts.Name == "" {
		facts.Name = models.UnknownAgentName
	}

	return facts
}

// brokerageName resolves the agency name: the seller's embedded company
// name first, then the seller's organization, then the top-level company
// role.
func brokerageName(seller, company map[string]any) string {
	if name := stringField(seller, "company_name"); name != "" {
		return name
	}
	if name := stringField(childMap(seller, "company"), "name"); name != "" {
		return name
	}
	if name := stringField(childMap(seller, "organization"), "name"); name != "" {
		return name
	}
	return stringField(company, "name", "company_name")
}

// splitLocality splits a free-text locality on commas. One segment is a
// city; with two or more, the first is the city and the last the region.
func splitLocality(locality string) (city, region string) {
	var parts []string
	for _, part := range strings.Split(locality, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	switch {
	case len(parts) == 0:
		return "", ""
	case len(parts) == 1:
		return parts[0], ""
	default:
		return parts[0], parts[len(parts)-1]
	}
}

// taxonomyCodes reads the listing's property-type and offer-type codes from
// its seo block, falling back to the top level.
func taxonomyCodes(data map[string]any) (categoryMain, categoryType int) {
	if data == nil {
		return 0, 0
	}
	seo := childMap(data, "seo")
	categoryMain = asInt(valueOf(seo, data, "category_main_cb"))
	categoryType = asInt(valueOf(seo, data, "category_type_cb"))
	return categoryMain, categoryType
}
