package sreality

import (
	"testing"

	"sreality-agents/models"
)

func TestExtractFactsFullDetail(t *testing.T) {
	detail := map[string]any{
		"name":     "Prodej bytu 3+kk 78 m²",
		"locality": "Milevská, Praha 4, Hlavní město Praha",
		"_embedded": map[string]any{
			"seller": map[string]any{
				"user_name":    "Jana Nováková",
				"company_name": "RE/MAX Alfa",
				"phones": []any{
					map[string]any{"number": "+420 777 123 456"},
				},
				"email": "jana.novakova@remax.cz",
			},
		},
		"seo": map[string]any{
			"category_main_cb": float64(1),
			"category_type_cb": float64(1),
			"locality":         "praha-praha-4-milevska",
		},
		"hash_id": float64(822296156),
	}
	summary := map[string]any{
		"name":     "Prodej bytu 3+kk 78 m²",
		"locality": "Milevská, Praha 4, Hlavní město Praha",
		"hash_id":  float64(822296156),
	}

	facts := extractFacts(testBase, detail, summary)

	if facts.Name != "Jana Nováková" {
		t.Errorf("Name = %q", facts.Name)
	}
	if facts.Phone != "+420 777 123 456" {
		t.Errorf("Phone = %q", facts.Phone)
	}
	if facts.Email != "jana.novakova@remax.cz" {
		t.Errorf("Email = %q", facts.Email)
	}
	if facts.Brokerage != "RE/MAX Alfa" {
		t.Errorf("Brokerage = %q", facts.Brokerage)
	}
	if facts.City != "Milevská" {
		t.Errorf("City = %q", facts.City)
	}
	if facts.Region != "Hlavní město Praha" {
		t.Errorf("Region = %q", facts.Region)
	}
	if facts.Specialization != "Byty/Prodej" {
		t.Errorf("Specialization = %q", facts.Specialization)
	}
	if facts.ListingURL == "" {
		t.Error("ListingURL is empty")
	}
}

func TestExtractFactsRolePriority(t *testing.T) {
	detail := map[string]any{
		"_embedded": map[string]any{
			"seller": map[string]any{"user_name": "Petr Svoboda"},
			"broker": map[string]any{"user_name": "Ignored Broker"},
		},
	}
	facts := extractFacts(testBase, detail, nil)
	if facts.Name != "Petr Svoboda" {
		t.Errorf("Name = %q, want seller over broker", facts.Name)
	}
}

func TestExtractFactsBrokerFallback(t *testing.T) {
	detail := map[string]any{
		"_embedded": map[string]any{
			"broker": map[string]any{"name": "Karel Dvořák"},
			"company": map[string]any{
				"name": "M&M Reality",
			},
		},
	}
	facts := extractFacts(testBase, detail, nil)
	if facts.Name != "Karel Dvořák" {
		t.Errorf("Name = %q", facts.Name)
	}
	if facts.Brokerage != "M&M Reality" {
		t.Errorf("Brokerage = %q", facts.Brokerage)
	}
}

func TestExtractFactsSellerOrganization(t *testing.T) {
	detail := map[string]any{
		"_embedded": map[string]any{
			"seller": map[string]any{
				"user_name":    "Eva Malá",
				"organization": map[string]any{"name": "Century 21 Best"},
			},
		},
	}
	facts := extractFacts(testBase, detail, nil)
	if facts.Brokerage != "Century 21 Best" {
		t.Errorf("Brokerage = %q", facts.Brokerage)
	}
}

func TestExtractFactsContactShapes(t *testing.T) {
	tests := []struct {
		name      string
		seller    map[string]any
		wantPhone string
		wantEmail string
	}{
		{
			"bare strings",
			map[string]any{"phone": "777111222", "email": "a@b.cz"},
			"777111222", "a@b.cz",
		},
		{
			"wrapped objects",
			map[string]any{
				"telefon": map[string]any{"value": "602 333 444"},
				"emails":  []any{map[string]any{"email": "x@y.cz"}},
			},
			"602 333 444", "x@y.cz",
		},
		{
			"numeric phone",
			map[string]any{"mobil": float64(608111222)},
			"608111222", "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			detail := map[string]any{
				"_embedded": map[string]any{"seller": tt.seller},
			}
			facts := extractFacts(testBase, detail, nil)
			if facts.Phone != tt.wantPhone {
				t.Errorf("Phone = %q, want %q", facts.Phone, tt.wantPhone)
			}
			if facts.Email != tt.wantEmail {
				t.Errorf("Email = %q, want %q", facts.Email, tt.wantEmail)
			}
		})
	}
}

func TestExtractFactsContactFallsBackToSummary(t *testing.T) {
	detail := map[string]any{
		"_embedded": map[string]any{
			"seller": map[string]any{"user_name": "Jan Novák"},
		},
	}
	summary := map[string]any{
		"phone": "605 000 111",
	}
	facts := extractFacts(testBase, detail, summary)
	if facts.Phone != "605 000 111" {
		t.Errorf("Phone = %q, want summary fallback", facts.Phone)
	}
}

func TestExtractFactsSentinelName(t *testing.T) {
	facts := extractFacts(testBase, map[string]any{"price": float64(100)}, nil)
	if facts.Name != models.UnknownAgentName {
		t.Errorf("Name = %q, want %q", facts.Name, models.UnknownAgentName)
	}

	facts = extractFacts(testBase, nil, nil)
	if facts.Name != models.UnknownAgentName {
		t.Errorf("Name = %q on nil payloads, want %q", facts.Name, models.UnknownAgentName)
	}
}

func TestExtractFactsSpecializationFallback(t *testing.T) {
	// No taxonomy codes anywhere: fall back to the summary's disposition
	// or title text.
	summary := map[string]any{
		"name_disposition": "3+1",
	}
	facts := extractFacts(testBase, nil, summary)
	if facts.Specialization != "3+1" {
		t.Errorf("Specialization = %q", facts.Specialization)
	}
}

func TestExtractFactsIsPure(t *testing.T) {
	detail := map[string]any{
		"name":     "Prodej bytu 2+kk",
		"locality": "Brno, Jihomoravský kraj",
		"_embedded": map[string]any{
			"seller": map[string]any{
				"user_name": "Jan Novák",
				"phone":     "777123456",
			},
		},
	}

	first := extractFacts(testBase, detail, detail)
	second := extractFacts(testBase, detail, detail)
	if *first != *second {
		t.Errorf("repeated extraction differs: %+v vs %+v", first, second)
	}
}

func TestSplitLocality(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantCity   string
		wantRegion string
	}{
		{"empty", "", "", ""},
		{"single segment", "Kladno", "Kladno", ""},
		{"two segments", "Brno, Jihomoravský kraj", "Brno", "Jihomoravský kraj"},
		{"three segments", "Milevská, Praha 4, Hlavní město Praha", "Milevská", "Hlavní město Praha"},
		{"blank segments skipped", " , Olomouc , ", "Olomouc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, region := splitLocality(tt.input)
			if city != tt.wantCity || region != tt.wantRegion {
				t.Errorf("splitLocality(%q) = (%q, %q), want (%q, %q)",
					tt.input, city, region, tt.wantCity, tt.wantRegion)
			}
		})
	}
}

func TestTaxonomyCodesTopLevelFallback(t *testing.T) {
	data := map[string]any{
		"category_main_cb": float64(2),
		"category_type_cb": float64(3),
	}
	main, typ := taxonomyCodes(data)
	if main != 2 || typ != 3 {
		t.Errorf("taxonomyCodes = (%d, %d), want (2, 3)", main, typ)
	}
}
