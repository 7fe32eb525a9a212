package sreality

import (
	"testing"

	"sreality-agents/models"
)

func facts(name, phone, email, brokerage string) *models.AgentFacts {
	return &models.AgentFacts{Name: name, Phone: phone, Email: email, Brokerage: brokerage}
}

func TestAggregatorFoldsSameIdentity(t *testing.T) {
	agg := NewAggregator(SourceName)

	first := facts("Jana Nováková", "777123456", "jana@remax.cz", "RE/MAX Alfa")
	first.Region = "Hlavní město Praha"
	first.City = "Praha 4"
	first.Specialization = "Byty/Prodej"
	first.DetailText = "Prodej bytu 2+kk"
	first.ListingURL = "https://www.sreality.cz/detail/prodej/byt/praha/1"
	first.CategoryMain, first.CategoryType = 1, 1

	second := facts("Jana Nováková", "777123456", "jana@remax.cz", "RE/MAX Alfa")
	second.Region = "Jihomoravský kraj" // later locality must not win
	second.City = "Brno"
	second.Specialization = "Domy/Prodej"
	second.DetailText = "Prodej domu"
	second.ListingURL = "https://www.sreality.cz/detail/prodej/dum/brno/2"
	second.CategoryMain, second.CategoryType = 2, 1

	agg.Ingest(first)
	agg.Ingest(second)
	agg.Ingest(second) // same listing seen again

	records := agg.Finalize()
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]

	if rec.ListingCount != 3 {
		t.Errorf("ListingCount = %d, want 3", rec.ListingCount)
	}
	if rec.Region != "Hlavní město Praha" || rec.City != "Praha 4" {
		t.Errorf("locality = %q/%q, want first-seen values", rec.City, rec.Region)
	}
	if rec.Specialization != "Byty/Prodej, Domy/Prodej" {
		t.Errorf("Specialization = %q", rec.Specialization)
	}
	if rec.Links != "https://www.sreality.cz/detail/prodej/byt/praha/1, https://www.sreality.cz/detail/prodej/dum/brno/2" {
		t.Errorf("Links = %q, want deduplicated first-seen order", rec.Links)
	}
	if rec.Breakdown != "Domy/Prodej: 2, Byty/Prodej: 1" {
		t.Errorf("Breakdown = %q", rec.Breakdown)
	}
	if rec.Source != SourceName {
		t.Errorf("Source = %q", rec.Source)
	}
}

func TestAggregatorSeparatesUnsetPatterns(t *testing.T) {
	agg := NewAggregator(SourceName)

	// Same name and brokerage; one has a phone, the other does not. These
	// are different keys: an unset field is not a wildcard.
	agg.Ingest(facts("Petr Svoboda", "602111222", "", "Broker s.r.o."))
	agg.Ingest(facts("Petr Svoboda", "", "", "Broker s.r.o."))

	if agg.Size() != 2 {
		t.Errorf("Size = %d, want 2 distinct identities", agg.Size())
	}
}

func TestAggregatorFinalizeOrder(t *testing.T) {
	agg := NewAggregator(SourceName)
	agg.Ingest(facts("B Agent", "", "", ""))
	agg.Ingest(facts("A Agent", "", "", ""))
	agg.Ingest(facts("B Agent", "", "", ""))

	records := agg.Finalize()
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Name != "B Agent" || records[1].Name != "A Agent" {
		t.Errorf("order = %q, %q; want first-seen order", records[0].Name, records[1].Name)
	}
}

func TestAggregatorSkipsEmptyValues(t *testing.T) {
	agg := NewAggregator(SourceName)
	f := facts("Eva Malá", "", "", "")
	f.ListingURL = ""
	f.Specialization = ""
	f.DetailText = ""
	agg.Ingest(f)

	rec := agg.Finalize()[0]
	if rec.Links != "" {
		t.Errorf("Links = %q, want empty", rec.Links)
	}
	if rec.Specialization != "" {
		t.Errorf("Specialization = %q, want empty", rec.Specialization)
	}
	if rec.Breakdown != "" {
		t.Errorf("Breakdown = %q, want empty", rec.Breakdown)
	}
	if rec.ListingCount != 1 {
		t.Errorf("ListingCount = %d, want 1", rec.ListingCount)
	}
}

func TestIdentityKeyString(t *testing.T) {
	key := newIdentityKey(facts("Jan Novák", "", "jan@seznam.cz", ""))
	want := "Jan Novák|-|jan@seznam.cz|-"
	if got := key.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
