package sreality

// Taxonomy codes used by the Sreality API. category_main_cb is the property
// type, category_type_cb the offer type, locality_region_id the region.

// CategoryNames maps property-type codes to display names.
var CategoryNames = map[int]string{
	1: "Byty",
	2: "Domy",
	3: "Pozemky",
	4: "Komerční",
	5: "Ostatní",
}

// OfferNames maps offer-type codes to display names.
var OfferNames = map[int]string{
	1: "Prodej",
	2: "Pronájem",
	3: "Dražby",
}

// RegionNames maps locality_region_id codes to region names.
var RegionNames = map[int]string{
	10: "Praha",
	11: "Středočeský",
	12: "Jihočeský",
	13: "Plzeňský",
	14: "Karlovarský",
	15: "Ústecký",
	16: "Liberecký",
	17: "Královéhradecký",
	18: "Pardubický",
	19: "Vysočina",
	20: "Jihomoravský",
	21: "Olomoucký",
	22: "Zlínský",
	23: "Moravskoslezský",
}

// URL path segments for constructed public detail links.
var (
	offerSegments = map[int]string{
		1: "prodej",
		2: "pronajem",
		3: "drazby",
	}
	propertySegments = map[int]string{
		1: "byt",
		2: "dum",
		3: "pozemek",
		4: "komercni",
		5: "ostatni",
	}
)

// specialization builds the short "Byty/Prodej" descriptor for a listing.
func specialization(categoryMain, categoryType int) string {
	cat, okCat := CategoryNames[categoryMain]
	typ, okTyp := OfferNames[categoryType]
	if !okCat || !okTyp {
		return ""
	}
	return cat + "/" + typ
}
