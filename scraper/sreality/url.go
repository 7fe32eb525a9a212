package sreality

import (
	"net/url"
	"regexp"
	"strings"

	"sreality-agents/utils"
)

// Public-URL recovery. The API rarely hands back a ready-to-use link to the
// public listing page; depending on API version and summary-vs-detail shape
// the URL may sit in a named field, be buried somewhere in the object graph,
// or have to be rebuilt from taxonomy codes. The resolver tries each source
// in order and short-circuits on the first candidate that validates.

var (
	// priorityURLKeys are checked first, at the top level of the payload.
	priorityURLKeys = []string{
		"canonical", "url", "detail_url", "detailUrl", "permalink",
		"public_url", "publicUrl", "canonicalUrl", "canonical_url",
	}
	// nestedURLKeys hold sub-objects that commonly wrap share/SEO links.
	nestedURLKeys = []string{
		"seo", "_links", "links", "share", "share_links", "shareLinks",
		"social_sharing", "socialSharing",
	}

	// dispositionRx matches flat-layout tokens like "2+kk" or "3+1" inside
	// a listing title.
	dispositionRx = regexp.MustCompile(`\d\+(?:kk|\d)`)

	nonAlnumRx  = regexp.MustCompile(`[^a-z0-9]+`)
	multiDashRx = regexp.MustCompile(`-+`)
)

// slugify turns free-text locality into a URL path token: diacritics
// stripped, lower-cased, non-alphanumeric runs collapsed to single hyphens.
// Numeric parts ("Praha 4") are kept; the public site keeps them too.
func slugify(value string) string {
	ascii := strings.ToLower(utils.StripDiacritics(strings.TrimSpace(value)))
	ascii = nonAlnumRx.ReplaceAllString(ascii, "-")
	ascii = multiDashRx.ReplaceAllString(ascii, "-")
	return strings.Trim(ascii, "-")
}

// normalizeCandidate turns a raw URL-ish string into a validated public
// listing URL, or "" when the candidate cannot serve as one. Accepted URLs
// use the site's public hostname, contain a /detail/ path segment and do not
// point at the internal API.
func normalizeCandidate(base, raw string) string {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return ""
	}

	if strings.HasPrefix(candidate, "//") {
		candidate = "https:" + candidate
	}
	if strings.HasPrefix(candidate, "detail/") {
		candidate = "/" + candidate
	}
	if strings.HasPrefix(candidate, "/") {
		candidate = strings.TrimRight(base, "/") + candidate
	}
	if !strings.HasPrefix(candidate, "http") {
		return ""
	}

	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Hostname() == "" {
		return ""
	}
	if !strings.HasSuffix(parsed.Hostname(), publicHostSuffix(base)) {
		return ""
	}
	if strings.Contains(candidate, "/api/") || strings.Contains(candidate, "/cs/v2/estates") {
		return ""
	}
	if !strings.Contains(candidate, "/detail/") {
		return ""
	}
	return candidate
}

// publicHostSuffix derives the acceptable hostname suffix from the base URL
// ("https://www.sreality.cz" → "sreality.cz").
func publicHostSuffix(base string) string {
	parsed, err := url.Parse(base)
	if err != nil || parsed.Hostname() == "" {
		return "sreality.cz"
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}

// findURL depth-first scans an arbitrary value for the first string that
// normalizes to a valid public listing URL.
func findURL(base string, v any) string {
	switch t := v.(type) {
	case string:
		return normalizeCandidate(base, t)
	case map[string]any:
		for _, k := range sortedKeys(t) {
			if u := findURL(base, t[k]); u != "" {
				return u
			}
		}
	case []any:
		for _, item := range t {
			if u := findURL(base, item); u != "" {
				return u
			}
		}
	}
	return ""
}

// listingID recovers the listing identifier, preferring SEO ids over the
// raw hash id.
func listingID(data map[string]any) string {
	if data == nil {
		return ""
	}
	if seo := childMap(data, "seo"); seo != nil {
		if id := stringField(seo, "seoId", "seo_id"); id != "" {
			return id
		}
	}
	return stringField(data, "seoId", "seo_id", "hash_id", "hashId")
}

// resolveListingURL derives a stable public URL for a listing, trying in
// order: explicit URL fields, nested link structures, a full object-graph
// scan, a path constructed from taxonomy codes, a path spliced from legacy
// pre-joined fragments, and finally an identifier-only path.
func resolveListingURL(base string, data map[string]any) string {
	if data == nil {
		return ""
	}

	for _, key := range priorityURLKeys {
		if u := findURL(base, data[key]); u != "" {
			return u
		}
	}
	for _, key := range nestedURLKeys {
		if u := findURL(base, data[key]); u != "" {
			return u
		}
	}
	if u := findURL(base, data); u != "" {
		return u
	}

	if u := constructedURL(base, data); u != "" {
		return u
	}
	if u := legacyURL(base, data); u != "" {
		return u
	}

	if id := listingID(data); id != "" {
		return normalizeCandidate(base, "detail/"+id)
	}
	return ""
}

// constructedURL builds detail/<offer>/<property>/[<disposition>/]<locality>/<id>
// from the new-style taxonomy codes. The path is accepted only when at least
// four segments beyond "detail" could be assembled.
func constructedURL(base string, data map[string]any) string {
	seo := childMap(data, "seo")

	offerCode := asInt(valueOf(seo, data, "category_type_cb"))
	propertyCode := asInt(valueOf(seo, data, "category_main_cb"))

	offerSeg, okOffer := offerSegments[offerCode]
	propertySeg, okProperty := propertySegments[propertyCode]
	if !okOffer || !okProperty {
		return ""
	}

	parts := []string{offerSeg, propertySeg}
	if disp := dispositionRx.FindString(asString(data["name"])); disp != "" {
		parts = append(parts, disp)
	}

	locality := ""
	if seo != nil {
		locality = slugify(stringField(seo, "locality"))
	}
	if locality == "" {
		locality = slugify(stringField(data, "locality"))
	}
	if locality != "" {
		parts = append(parts, locality)
	}

	id := listingID(data)
	if id != "" {
		parts = append(parts, id)
	}

	if len(parts) < 4 {
		return ""
	}
	return normalizeCandidate(base, "detail/"+strings.Join(parts, "/"))
}

// legacyURL splices detail/<category-fragments>/<locality-fragments>/<id>
// from the old-style pre-joined path fields.
func legacyURL(base string, data map[string]any) string {
	seo := childMap(data, "seo")

	categoryURL := asString(valueOf(seo, data, "categoryUrl"))
	if categoryURL == "" {
		categoryURL = asString(valueOf(seo, data, "category_url"))
	}
	if categoryURL == "" {
		return ""
	}

	parts := splitPath(categoryURL)

	localityURL := asString(valueOf(seo, data, "localityUrl"))
	if localityURL == "" {
		localityURL = asString(valueOf(seo, data, "locality_url"))
	}
	if localityURL != "" {
		parts = append(parts, splitPath(localityURL)...)
	} else {
		locality := ""
		if seo != nil {
			locality = stringField(seo, "locality")
		}
		if locality == "" {
			locality = stringField(data, "locality")
		}
		if slug := slugify(locality); slug != "" {
			parts = append(parts, slug)
		}
	}

	if id := listingID(data); id != "" {
		parts = append(parts, id)
	}

	if len(parts) < 2 {
		return ""
	}
	return normalizeCandidate(base, "detail/"+strings.Join(parts, "/"))
}

// valueOf reads a key from the seo sub-object first, falling back to the
// listing's top level.
func valueOf(seo, data map[string]any, key string) any {
	if seo != nil {
		if v, ok := seo[key]; ok && v != nil {
			return v
		}
	}
	if data != nil {
		return data[key]
	}
	return nil
}

func splitPath(joined string) []string {
	var parts []string
	for _, part := range strings.Split(strings.Trim(joined, "/"), "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
