// Package mapping projects combined records onto HubSpot property sets.
// Precedence is fixed: extracted data wins, then the well-known named
// defaults, then generic prefixed defaults, then a synthesized identity.
// Defaults never overwrite a property that extraction already provided.
package mapping

import (
	"sort"
	"strings"

	"linklead-engine/internal/domain"
)

// Defaults is the immutable run configuration the mapper draws fallback
// values from. Keys use the company_/deal_ namespaces described in the
// config file.
type Defaults map[string]string

// PropertySet is one HubSpot object's properties, built fresh per run and
// never mutated after construction.
type PropertySet map[string]string

// Payload is the terminal artifact: exactly what the file output writes and
// the sink submits.
type Payload struct {
	Company ObjectPayload `json:"company" yaml:"company"`
	Deal    ObjectPayload `json:"deal" yaml:"deal"`
}

// ObjectPayload wraps one object's properties in the {properties: {...}}
// shape the HubSpot API expects.
type ObjectPayload struct {
	Properties PropertySet `json:"properties" yaml:"properties"`
}

// Build runs both mappers over the record.
func Build(rec domain.CombinedRecord, defaults Defaults) Payload {
	return Payload{
		Company: ObjectPayload{Properties: MapCompany(rec, defaults)},
		Deal:    ObjectPayload{Properties: MapDeal(rec, defaults)},
	}
}

// MapCompany builds the company property set.
func MapCompany(rec domain.CombinedRecord, defaults Defaults) PropertySet {
	data := flatten(rec)
	props := make(PropertySet)

	for _, fm := range companyFields {
		if v := strings.TrimSpace(data[fm.Source]); v != "" {
			props[fm.HubSpot] = v
		}
	}

	applyPrefixed(props, defaults, "company_", nil)

	// Identity fallback: the raw extracted name, if mapping somehow left the
	// property unset.
	if _, ok := props["name"]; !ok && rec.Company.Name != "" {
		props["name"] = rec.Company.Name
	}

	return props
}

// MapDeal builds the deal property set.
func MapDeal(rec domain.CombinedRecord, defaults Defaults) PropertySet {
	data := flatten(rec)
	props := make(PropertySet)

	for _, fm := range dealFields {
		if v := strings.TrimSpace(data[fm.Source]); v != "" {
			props[fm.HubSpot] = v
		}
	}

	// Required deal fields from the well-known defaults. Written
	// unconditionally when configured; they don't come from extraction.
	if v := defaults[keyDealStage]; v != "" {
		props["dealstage"] = v
	}
	if v := defaults[keyDealPipeline]; v != "" {
		props["pipeline"] = v
	}
	if v := defaults[keyDealOwner]; v != "" {
		props["hubspot_owner_id"] = v
	}

	applyPrefixed(props, defaults, "deal_", map[string]bool{
		keyDealStage:    true,
		keyDealPipeline: true,
		keyDealOwner:    true,
	})

	if _, ok := props["dealname"]; !ok {
		props["dealname"] = synthesizeDealName(rec)
	}

	return props
}

// applyPrefixed writes any defaults key carrying the prefix (minus exempt
// well-known keys) as a property, stripping the prefix, but only where the
// property wasn't already set. Keys are sorted so output is deterministic.
func applyPrefixed(props PropertySet, defaults Defaults, prefix string, exempt map[string]bool) {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) || exempt[k] {
			continue
		}
		v := strings.TrimSpace(defaults[k])
		if v == "" {
			continue
		}
		field := k[len(prefix):]
		if _, ok := props[field]; !ok {
			props[field] = v
		}
	}
}

// synthesizeDealName builds "<title> at <company>" with Unknown literals for
// whichever side is missing.
func synthesizeDealName(rec domain.CombinedRecord) string {
	title := rec.Job.Title
	if title == "" {
		title = "Unknown Position"
	}
	company := rec.Company.Name
	if company == "" {
		company = rec.Job.Company
	}
	if company == "" {
		company = "Unknown Company"
	}
	return title + " at " + company
}
