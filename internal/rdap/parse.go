package rdap

import (
	"encoding/json"
	"strings"

	"github.com/benithors/dnstwistgo/internal/scantypes"
)

type rdapEntity struct {
	Roles      []string        `json:"roles"`
	VCardArray json.RawMessage `json:"vcardArray"`
	Entities   []rdapEntity    `json:"entities"`
}

type rdapDomain struct {
	Status   []string     `json:"status"`
	Entities []rdapEntity `json:"entities"`
	Events   []struct {
		Action    string `json:"eventAction"`
		EventDate string `json:"eventDate"`
	} `json:"events"`
	Nameservers []struct {
		LDHName string `json:"ldhName"`
	} `json:"nameservers"`
}

func parseRecord(fqdn string, body []byte) (*scantypes.WhoisRecord, error) {
	var d rdapDomain
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, err
	}

	rec := &scantypes.WhoisRecord{
		Domain:     fqdn,
		Source:     "rdap",
		RawData:    string(body),
		Registered: true,
	}

	if len(d.Status) > 0 {
		rec.Status = d.Status
	}

	for _, ns := range d.Nameservers {
		if ns.LDHName != "" {
			rec.Nameservers = append(rec.Nameservers, ns.LDHName)
		}
	}

	for _, ev := range d.Events {
		action := strings.ToLower(ev.Action)
		switch {
		case strings.Contains(action, "registration"):
			rec.CreationDate = ev.EventDate
		case strings.Contains(action, "expiration"):
			rec.ExpirationDate = ev.EventDate
		case strings.Contains(action, "last changed"):
			rec.UpdatedDate = ev.EventDate
		}
	}

	rec.Registrar = findRegistrarName(d.Entities)
	rec.Registrant = findContact(d.Entities, "registrant")
	rec.AdminContact = findContact(d.Entities, "administrative")
	rec.TechContact = findContact(d.Entities, "technical")
	rec.AbuseContact = findContact(d.Entities, "abuse")

	return rec, nil
}

func findRegistrarName(entities []rdapEntity) string {
	for _, e := range entities {
		if !hasRole(e.Roles, "registrar") {
			continue
		}
		card := parseVCard(e.VCardArray)
		if v, ok := card["fn"]; ok {
			return v
		}
		if v, ok := card["org"]; ok {
			return v
		}
	}
	return ""
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// findContact finds the entity carrying role, checking top-level
// entities first and then recursing one level into each entity's own
// nested entities (abuse contacts are commonly nested inside the
// registrar entity, per spec §4.7). Per spec §8's concrete scenario, an
// abuse contact reached only via that nested search is reported as-is
// (e.g. email-only) rather than redacted: the registrar entity wrapping
// it being privacy-redacted says nothing about the abuse contact nested
// inside it.
func findContact(entities []rdapEntity, role string) *scantypes.ContactOrSentinel {
	for _, e := range entities {
		if hasRole(e.Roles, role) {
			return contactFromEntity(e, false)
		}
	}
	for _, e := range entities {
		for _, nested := range e.Entities {
			if hasRole(nested.Roles, role) {
				return contactFromEntity(nested, true)
			}
		}
	}
	return nil
}

// contactFromEntity builds a contact from e's vCard. bypassRedaction
// skips the empty-name/org/address -> SentinelRedacted substitution,
// for contacts (nested abuse entities) whose sparse vCard reflects a
// narrow contact purpose rather than a provider's privacy redaction.
func contactFromEntity(e rdapEntity, bypassRedaction bool) *scantypes.ContactOrSentinel {
	card := parseVCard(e.VCardArray)

	c := &scantypes.Contact{
		Name:         emptyToNil(card["fn"]),
		Organization: emptyToNil(card["org"]),
		Email:        emptyToNil(card["email"]),
		Phone:        emptyToNil(card["tel"]),
		Fax:          emptyToNil(card["fax"]),
		Address:      emptyToNil(card["adr"]),
		Country:      emptyToNil(card["country"]),
	}

	if !bypassRedaction && c.Name == "" && c.Organization == "" && c.Address == "" {
		return &scantypes.ContactOrSentinel{Sentinel: scantypes.SentinelRedacted}
	}
	return &scantypes.ContactOrSentinel{Contact: c}
}

func emptyToNil(s string) string { return s }

// parseVCard walks a jCard array per spec Design Notes §9: a
// heterogeneously-typed array of [name, params, valueType, value]
// quads. It returns a flat map of the properties this resolver cares
// about (fn, org, email, tel, fax, adr, country).
func parseVCard(raw json.RawMessage) map[string]string {
	out := map[string]string{}
	if len(raw) == 0 {
		return out
	}

	var outer []json.RawMessage
	if err := json.Unmarshal(raw, &outer); err != nil || len(outer) < 2 {
		return out
	}

	var props []json.RawMessage
	if err := json.Unmarshal(outer[1], &props); err != nil {
		return out
	}

	for _, p := range props {
		var quad []json.RawMessage
		if err := json.Unmarshal(p, &quad); err != nil || len(quad) < 4 {
			continue
		}

		var name string
		if err := json.Unmarshal(quad[0], &name); err != nil {
			continue
		}
		name = strings.ToLower(name)

		switch name {
		case "fn":
			out["fn"] = stringValue(quad[3])
		case "org":
			out["org"] = stringValue(quad[3])
		case "email":
			out["email"] = stringValue(quad[3])
		case "tel":
			if isFaxType(quad[1]) {
				out["fax"] = stringValue(quad[3])
			} else if _, ok := out["tel"]; !ok {
				out["tel"] = stringValue(quad[3])
			}
		case "adr":
			addr, country := flattenAddress(quad[3])
			if addr != "" {
				out["adr"] = addr
			}
			if country != "" {
				out["country"] = country
			}
		}
	}

	return out
}

// isFaxType inspects a vCard PARAMS object for type=fax, where type may
// be encoded as either a bare string or an array of strings.
func isFaxType(params json.RawMessage) bool {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(params, &m); err != nil {
		return false
	}
	t, ok := m["type"]
	if !ok {
		return false
	}

	var single string
	if err := json.Unmarshal(t, &single); err == nil {
		return strings.EqualFold(single, "fax")
	}
	var list []string
	if err := json.Unmarshal(t, &list); err == nil {
		for _, v := range list {
			if strings.EqualFold(v, "fax") {
				return true
			}
		}
	}
	return false
}

func stringValue(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	// Some properties (notably structured "n") encode an array; fall
	// back to joining string elements.
	var arr []string
	if err := json.Unmarshal(v, &arr); err == nil {
		return strings.Join(arr, " ")
	}
	return ""
}

// flattenAddress joins the non-empty components of a structured ADR
// value into a comma-separated address, and extracts the country
// component (jCard ADR index 6), per spec §4.7.
func flattenAddress(v json.RawMessage) (address, country string) {
	var parts []string
	if err := json.Unmarshal(v, &parts); err != nil {
		return "", ""
	}

	var nonEmpty []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	if len(parts) > 6 {
		country = strings.TrimSpace(parts[6])
	}
	return strings.Join(nonEmpty, ", "), country
}
