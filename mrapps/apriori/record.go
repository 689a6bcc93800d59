// Package apriori implements the two frequent-itemset counting phases run
// over semicolon-delimited retail transaction logs.
package apriori

import "strings"

const (
	// HeaderToken starts the header line of a transaction log.
	HeaderToken = "BillNo"
	FieldSep    = ";"
	ItemSep     = ","

	minFields    = 7
	itemsField   = 1
	countryField = 6
)

// Record is one accepted transaction: the group key and its cleaned items.
type Record struct {
	Country string
	Items   []string
}

// ParseRecord cleans one input line. Header lines, lines with fewer than
// seven fields and lines without a country are rejected, as are countries
// containing KeySep: the country must round-trip through SplitKey.
func ParseRecord(line string) (Record, bool) {
	line = strings.TrimPrefix(line, "\ufeff")
	if strings.HasPrefix(line, HeaderToken) {
		return Record{}, false
	}
	fields := strings.Split(line, FieldSep)
	if len(fields) < minFields {
		return Record{}, false
	}
	country := strings.TrimSpace(fields[countryField])
	if country == "" || strings.Contains(country, KeySep) {
		return Record{}, false
	}

	var items []string
	for _, tok := range strings.Split(fields[itemsField], ItemSep) {
		if item := strings.TrimSpace(tok); item != "" {
			items = append(items, item)
		}
	}
	return Record{Country: country, Items: items}, true
}
