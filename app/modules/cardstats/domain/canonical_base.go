package cardstatsdomain

// BaseCanonicalizer maps a raw base card id to the key used by base-keyed
// rollups. Ids without a mapping are returned unchanged.
type BaseCanonicalizer func(rawBaseID string) string

// IdentityBase keeps every base id as-is.
func IdentityBase(rawBaseID string) string { return rawBaseID }

// NewBaseCanonicalizer builds a lookup over a copy of table.
func NewBaseCanonicalizer(table map[string]string) BaseCanonicalizer {
	if len(table) == 0 {
		return IdentityBase
	}
	lookup := make(map[string]string, len(table))
	for raw, key := range table {
		lookup[raw] = key
	}
	return func(rawBaseID string) string {
		if key, ok := lookup[rawBaseID]; ok {
			return key
		}
		return rawBaseID
	}
}
