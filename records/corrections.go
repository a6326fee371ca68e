package records

import "slices"

// Corrections is a versioned table of fixes applied to legacy record names.
//
// Each table is historical data: it lists the exact defects found in one
// generation of legacy files. New defects get a new table version rather
// than an edit to an existing one.
type Corrections struct {
	// Version identifies the table in logs.
	Version string

	// Renames maps a misspelled legacy name to its corrected name. Matching
	// is exact.
	Renames map[string]string

	// Doubled lists corrected names known to appear twice with different
	// values. For these the later record replaces the earlier one.
	Doubled []string
}

// LegacyCorrectionsV1 returns the correction table for legacy files written
// before the current format existed.
func LegacyCorrectionsV1() Corrections {
	return Corrections{
		Version: "legacy-v1",
		Renames: map[string]string{
			"MrM1Erc": "MrM1",
			"Eg2'":    "Eg2",
			"Eg2b'":   "Eg2b",
		},
		Doubled: []string{"MrM1", "Eg2", "Eg2b"},
	}
}

// Rename returns the corrected form of name and whether a rename applied.
func (c Corrections) Rename(name string) (string, bool) {
	fixed, ok := c.Renames[name]
	if !ok {
		return name, false
	}
	return fixed, true
}

// IsDoubled reports whether name is on the known-doubled list.
func (c Corrections) IsDoubled(name string) bool {
	return slices.Contains(c.Doubled, name)
}
