package cryptid

import (
	"fmt"
	"strings"
)

// SecurityLevel selects the bit lengths of the pairing parameters and the
// digest used by the hash-to-domain maps. See Section 9 of RFC 5091.
type SecurityLevel int

const (
	Lowest SecurityLevel = iota
	Low
	Medium
	High
	Highest
)

// levelParameters is one row of the RFC 5091 security table.
type levelParameters struct {
	name      string
	orderBits int // n_q, bit length of the subgroup order q
	fieldBits int // n_p, bit length of the field prime p
	digest    DigestSelector
}

// Populated once at package init, never written afterwards.
var levelTable = [...]levelParameters{
	Lowest:  {name: "LOWEST", orderBits: 160, fieldBits: 512, digest: SHA1},
	Low:     {name: "LOW", orderBits: 224, fieldBits: 1024, digest: SHA224},
	Medium:  {name: "MEDIUM", orderBits: 256, fieldBits: 1536, digest: SHA256},
	High:    {name: "HIGH", orderBits: 384, fieldBits: 3840, digest: SHA384},
	Highest: {name: "HIGHEST", orderBits: 512, fieldBits: 7680, digest: SHA512},
}

// Valid reports whether l is one of the five defined levels.
func (l SecurityLevel) Valid() bool {
	return l >= Lowest && l <= Highest
}

// OrderBits returns the bit length of the prime subgroup order q.
func (l SecurityLevel) OrderBits() int {
	if !l.Valid() {
		return 0
	}
	return levelTable[l].orderBits
}

// FieldBits returns the bit length of the field prime p.
func (l SecurityLevel) FieldBits() int {
	if !l.Valid() {
		return 0
	}
	return levelTable[l].fieldBits
}

// HashSelector returns the digest matched to the level's field size.
func (l SecurityLevel) HashSelector() DigestSelector {
	if !l.Valid() {
		return DigestUnknown
	}
	return levelTable[l].digest
}

func (l SecurityLevel) String() string {
	if !l.Valid() {
		return fmt.Sprintf("SecurityLevel(%d)", int(l))
	}
	return levelTable[l].name
}

// ParseSecurityLevel maps a level name such as "medium" to its value.
func ParseSecurityLevel(s string) (SecurityLevel, error) {
	for l, row := range levelTable {
		if strings.EqualFold(s, row.name) {
			return SecurityLevel(l), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSecurityLevel, s)
}
