package resolve

import "strings"

// stopWords lists corporate suffixes and conjunctions stripped when reducing
// a bank name to its core tokens.
var stopWords = map[string]struct{}{
	"CORP":        {},
	"INC":         {},
	"CO":          {},
	"FINANCIAL":   {},
	"BANCORP":     {},
	"BANCSHARES":  {},
	"GROUP":       {},
	"CORPORATION": {},
	"COMPANY":     {},
	"HOLDING":     {},
	"HOLDINGS":    {},
	"THE":         {},
	"&":           {},
	"AND":         {},
}

// CoreTokens reduces a free-text bank name to its significant words,
// upper-cased. Falls back to the first word when everything is a stop word.
func CoreTokens(name string) []string {
	words := strings.Fields(strings.ToUpper(name))
	if len(words) == 0 {
		return nil
	}

	var core []string
	for _, w := range words {
		if _, ok := stopWords[w]; !ok {
			core = append(core, w)
		}
	}
	if len(core) == 0 {
		core = []string{words[0]}
	}
	return core
}

// SearchTerms generates the ordered registry search variants for a name:
// the core phrase, core token + "BANK", core token + "NATIONAL BANK", the
// first core token alone, and the original input. Duplicates are removed
// while preserving order.
func SearchTerms(name string) []string {
	core := CoreTokens(name)
	if len(core) == 0 {
		return nil
	}

	candidates := []string{
		strings.Join(core, " "),
		core[0] + " BANK",
		core[0] + " NATIONAL BANK",
		core[0],
		strings.ToUpper(strings.TrimSpace(name)),
	}

	seen := make(map[string]struct{}, len(candidates))
	var terms []string
	for _, c := range candidates {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		terms = append(terms, c)
	}
	return terms
}
