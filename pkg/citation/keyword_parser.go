package citation

import (
	"regexp"
	"strings"
)

// KeywordParser handles the catalogs whose citations are a keyword, an
// optional volume and a number: RSC, BMCRE, BMCRR, Sear, Sydenham, Cohen,
// Calicó and DOC.
type KeywordParser struct {
	system        System
	pattern       *regexp.Regexp
	volumes       bool
	volumeWarning bool
}

// keywordSpec describes one keyword-driven catalog.
type keywordSpec struct {
	system   System
	keywords []string
	// volumes enables an optional volume between keyword and number.
	volumes bool
	// volumeWarning flags a missing volume; numbers in these catalogs are
	// only unique within a volume.
	volumeWarning bool
}

var keywordSpecs = map[System]keywordSpec{
	SystemRSC: {
		system:   SystemRSC,
		keywords: []string{`RSC\b\.?`},
		volumes:  true,
	},
	SystemBMCRR: {
		system:   SystemBMCRR,
		keywords: []string{`BMC\s*RR\b\.?`},
		volumes:  true,
	},
	SystemBMCRE: {
		system:   SystemBMCRE,
		keywords: []string{`BMC\s*RE\b\.?`, `BMC\b\.?`},
		volumes:  true,
	},
	SystemSear: {
		system:   SystemSear,
		keywords: []string{`Sear\b\.?`, `SRCV\b\.?`, `SR\b\.?`},
	},
	SystemSydenham: {
		system:   SystemSydenham,
		keywords: []string{`Sydenham\b\.?`, `Syd\b\.?`},
	},
	SystemCohen: {
		system:   SystemCohen,
		keywords: []string{`Cohen\b\.?`, `Coh\.`, `C\.`},
		volumes:  true,
	},
	SystemCalico: {
		system:   SystemCalico,
		keywords: []string{`Calico\b\.?`, `Cal\.`},
	},
	SystemDOC: {
		system:        SystemDOC,
		keywords:      []string{`DOC\b\.?`},
		volumes:       true,
		volumeWarning: true,
	},
}

// NewKeywordParser creates the parser for one of the keyword-driven
// catalogs. It returns false for systems with dedicated parsers.
func NewKeywordParser(system System) (*KeywordParser, bool) {
	spec, ok := keywordSpecs[system]
	if !ok {
		return nil, false
	}

	expr := `^(?i:` + strings.Join(spec.keywords, "|") + `)\s*(?i:no\.?\s*)?`
	if spec.volumes {
		expr += `(?:(?P<vol>[IVXLCivxlc]+|\d{1,2})\b(?:\s*[.\-/]\s*(?P<part>\d)\b)?\s*[,:]?\s+)?`
	}
	expr += `(?P<num>\d+)(?P<var>[A-Za-z])?(?:[^A-Za-z0-9].*)?$`

	return &KeywordParser{
		system:        system,
		pattern:       regexp.MustCompile(expr),
		volumes:       spec.volumes,
		volumeWarning: spec.volumeWarning,
	}, true
}

// System returns the catalog this parser handles.
func (p *KeywordParser) System() System {
	return p.system
}

// Parse reads raw as a citation of the parser's catalog.
func (p *KeywordParser) Parse(raw string) (*ParsedReference, bool) {
	groups, ok := matchNamed(p.pattern, prepare(raw))
	if !ok {
		return nil, false
	}

	ref := &ParsedReference{
		System:  p.system,
		Number:  trimNumber(groups["num"]),
		Variant: groups["var"],
		Raw:     raw,
	}
	if vol := groups["vol"]; vol != "" {
		volume, ok := volumeFromGroups(vol, groups["part"], 0)
		if !ok {
			return nil, false
		}
		ref.Volume = volume
	} else if p.volumeWarning {
		ref.Warnings = []string{WarnVolumeMissing}
	}
	return finalize(ref), true
}

var _ Parser = (*KeywordParser)(nil)
