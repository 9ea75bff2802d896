package citation

import (
	"regexp"
	"strings"
)

const rpcMaxVolume = 10

// RPCParser parses Roman Provincial Coinage citations:
//   - "RPC I 4374", "RPC 1, 4374", "RPC II 1234a"
//   - "RPC I S 123", "RPC I S2 123", "RPC I Suppl. 3 123"
//   - "RPC 4374" (volume missing, accepted with a warning)
type RPCParser struct {
	volumePattern   *regexp.Regexp
	noVolumePattern *regexp.Regexp
}

// NewRPCParser creates an RPC parser with compiled patterns.
func NewRPCParser() *RPCParser {
	return &RPCParser{
		volumePattern: regexp.MustCompile(
			`^(?i:RPC)\b\.?\s*` +
				`(?P<vol>[IVXivx]+|\d{1,2})\b` +
				`(?:\s*[.\-/]\s*(?P<part>\d)\b)?` +
				`\s*(?:(?P<suppword>(?i:suppl?)\b\.?)\s*(?P<supn>[23]\b)?|(?P<supp>(?i:S)[23]?)\b)?` +
				`\s*[,:]?\s*` +
				`(?P<num>\d+)(?P<var>[A-Za-z])?(?:[^A-Za-z0-9].*)?$`),
		noVolumePattern: regexp.MustCompile(
			`^(?i:RPC)\b\.?\s*(?P<num>\d+)(?P<var>[A-Za-z])?\s*$`),
	}
}

// System returns SystemRPC.
func (p *RPCParser) System() System {
	return SystemRPC
}

// Parse reads raw as an RPC citation.
func (p *RPCParser) Parse(raw string) (*ParsedReference, bool) {
	text := prepare(raw)

	if groups, ok := matchNamed(p.volumePattern, text); ok {
		if volume, ok := volumeFromGroups(groups["vol"], groups["part"], rpcMaxVolume); ok {
			return finalize(&ParsedReference{
				System:     SystemRPC,
				Volume:     volume,
				Supplement: rpcSupplement(groups),
				Number:     trimNumber(groups["num"]),
				Variant:    groups["var"],
				Raw:        raw,
			}), true
		}
	}

	groups, ok := matchNamed(p.noVolumePattern, text)
	if !ok {
		return nil, false
	}
	return finalize(&ParsedReference{
		System:   SystemRPC,
		Number:   trimNumber(groups["num"]),
		Variant:  groups["var"],
		Warnings: []string{WarnVolumeMissing},
		Raw:      raw,
	}), true
}

// rpcSupplement returns "S", "S2" or "S3" when a supplement marker was matched.
func rpcSupplement(groups submatches) string {
	if marker := groups["supp"]; marker != "" {
		return strings.ToUpper(marker)
	}
	if groups["suppword"] != "" {
		return "S" + groups["supn"]
	}
	return ""
}

var _ Parser = (*RPCParser)(nil)
