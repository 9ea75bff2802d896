package catalog

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	pkgerrors "github.com/coolbeans/numisref/pkg/errors"
)

// Vocabulary prefixes used by Nomisma type records.
var vocabularies = map[string]string{
	"nmo":     "http://nomisma.org/ontology#",
	"skos":    "http://www.w3.org/2004/02/skos/core#",
	"rdfs":    "http://www.w3.org/2000/01/rdf-schema#",
	"dcterms": "http://purl.org/dc/terms/",
}

// Property names, written as prefix:local.
const (
	propPrefLabel    = "skos:prefLabel"
	propLabel        = "rdfs:label"
	propTitle        = "dcterms:title"
	propDescription  = "dcterms:description"
	propAuthority    = "nmo:hasAuthority"
	propDenomination = "nmo:hasDenomination"
	propMint         = "nmo:hasMint"
	propMaterial     = "nmo:hasMaterial"
	propStartDate    = "nmo:hasStartDate"
	propEndDate      = "nmo:hasEndDate"
	propObverse      = "nmo:hasObverse"
	propReverse      = "nmo:hasReverse"
	propLegend       = "nmo:hasLegend"

	typeSeriesItem = "nmo:TypeSeriesItem"
)

var yearPattern = regexp.MustCompile(`^\s*([+-]?\d+)`)

// Node is a JSON-LD node object.
type Node map[string]any

// Document is a parsed JSON-LD document with an index of its nodes by @id.
type Document struct {
	root  Node
	nodes map[string]Node
	order []Node
}

// ParseDocument decodes a JSON-LD document. Both a bare node and a
// document with an @graph array are accepted.
func ParseDocument(data []byte) (*Document, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, pkgerrors.NewParseError("jsonld", "", "malformed document", err)
	}

	doc := &Document{nodes: make(map[string]Node)}
	switch value := raw.(type) {
	case map[string]any:
		doc.root = Node(value)
		doc.index(doc.root)
		if graph, ok := value["@graph"].([]any); ok {
			for _, item := range graph {
				if node, ok := item.(map[string]any); ok {
					doc.index(Node(node))
				}
			}
		}
	case []any:
		for _, item := range value {
			if node, ok := item.(map[string]any); ok {
				if doc.root == nil {
					doc.root = Node(node)
				}
				doc.index(Node(node))
			}
		}
	default:
		return nil, pkgerrors.NewParseError("jsonld", "", fmt.Sprintf("unexpected top-level %T", raw), nil)
	}
	if doc.root == nil {
		doc.root = Node{}
	}
	return doc, nil
}

func (doc *Document) index(node Node) {
	doc.order = append(doc.order, node)
	if id, ok := node["@id"].(string); ok && id != "" {
		if _, exists := doc.nodes[id]; !exists {
			doc.nodes[id] = node
		}
	}
}

// Root returns the top-level node.
func (doc *Document) Root() Node {
	return doc.root
}

// Node finds a node by @id. A "#fragment" id matches any node whose @id
// ends with that fragment.
func (doc *Document) Node(id string) (Node, bool) {
	if id == "" {
		return nil, false
	}
	if node, ok := doc.nodes[id]; ok {
		return node, true
	}
	hash := strings.LastIndex(id, "#")
	if hash < 0 {
		return nil, false
	}
	fragment := id[hash:]
	for _, node := range doc.order {
		if nodeID, ok := node["@id"].(string); ok && strings.HasSuffix(nodeID, fragment) {
			return node, true
		}
	}
	return nil, false
}

// TypeNode selects the node describing a coin type: the node whose @id is
// uri, else the first node typed nmo:TypeSeriesItem, else the root.
func (doc *Document) TypeNode(uri string) Node {
	if node, ok := doc.Node(uri); ok && uri != "" {
		return node
	}
	for _, node := range doc.order {
		for _, nodeType := range asSlice(node["@type"]) {
			if text, ok := nodeType.(string); ok && matchesTerm(text, typeSeriesItem) {
				return node
			}
		}
	}
	return doc.root
}

// Property returns the value of a prefixed property, accepting the
// prefixed name, the full IRI and the bare local name.
func (doc *Document) Property(node Node, name string) any {
	if node == nil {
		return nil
	}
	for _, alias := range propertyAliases(name) {
		if value, ok := node[alias]; ok {
			return value
		}
	}
	return nil
}

// Resolve returns the node a value points at: an inline node with
// properties is returned as is, an @id reference is looked up.
func (doc *Document) Resolve(value any) (Node, bool) {
	switch typed := value.(type) {
	case []any:
		for _, item := range typed {
			if node, ok := doc.Resolve(item); ok {
				return node, true
			}
		}
	case map[string]any:
		id, _ := typed["@id"].(string)
		if len(typed) > 1 || id == "" {
			return Node(typed), true
		}
		if node, ok := doc.Node(id); ok {
			return node, true
		}
	case string:
		return doc.Node(typed)
	}
	return nil, false
}

// GetLabel returns a human label for value. Language-tagged literals prefer
// English; references are resolved through the node index and fall back to
// the title-cased last segment of the URI.
func (doc *Document) GetLabel(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		if isURI(typed) {
			return doc.labelForURI(typed)
		}
		return strings.TrimSpace(typed)
	case []any:
		return doc.labelFromList(typed)
	case map[string]any:
		if literal, ok := typed["@value"]; ok {
			return strings.TrimSpace(fmt.Sprint(literal))
		}
		if id, ok := typed["@id"].(string); ok {
			if len(typed) > 1 {
				if label := doc.nodeLabel(Node(typed)); label != "" {
					return label
				}
			}
			return doc.labelForURI(id)
		}
		return doc.nodeLabel(Node(typed))
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	}
	return fmt.Sprint(value)
}

func (doc *Document) labelFromList(values []any) string {
	fallback := ""
	for _, item := range values {
		if literal, ok := item.(map[string]any); ok {
			if lang, _ := literal["@language"].(string); strings.HasPrefix(strings.ToLower(lang), "en") {
				if label := doc.GetLabel(item); label != "" {
					return label
				}
			}
		}
		if fallback == "" {
			fallback = doc.GetLabel(item)
		}
	}
	return fallback
}

func (doc *Document) nodeLabel(node Node) string {
	for _, name := range []string{propPrefLabel, propLabel, propTitle} {
		if label := doc.GetLabel(doc.Property(node, name)); label != "" {
			return label
		}
	}
	return ""
}

func (doc *Document) labelForURI(uri string) string {
	if node, ok := doc.nodes[uri]; ok {
		if label := doc.nodeLabel(node); label != "" {
			return label
		}
	}
	return labelFromURI(uri)
}

// GetURI returns the IRI a value refers to.
func GetURI(value any) string {
	switch typed := value.(type) {
	case string:
		return strings.TrimSpace(typed)
	case map[string]any:
		if id, ok := typed["@id"].(string); ok {
			return id
		}
	case []any:
		for _, item := range typed {
			if uri := GetURI(item); uri != "" {
				return uri
			}
		}
	}
	return ""
}

// ParseDateValue reads a year from a literal such as "-0027" or
// {"@value": "0014", "@type": "xsd:gYear"}. Negative years are BCE.
func ParseDateValue(value any) (int, bool) {
	switch typed := value.(type) {
	case float64:
		return int(typed), true
	case string:
		match := yearPattern.FindStringSubmatch(typed)
		if match == nil {
			return 0, false
		}
		year, err := strconv.Atoi(match[1])
		if err != nil {
			return 0, false
		}
		return year, true
	case map[string]any:
		return ParseDateValue(typed["@value"])
	case []any:
		for _, item := range typed {
			if year, ok := ParseDateValue(item); ok {
				return year, true
			}
		}
	}
	return 0, false
}

// labelFromURI turns ".../id/augustus" into "Augustus" and
// ".../id/marcus_aurelius" into "Marcus Aurelius".
func labelFromURI(uri string) string {
	segment := lastPathSegment(uri)
	segment = strings.NewReplacer("_", " ", "-", " ").Replace(segment)
	if segment == "" {
		return ""
	}
	// A Caser is stateful and not safe for concurrent use.
	return cases.Title(language.English).String(segment)
}

func propertyAliases(name string) []string {
	prefix, local, ok := strings.Cut(name, ":")
	if !ok {
		return []string{name}
	}
	aliases := []string{name}
	if namespace, known := vocabularies[prefix]; known {
		aliases = append(aliases, namespace+local)
	}
	return append(aliases, local)
}

func matchesTerm(value, term string) bool {
	for _, alias := range propertyAliases(term) {
		if value == alias {
			return true
		}
	}
	return false
}

func asSlice(value any) []any {
	switch typed := value.(type) {
	case nil:
		return nil
	case []any:
		return typed
	}
	return []any{value}
}

func isURI(text string) bool {
	return strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://")
}
