package extract

import "strings"

// DefaultAgents is the ordered list of agency names raw agent strings are
// normalized to. Order matters: the first contained name wins.
var DefaultAgents = []string{
	"Ray Cooke Auctioneers",
	"DNG",
	"Sherry FitzGerald",
	"Flynn & Associates Ltd",
	"Lisney",
	"Quillsen",
	"REA",
	"Hunters Estate Agent",
	"Keller Williams",
	"PropertyTeam",
	"RE/MAX",
	"Murphy Mullan",
	"Mason Estates",
	"Savills",
	"Property Partners",
}

// AgentNormalizer maps free-text agent names onto known agencies
type AgentNormalizer struct {
	known []string
}

// NewAgentNormalizer uses DefaultAgents when known is empty
func NewAgentNormalizer(known []string) *AgentNormalizer {
	if len(known) == 0 {
		known = DefaultAgents
	}
	cp := make([]string, 0, len(known))
	for _, k := range known {
		if k = strings.TrimSpace(k); k != "" {
			cp = append(cp, k)
		}
	}
	return &AgentNormalizer{known: cp}
}

// Normalize returns the first known agency contained in raw, else raw trimmed
func (n *AgentNormalizer) Normalize(raw string) Field[string] {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return None[string]()
	}
	for _, k := range n.known {
		if strings.Contains(raw, k) {
			return Some(k)
		}
	}
	return Some(raw)
}
