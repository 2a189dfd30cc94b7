package entities

import "time"

// Allowed knowledge entry categories. Fixed set, validated on create/update.
var KnowledgeCategories = []string{
	"general",
	"productos",
	"servicios",
	"precios",
	"faq",
	"politicas",
	"contacto",
	"horarios",
	"promociones",
	"otros",
}

// ValidKnowledgeCategory reports whether c is one of the allowed categories.
func ValidKnowledgeCategory(c string) bool {
	for _, allowed := range KnowledgeCategories {
		if c == allowed {
			return true
		}
	}
	return false
}

const (
	MinKnowledgePriority = 1
	MaxKnowledgePriority = 10
)

// KnowledgeEntry is a single fact/FAQ record owned by one tenant,
// used to ground automatic replies.
//
// IsActive is the single gate for retrieval: soft-deleted and
// deactivated entries both carry IsActive=false and never appear in
// search or bot context. DeletedAt is an audit timestamp set by soft
// delete and cleared by reactivation.
type KnowledgeEntry struct {
	ID        string     `json:"id"`
	TenantID  string     `json:"tenant_id"`
	Category  string     `json:"category"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Keywords  []string   `json:"keywords"`
	Tags      []string   `json:"tags"`
	Priority  int        `json:"priority"` // 1 (low) to 10 (high)
	IsActive  bool       `json:"is_active"`
	Version   int        `json:"version"` // Incremented on every content update
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// RelevanceMatch is the ephemeral result of scoring one knowledge
// entry against a query string. Never persisted.
type RelevanceMatch struct {
	Entry KnowledgeEntry `json:"entry"`
	Score float64        `json:"score"`
}

// KnowledgeStats summarizes a tenant's knowledge base.
type KnowledgeStats struct {
	Total      int            `json:"total"`
	Active     int            `json:"active"`
	Inactive   int            `json:"inactive"`
	ByCategory map[string]int `json:"by_category"`
}
