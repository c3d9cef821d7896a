package deletion

// Tier classifies an entity type for deletion purposes. Transactional,
// workflow and financial data may be removed through the approval workflow;
// configuration and system data may not, regardless of who asks.
type Tier string

const (
	TierTransactional Tier = "TRANSACTIONAL"
	TierWorkflow      Tier = "WORKFLOW"
	TierFinancial     Tier = "FINANCIAL"
	TierConfiguration Tier = "CONFIGURATION"
	TierSystem        Tier = "SYSTEM"
)

// Protected reports whether entity types in this tier are off limits for
// the deletion workflow.
func (t Tier) Protected() bool {
	return t == TierConfiguration || t == TierSystem
}

// Classification describes one registered entity type.
type Classification struct {
	EntityType string
	Tier       Tier
}

// Classifier is the declarative entity type → tier table. Entries are
// registered once during wiring and never change afterwards.
type Classifier struct {
	entries map[string]Tier
}

// NewClassifier returns an empty Classifier.
func NewClassifier() *Classifier {
	return &Classifier{entries: make(map[string]Tier)}
}

// Register records the tier for an entity type.
func (c *Classifier) Register(entityType string, tier Tier) {
	c.entries[entityType] = tier
}

// TierOf returns the tier for entityType.
func (c *Classifier) TierOf(entityType string) (Tier, bool) {
	tier, ok := c.entries[entityType]
	return tier, ok
}

// Deletable reports whether entityType may be targeted by a delete request.
func (c *Classifier) Deletable(entityType string) bool {
	tier, ok := c.entries[entityType]
	return ok && !tier.Protected()
}

// Classifications returns every registered entry.
func (c *Classifier) Classifications() []Classification {
	out := make([]Classification, 0, len(c.entries))
	for et, tier := range c.entries {
		out = append(out, Classification{EntityType: et, Tier: tier})
	}
	return out
}
