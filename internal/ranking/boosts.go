// Package ranking provides the relevance heuristic and per-field boosts used by the search sources.
package ranking

// Boosts holds the field weights each source applies to the relevance score.
type Boosts struct {
	Title       float64 `yaml:"title"`       // default: 3
	Description float64 `yaml:"description"` // default: 2
	Author      float64 `yaml:"author"`      // default: 1
	Tag         float64 `yaml:"tag"`         // default: 1.5
	Category    float64 `yaml:"category"`    // default: 1.5
	Content     float64 `yaml:"content"`     // default: 1

	// Tools
	Developer float64 `yaml:"developer"` // default: 1.5
	Feature   float64 `yaml:"feature"`   // default: 1
	Pro       float64 `yaml:"pro"`       // default: 0.8
	Con       float64 `yaml:"con"`       // default: 0.8

	// FAQ
	Question float64 `yaml:"question"` // default: 3
	Answer   float64 `yaml:"answer"`   // default: 2

	// GitHub
	RepoName float64 `yaml:"repo_name"` // default: 3
	Language float64 `yaml:"language"`  // default: 1.5
	Topic    float64 `yaml:"topic"`     // default: 1.5
}

// DefaultBoosts returns the default field boosts.
func DefaultBoosts() *Boosts {
	return &Boosts{
		Title:       3,
		Description: 2,
		Author:      1,
		Tag:         1.5,
		Category:    1.5,
		Content:     1,

		Developer: 1.5,
		Feature:   1,
		Pro:       0.8,
		Con:       0.8,

		Question: 3,
		Answer:   2,

		RepoName: 3,
		Language: 1.5,
		Topic:    1.5,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (b *Boosts) ApplyDefaults() {
	d := DefaultBoosts()
	fill := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	fill(&b.Title, d.Title)
	fill(&b.Description, d.Description)
	fill(&b.Author, d.Author)
	fill(&b.Tag, d.Tag)
	fill(&b.Category, d.Category)
	fill(&b.Content, d.Content)
	fill(&b.Developer, d.Developer)
	fill(&b.Feature, d.Feature)
	fill(&b.Pro, d.Pro)
	fill(&b.Con, d.Con)
	fill(&b.Question, d.Question)
	fill(&b.Answer, d.Answer)
	fill(&b.RepoName, d.RepoName)
	fill(&b.Language, d.Language)
	fill(&b.Topic, d.Topic)
}
