package sources

// Sources holds the taxonomy tables driving both fetch pipelines: which
// research interests exist, which ArXiv category each one queries, which
// Medium tag feeds are polled, and which keywords mark an article as spam.
type Sources struct {
	Interests []Discipline `yaml:"interests"`
	Medium    MediumConfig `yaml:"medium"`
}

type Discipline struct {
	Name   string  `yaml:"discipline"`
	Topics []Topic `yaml:"topics"`
}

type Topic struct {
	Label    string `yaml:"label"`
	Category string `yaml:"category"`
}

type MediumConfig struct {
	Tags         []TagFeed `yaml:"tags"`
	SpamKeywords []string  `yaml:"spam_keywords"`
}

type TagFeed struct {
	Name string `yaml:"name"`
	Feed string `yaml:"feed"`
}
