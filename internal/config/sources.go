package config

// SourcesConfig enumerates the upstream data sources and the classifier's
// extra keywords.
type SourcesConfig struct {
	GitHub     GitHubSources       `yaml:"github"`
	RSSFeeds   []FeedSource        `yaml:"rssFeeds"`
	Blogs      []BlogSource        `yaml:"blogs"`
	Categories map[string][]string `yaml:"categories"`
}

// GitHubSources selects trending topics and watched repositories.
type GitHubSources struct {
	Topics       []string `yaml:"topics"`
	Repositories []string `yaml:"repositories"`
	Since        string   `yaml:"since"`
}

// FeedSource is one syndicated feed; Enabled defaults to true when omitted.
type FeedSource struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled *bool  `yaml:"enabled"`
}

// On reports whether the feed participates in collection.
func (f FeedSource) On() bool { return f.Enabled == nil || *f.Enabled }

// BlogSource is one scraped blog page; Enabled defaults to true when
// omitted.
type BlogSource struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Parser  string `yaml:"parser"`
	Enabled *bool  `yaml:"enabled"`
}

// On reports whether the blog participates in collection.
func (b BlogSource) On() bool { return b.Enabled == nil || *b.Enabled }
