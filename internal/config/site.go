package config

// PriorityConfig overrides the tier keyword lists.
type PriorityConfig struct {
	// High lists path keywords for the high tier.
	High []string `yaml:"high,omitempty"`
	// Medium lists path keywords for the medium tier.
	Medium []string `yaml:"medium,omitempty"`
}

// ExcludeConfig overrides the scope exclusions.
type ExcludeConfig struct {
	// Extensions are file extensions never fetched, e.g. ".pdf".
	Extensions []string `yaml:"extensions,omitempty"`
	// Paths are path fragments never fetched, e.g. "/login".
	Paths []string `yaml:"paths,omitempty"`
}

// File represents the structure of the .corpuscrawl configuration file.
type File struct {
	// Seeds are the start URLs.
	Seeds []string `yaml:"seeds,omitempty"`

	// Sitemaps are sitemap or sitemap index URLs.
	Sitemaps []string `yaml:"sitemaps,omitempty"`

	// Hosts restricts the crawl to these hosts and their subdomains.
	Hosts []string `yaml:"hosts,omitempty"`

	// Priority overrides the tier keywords.
	Priority PriorityConfig `yaml:"priority,omitempty"`

	// Exclude overrides the scope exclusions.
	Exclude ExcludeConfig `yaml:"exclude,omitempty"`

	// Headers are custom HTTP headers to include in requests.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Cookie is an HTTP cookie to use when crawling.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// UserAgent overrides the default User-Agent.
	UserAgent string `yaml:"user_agent,omitempty"`

	// RespectRobots toggles robots.txt checks. Unset keeps the default.
	RespectRobots *bool `yaml:"respect_robots,omitempty"`

	// MinWords overrides the quality threshold. Unset keeps the default.
	MinWords *int `yaml:"min_words,omitempty"`
}
