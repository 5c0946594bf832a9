// Package config provides configuration structures and utilities for corpuscrawl.
// It defines the crawl target (seeds, sitemaps, hosts, priority keywords),
// politeness and retry settings, state persistence and output options.
package config
