// Package main provides the entry point for the corpuscrawl CLI.
//
// corpuscrawl crawls an institutional website in priority order and turns
// its pages into a structured corpus of Markdown/JSON documents and FAQ
// question/answer pairs.
//
// Usage:
//
//	corpuscrawl init
//	corpuscrawl crawl --max-pages 200
//	corpuscrawl crawl --resume
//	corpuscrawl export
//
// See --help for all available options.
package main

func main() {
	Execute()
}
