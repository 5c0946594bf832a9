// Package extractor turns fetched HTML into a structured model.Document.
//
// The HTML is parsed once into a tree that is never modified. A fixed,
// ordered list of passes then reads that tree, each filling its own part
// of the document:
//
//  1. title: page title and meta description
//  2. faq: question/answer pairs (numbered questions, Q:/A: markup,
//     question headings, definition lists, question tables)
//  3. structure: heading-delimited sections, lists and tables
//  4. contacts: email addresses and phone numbers
//  5. links: in-scope outbound links in canonical form
//  6. quality: visible word count and the low-quality flag
//
// Passes are independent, so a failing pass leaves only its own fields
// empty. Input that cannot be parsed produces an empty, low-quality
// document instead of an error.
//
// FAQ detection, sections and lists operate on the page's main content
// region. Navigation, header, footer and sidebar subtrees are ignored by
// every pass except contacts and links, which read the whole page.
package extractor
