package extractor

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/corpuscrawl/internal/model"
)

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`(?:\+?1[\s.\-]?)?\(?(\d{3})\)?[\s.\-]?(\d{3})[\s.\-](\d{4})\b`)
)

// contactPass collects email addresses and North American phone
// numbers from the visible text and from mailto: and tel: links.
type contactPass struct{}

func (contactPass) Name() string { return "contact" }

func (contactPass) Apply(page *Page, doc *model.Document) error {
	var c contactSet

	text := textOf(bodyOf(page.Root), false)
	for _, m := range emailPattern.FindAllString(text, -1) {
		c.addEmail(m)
	}
	for _, loc := range phonePattern.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > 0 && isDigit(text[loc[0]-1]) {
			continue
		}
		c.addPhone(text[loc[2]:loc[3]], text[loc[4]:loc[5]], text[loc[6]:loc[7]])
	}

	page.Doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		switch lower := strings.ToLower(href); {
		case strings.HasPrefix(lower, "mailto:"):
			addr := href[len("mailto:"):]
			if i := strings.IndexByte(addr, '?'); i >= 0 {
				addr = addr[:i]
			}
			if un, err := url.PathUnescape(addr); err == nil {
				addr = un
			}
			if emailPattern.MatchString(addr) {
				c.addEmail(emailPattern.FindString(addr))
			}
		case strings.HasPrefix(lower, "tel:"):
			if m := phonePattern.FindStringSubmatch(href[len("tel:"):]); m != nil {
				c.addPhone(m[1], m[2], m[3])
			}
		}
	})

	doc.Contacts = model.Contacts{Emails: c.emails, Phones: c.phones}
	return nil
}

type contactSet struct {
	emails []string
	phones []string
	seen   map[string]bool
}

func (c *contactSet) addEmail(addr string) {
	addr = strings.ToLower(strings.Trim(addr, ".-"))
	if c.mark("e:" + addr) {
		c.emails = append(c.emails, addr)
	}
}

func (c *contactSet) addPhone(area, exchange, line string) {
	phone := "(" + area + ") " + exchange + "-" + line
	if c.mark("p:" + phone) {
		c.phones = append(c.phones, phone)
	}
}

func (c *contactSet) mark(key string) bool {
	if c.seen == nil {
		c.seen = make(map[string]bool)
	}
	if c.seen[key] {
		return false
	}
	c.seen[key] = true
	return true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
