package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/sells-group/hardware-cli/internal/model"
)

// pair is one label/value found on a page. key is set when the page names
// the spec key itself (data-spec-key).
type pair struct {
	label string
	value string
	key   string
	unit  string
}

func clean(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

func colonPair(text string) (pair, bool) {
	label, value, ok := strings.Cut(text, ":")
	label, value = clean(strings.Trim(label, "*_ ")), clean(strings.Trim(value, "*_ "))
	if !ok || label == "" || value == "" || len(label) > 60 {
		return pair{}, false
	}
	return pair{label: label, value: value}, true
}

// htmlPairs collects label/value pairs from the structures spec pages use:
// tables, definition lists, "Label: value" list items and data attributes.
func htmlPairs(content string) ([]pair, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, eris.Wrap(err, "extract: parse html")
	}
	var pairs []pair
	add := func(label, value string) {
		label, value = clean(label), clean(value)
		if label != "" && value != "" {
			pairs = append(pairs, pair{label: label, value: value})
		}
	}

	doc.Find("[data-spec-key]").Each(func(_ int, s *goquery.Selection) {
		key, _ := s.Attr("data-spec-key")
		value, ok := s.Attr("data-spec-value")
		if !ok {
			value = s.Text()
		}
		label, ok := s.Attr("data-spec-label")
		if !ok {
			label = key
		}
		unit, _ := s.Attr("data-spec-unit")
		if key = strings.TrimSpace(key); key != "" && clean(value) != "" {
			pairs = append(pairs, pair{label: clean(label), value: clean(value), key: key, unit: unit})
		}
	})

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("th, td")
		if cells.Length() >= 2 {
			add(cells.Eq(0).Text(), cells.Eq(1).Text())
		}
	})

	doc.Find("dl").Each(func(_ int, dl *goquery.Selection) {
		dts, dds := dl.Find("dt"), dl.Find("dd")
		for i := 0; i < dts.Length() && i < dds.Length(); i++ {
			add(dts.Eq(i).Text(), dds.Eq(i).Text())
		}
	})

	doc.Find("li").Each(func(_ int, li *goquery.Selection) {
		if p, ok := colonPair(li.Text()); ok {
			pairs = append(pairs, p)
		}
	})

	for _, attrs := range [][2]string{
		{"data-label", "data-value"},
		{"data-spec-name", "data-spec-value"},
		{"data-title", "data-value"},
	} {
		doc.Find("[" + attrs[0] + "][" + attrs[1] + "]").Each(func(_ int, s *goquery.Selection) {
			add(s.AttrOr(attrs[0], ""), s.AttrOr(attrs[1], ""))
		})
	}

	doc.Find(".specs__row, .spec-row, .specs-row").Each(func(_ int, s *goquery.Selection) {
		add(s.Find(".specs__label, .spec-label, .label").First().Text(),
			s.Find(".specs__value, .spec-value, .value").First().Text())
	})

	doc.Find(".specs, .specifications, .product-specs, .techspecs").Each(func(_ int, s *goquery.Selection) {
		for _, line := range strings.Split(s.Text(), "\n") {
			if p, ok := colonPair(line); ok {
				pairs = append(pairs, p)
			}
		}
	})

	return pairs, nil
}

// ogDescription returns the og:description meta content, which some
// reference sites fill with a comma-separated spec summary.
func ogDescription(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	return clean(doc.Find(`meta[property="og:description"]`).AttrOr("content", ""))
}

var (
	ogCountRe = regexp.MustCompile(`(?i)^([0-9]+)\s*(cores|threads|tmus|rops)$`)
	ogClockRe = regexp.MustCompile(`(?i)^[0-9]+(?:\.[0-9]+)?\s*(ghz|mhz)$`)
	ogPowerRe = regexp.MustCompile(`(?i)^[0-9]+\s*w$`)
	ogMemRe   = regexp.MustCompile(`(?i)^[0-9]+\s*(mb|gb)\s+(gddr[0-9]x?|hbm[0-9e]*)$`)
	ogBusRe   = regexp.MustCompile(`(?i)^[0-9]+\s*bit$`)
)

// ogPairs turns a summary such as "Raphael, 16 Cores, 32 Threads, 4.5 GHz,
// 170 W" into labelled pairs. Only the first clock is used.
func ogPairs(ct model.ComponentType, desc string) []pair {
	if desc == "" {
		return nil
	}
	var pairs []pair
	clockSeen := false
	for i, part := range strings.Split(desc, ",") {
		part = clean(part)
		switch {
		case part == "":
		case ogCountRe.MatchString(part):
			m := ogCountRe.FindStringSubmatch(part)
			label := strings.ToLower(m[2])
			if label == "cores" && ct == model.ComponentGPU {
				label = "shading units"
			}
			pairs = append(pairs, pair{label: label, value: m[1]})
		case ogClockRe.MatchString(part):
			if !clockSeen {
				label := "base clock"
				if ct == model.ComponentGPU {
					label = "gpu clock"
				}
				pairs = append(pairs, pair{label: label, value: part})
				clockSeen = true
			}
		case ogPowerRe.MatchString(part):
			pairs = append(pairs, pair{label: "tdp", value: part})
		case ogMemRe.MatchString(part):
			m := ogMemRe.FindStringSubmatch(part)
			pairs = append(pairs,
				pair{label: "memory size", value: strings.TrimSpace(strings.TrimSuffix(part, m[2]))},
				pair{label: "memory type", value: strings.ToUpper(m[2])})
		case ogBusRe.MatchString(part):
			pairs = append(pairs, pair{label: "memory bus", value: part})
		case i == 0 && ct == model.ComponentCPU:
			pairs = append(pairs, pair{label: "codename", value: part})
		case i == 0 && ct == model.ComponentGPU:
			pairs = append(pairs, pair{label: "gpu name", value: part})
		}
	}
	return pairs
}

var mdSeparatorRe = regexp.MustCompile(`^\|?[\s:|-]+\|?$`)

// markdownPairs reads "| label | value |" table rows and "Label: value"
// lines from rendered markdown.
func markdownPairs(content string) []pair {
	var pairs []pair
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
		case strings.HasPrefix(line, "|"):
			if mdSeparatorRe.MatchString(line) {
				continue
			}
			cells := strings.Split(strings.Trim(line, "|"), "|")
			if len(cells) >= 2 {
				label := clean(strings.Trim(cells[0], "*_ "))
				value := clean(strings.Trim(cells[1], "*_ "))
				if label != "" && value != "" {
					pairs = append(pairs, pair{label: label, value: value})
				}
			}
		default:
			if p, ok := colonPair(strings.TrimLeft(line, "-*+ ")); ok {
				pairs = append(pairs, p)
			}
		}
	}
	return pairs
}
