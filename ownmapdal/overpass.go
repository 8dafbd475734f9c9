package ownmapdal

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/httpextra"
	"github.com/paulmach/orb"
	"github.com/simon04/OpenCartonaut/ownmap"
)

const DefaultOverpassInterpreterURL = "https://overpass-api.de/api/interpreter"

const bboxPlaceholder = "{{bbox}}"

// DefaultQuery fetches the municipality of Gars am Kamp, with an inline GeoJSON town marker.
const DefaultQuery = `/// @subpart foreground
relation(4740507);>;out geom;
/// @subpart background
//nwr[railway=rail]({{bbox}});out geom;
/// @subpart town
/// @type geojson
{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": { "name": "Gars am Kamp", "place": "town" },
      "geometry": { "type": "Point", "coordinates": [15.6594592, 48.5951053] }
    }
  ]
}`

var (
	subpartDirectiveRegexp  = regexp.MustCompile(`///\s*@subpart ([^\n]+)`)
	geojsonDirectiveRegexp  = regexp.MustCompile(`///\s*@type geojson`)
	tripleSlashCommentRegex = regexp.MustCompile(`///.*`)
	lineCommentRegexp       = regexp.MustCompile(`(?m)^\s*//.*$`)
)

// QuerySection is the part of a query belonging to one subpart.
// Start is the byte offset of the section in the (trimmed) query.
type QuerySection struct {
	Subpart string `json:"subpart,omitempty"`
	Query   string `json:"query"`
	Start   int    `json:"start"`
}

// IsGeoJSON reports whether the section holds inline GeoJSON instead of Overpass QL.
func (s QuerySection) IsGeoJSON() bool {
	return geojsonDirectiveRegexp.MatchString(s.Query)
}

// Body returns the section text without "///" directive lines.
func (s QuerySection) Body() string {
	return strings.TrimSpace(tripleSlashCommentRegex.ReplaceAllString(s.Query, ""))
}

// IsBlank reports whether the section contains nothing but comments.
func (s QuerySection) IsBlank() bool {
	return strings.TrimSpace(lineCommentRegexp.ReplaceAllString(s.Query, "")) == ""
}

// SplitQuerySubpart splits a query at its "/// @subpart <name>" lines.
// Text before the first marker becomes a section without subpart, unless it is blank.
func SplitQuerySubpart(query string) []QuerySection {
	if !subpartDirectiveRegexp.MatchString(query) {
		return []QuerySection{{Query: query}}
	}

	query = strings.TrimSpace(query)
	matches := subpartDirectiveRegexp.FindAllStringSubmatchIndex(query, -1)

	sections := make([]QuerySection, 0, len(matches)+1)
	if first := strings.TrimSpace(query[:matches[0][0]]); first != "" {
		sections = append(sections, QuerySection{Query: first})
	}

	for i, match := range matches {
		end := len(query)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		sections = append(sections, QuerySection{
			Subpart: strings.TrimSpace(query[match[2]:match[3]]),
			Query:   query[match[0]:end],
			Start:   match[0],
		})
	}

	return sections
}

// SubstituteBBox replaces every "{{bbox}}" with the bound in Overpass order.
func SubstituteBBox(query string, bound orb.Bound) string {
	return strings.ReplaceAll(query, bboxPlaceholder, ownmap.FormatOverpassBBox(bound))
}

// OverpassError is returned when the interpreter responds with a non-2xx status.
type OverpassError struct {
	StatusCode int
	Message    string
}

func (e *OverpassError) Error() string {
	return e.Message
}

type OverpassClient struct {
	doer           httpextra.Doer
	interpreterURL string
}

func NewOverpassClient(doer httpextra.Doer, interpreterURL string) *OverpassClient {
	if interpreterURL == "" {
		interpreterURL = DefaultOverpassInterpreterURL
	}
	return &OverpassClient{doer, interpreterURL}
}

func (c *OverpassClient) InterpreterURL() string {
	return c.interpreterURL
}

// Execute sends the query to the interpreter and returns the raw response body (OSM XML).
func (c *OverpassClient) Execute(ctx context.Context, query string) ([]byte, errorsx.Error) {
	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.interpreterURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, errorsx.Wrap(err, "interpreter", c.interpreterURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errorsx.Wrap(err, "interpreter", c.interpreterURL)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorsx.Wrap(&OverpassError{
			StatusCode: resp.StatusCode,
			Message:    overpassErrorMessage(body, resp.StatusCode),
		}, "interpreter", c.interpreterURL)
	}

	return body, nil
}

func overpassErrorMessage(body []byte, statusCode int) string {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "Error") {
			return strings.TrimSpace(line)
		}
	}

	return fmt.Sprintf("overpass request failed with status %d (%s)", statusCode, http.StatusText(statusCode))
}
