package reports

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
)

const reportSchema = `{
	"type": "object",
	"required": ["title", "summary", "sections"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"summary": {"type": "string", "minLength": 1},
		"sections": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["title", "content"],
				"properties": {
					"title": {"type": "string"},
					"content": {"type": "string"},
					"metrics": {
						"type": "array",
						"items": {
							"type": "object",
							"required": ["label", "value"],
							"properties": {
								"label": {"type": "string"},
								"value": {"type": ["string", "number"]},
								"change": {"type": ["string", "number", "null"]}
							}
						}
					}
				}
			}
		},
		"recommendations": {
			"type": "array",
			"items": {"type": "string"}
		}
	}
}`

var compiledSchema = mustCompileSchema(reportSchema)

func mustCompileSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic("reports: invalid report schema: " + err.Error())
	}
	return s
}

type aiMetric struct {
	Label  string `json:"label"`
	Value  any    `json:"value"`
	Change any    `json:"change"`
}

type aiSection struct {
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Metrics []aiMetric `json:"metrics"`
}

type aiReport struct {
	Title           string      `json:"title"`
	Summary         string      `json:"summary"`
	Sections        []aiSection `json:"sections"`
	Recommendations []string    `json:"recommendations"`
}

// Parse turns raw model output into a report. It reports true when the
// output was usable; otherwise it returns Fallback(data) and false.
func Parse(raw string, data ReportData) (domain.FormattedReport, bool) {
	report, ok := decode(raw)
	if !ok {
		return Fallback(data), false
	}
	return report, true
}

// maxCandidates bounds how many opening braces decode tries.
const maxCandidates = 32

// decode tries each balanced object in raw, in order, until one is a valid
// report. Prose before the report may contain stray or unclosed braces.
func decode(raw string) (domain.FormattedReport, bool) {
	offset := 0
	for range maxCandidates {
		i := strings.IndexByte(raw[offset:], '{')
		if i < 0 {
			break
		}
		start := offset + i
		if span, ok := balancedAt(raw, start); ok {
			if report, ok := decodeSpan(span); ok {
				return report, true
			}
		}
		offset = start + 1
	}
	return domain.FormattedReport{}, false
}

func decodeSpan(span string) (domain.FormattedReport, bool) {
	clean := Sanitize(span)

	result, err := compiledSchema.Validate(gojsonschema.NewStringLoader(clean))
	if err != nil || !result.Valid() {
		return domain.FormattedReport{}, false
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(clean)))
	dec.UseNumber()
	var parsed aiReport
	if err := dec.Decode(&parsed); err != nil {
		return domain.FormattedReport{}, false
	}

	report := domain.FormattedReport{
		Title:    strings.TrimSpace(parsed.Title),
		Summary:  strings.TrimSpace(parsed.Summary),
		Sections: make([]domain.ReportSection, 0, len(parsed.Sections)),
	}
	if report.Title == "" || report.Summary == "" {
		return domain.FormattedReport{}, false
	}

	for _, s := range parsed.Sections {
		section := domain.ReportSection{
			Title:   strings.TrimSpace(s.Title),
			Content: strings.TrimSpace(s.Content),
		}
		if section.Title == "" && section.Content == "" {
			continue
		}
		for _, m := range s.Metrics {
			label := strings.TrimSpace(m.Label)
			if label == "" {
				continue
			}
			section.Metrics = append(section.Metrics, domain.ReportMetric{
				Label:  label,
				Value:  scalarString(m.Value),
				Change: scalarString(m.Change),
			})
		}
		report.Sections = append(report.Sections, section)
	}
	if len(report.Sections) == 0 {
		return domain.FormattedReport{}, false
	}

	for _, r := range parsed.Recommendations {
		if r = strings.TrimSpace(r); r != "" {
			report.Recommendations = append(report.Recommendations, r)
		}
	}
	return report, true
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}
