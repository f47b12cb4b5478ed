// Package university holds the embedded reference dataset of known universities and
// their academic departments. The dataset is the fallback source for institutions that
// have not yet been persisted, and the only source for department listings.
package university

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed data/universities.json data/departments.json
var datasetFS embed.FS

// Turkish casing is used because the dataset indexes department lists by the
// uppercased Turkish rendering of the institution name (dotted İ, dotless I).
var turkishUpper = cases.Upper(language.Turkish)

// Record describes one university in the reference dataset.
type Record struct {
	Name          string   `json:"name"`
	Domains       []string `json:"domains"`
	Country       string   `json:"country"`
	AlphaTwoCode  string   `json:"alpha_two_code"`
	StateProvince string   `json:"state-province"`
}

// PrimaryDomain returns the first listed domain, or an empty string.
func (r Record) PrimaryDomain() string {
	if len(r.Domains) == 0 {
		return ""
	}
	return r.Domains[0]
}

// Dataset is the in-memory reference dataset loaded at startup.
type Dataset struct {
	records     []Record
	byDomain    map[string]*Record
	departments map[string][]string
}

// Load parses the embedded dataset files.
func Load() (*Dataset, error) {
	rawUniversities, err := datasetFS.ReadFile("data/universities.json")
	if err != nil {
		return nil, fmt.Errorf("university: read dataset: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(rawUniversities, &records); err != nil {
		return nil, fmt.Errorf("university: parse dataset: %w", err)
	}

	rawDepartments, err := datasetFS.ReadFile("data/departments.json")
	if err != nil {
		return nil, fmt.Errorf("university: read departments: %w", err)
	}

	departments := make(map[string][]string)
	if err := json.Unmarshal(rawDepartments, &departments); err != nil {
		return nil, fmt.Errorf("university: parse departments: %w", err)
	}

	ds := &Dataset{
		records:     records,
		byDomain:    make(map[string]*Record),
		departments: departments,
	}
	for i := range ds.records {
		for _, domain := range ds.records[i].Domains {
			domain = strings.ToLower(strings.TrimSpace(domain))
			if domain == "" {
				continue
			}
			if _, exists := ds.byDomain[domain]; !exists {
				ds.byDomain[domain] = &ds.records[i]
			}
		}
	}

	return ds, nil
}

// All returns every record in the dataset.
func (d *Dataset) All() []Record {
	return d.records
}

// FindByDomain returns the first record matching any of the candidate domains.
// Candidates are expected in most-specific-first order.
func (d *Dataset) FindByDomain(candidates []string) (Record, bool) {
	for _, candidate := range candidates {
		if rec, ok := d.byDomain[strings.ToLower(strings.TrimSpace(candidate))]; ok {
			return *rec, true
		}
	}
	return Record{}, false
}

// Search returns up to limit records whose name or any domain contains the term,
// case-insensitive. Results keep dataset order.
func (d *Dataset) Search(term string, limit int) []Record {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || limit <= 0 {
		return nil
	}

	var matches []Record
	for _, rec := range d.records {
		if len(matches) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(rec.Name), term) {
			matches = append(matches, rec)
			continue
		}
		for _, domain := range rec.Domains {
			if strings.Contains(strings.ToLower(domain), term) {
				matches = append(matches, rec)
				break
			}
		}
	}
	return matches
}

// Departments returns the department names for a university, looked up first by the
// Turkish-uppercased name and then by the raw name. Unknown names yield an empty list.
func (d *Dataset) Departments(name string) []string {
	normalized := NormalizeName(name)
	if depts, ok := d.departments[normalized]; ok {
		return depts
	}
	if depts, ok := d.departments[name]; ok {
		return depts
	}
	return []string{}
}

// Names returns the sorted list of university names that have department data.
func (d *Dataset) Names() []string {
	names := make([]string, 0, len(d.departments))
	for name := range d.departments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NormalizeName uppercases a university name using Turkish casing rules.
func NormalizeName(name string) string {
	return strings.TrimSpace(turkishUpper.String(name))
}
