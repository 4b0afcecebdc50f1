package entities

import (
	"fmt"
	"math"
)

// ReturnCode is the process exit code of an analysis run.
type ReturnCode int

const (
	ReturnPass       ReturnCode = 0
	ReturnFail       ReturnCode = 1
	ReturnFatal      ReturnCode = 2
	ReturnIncomplete ReturnCode = 5
)

const scoreScale = 100

// Thresholds are the minimum acceptable scores per risk domain, from 0 to
// 100. Zero disables the domain.
type Thresholds struct {
	Total         int `yaml:"total"`
	Vulnerability int `yaml:"vulnerability"`
	Malicious     int `yaml:"malicious"`
	Engineering   int `yaml:"engineering"`
	License       int `yaml:"license"`
	Author        int `yaml:"author"`
}

// Validate rejects thresholds outside of [0, 100].
func (t Thresholds) Validate() error {
	for domain, value := range t.byDomain() {
		if value < 0 || value > scoreScale {
			return fmt.Errorf("threshold %q must be between 0 and %d, got %d", domain, scoreScale, value)
		}
	}
	return nil
}

func (t Thresholds) byDomain() map[string]int {
	return map[string]int{
		DomainTotal:         t.Total,
		DomainVulnerability: t.Vulnerability,
		DomainMalicious:     t.Malicious,
		DomainEngineering:   t.Engineering,
		DomainLicense:       t.License,
		DomainAuthor:        t.Author,
	}
}

// domainOrder keeps failure output stable.
var domainOrder = []string{ //nolint:gochecknoglobals // fixed ordering table
	DomainTotal, DomainVulnerability, DomainMalicious, DomainEngineering, DomainLicense, DomainAuthor,
}

// DomainFailure is a single domain in which a package scored below its threshold.
type DomainFailure struct {
	Domain    string
	Score     int
	Threshold int
}

// PackageFailure groups every failed domain of a package.
type PackageFailure struct {
	Package  AnalyzedPackage
	Failures []DomainFailure
}

// Verdict is the outcome of evaluating an analysis against thresholds.
type Verdict struct {
	Code     ReturnCode
	Failures []PackageFailure
}

// Evaluate checks every analyzed package against the thresholds. Failures
// take precedence over an incomplete analysis.
func (t Thresholds) Evaluate(result AnalysisResult, failOnIncomplete bool) Verdict {
	limits := t.byDomain()

	var failures []PackageFailure
	for _, pkg := range result.Packages {
		var domains []DomainFailure
		for _, domain := range domainOrder {
			limit := limits[domain]
			if limit == 0 {
				continue
			}
			raw, _ := pkg.RiskScores.ByDomain(domain)
			score := int(math.Round(raw * scoreScale))
			if score < limit {
				domains = append(domains, DomainFailure{Domain: domain, Score: score, Threshold: limit})
			}
		}
		if len(domains) > 0 {
			failures = append(failures, PackageFailure{Package: pkg, Failures: domains})
		}
	}

	switch {
	case len(failures) > 0:
		return Verdict{Code: ReturnFail, Failures: failures}
	case result.Status == AnalysisIncomplete && failOnIncomplete:
		return Verdict{Code: ReturnIncomplete}
	default:
		return Verdict{Code: ReturnPass}
	}
}
