package entities

// AnalysisStatus is the processing state reported by the analyzer.
type AnalysisStatus string

const (
	AnalysisComplete   AnalysisStatus = "complete"
	AnalysisIncomplete AnalysisStatus = "incomplete"
)

// Risk domains scored by the analyzer.
const (
	DomainTotal         = "total"
	DomainVulnerability = "vulnerability"
	DomainMalicious     = "malicious"
	DomainEngineering   = "engineering"
	DomainLicense       = "license"
	DomainAuthor        = "author"
)

// AnalysisRequest is submitted to the analyzer.
type AnalysisRequest struct {
	Label    string
	Project  string
	Group    string
	Packages []PackageDescriptor
}

// RiskScores holds per-domain scores in [0, 1]; lower means riskier.
type RiskScores struct {
	Total         float64 `json:"total"`
	Vulnerability float64 `json:"vulnerability"`
	Malicious     float64 `json:"malicious"`
	Engineering   float64 `json:"engineering"`
	License       float64 `json:"license"`
	Author        float64 `json:"author"`
}

// ByDomain returns the score for the given domain and whether the domain is known.
func (r RiskScores) ByDomain(domain string) (float64, bool) {
	switch domain {
	case DomainTotal:
		return r.Total, true
	case DomainVulnerability:
		return r.Vulnerability, true
	case DomainMalicious:
		return r.Malicious, true
	case DomainEngineering:
		return r.Engineering, true
	case DomainLicense:
		return r.License, true
	case DomainAuthor:
		return r.Author, true
	default:
		return 0, false
	}
}

// Issue is a single finding reported for a package.
type Issue struct {
	Title    string `json:"title"`
	Severity string `json:"severity"`
	Domain   string `json:"domain"`
}

// AnalyzedPackage is a package together with the analyzer's verdict on it.
type AnalyzedPackage struct {
	PackageDescriptor
	RiskScores RiskScores `json:"risk_scores"`
	Issues     []Issue    `json:"issues"`
}

// AnalysisResult is the analyzer's response to an AnalysisRequest.
type AnalysisResult struct {
	JobID    string            `json:"job_id"`
	Status   AnalysisStatus    `json:"status"`
	Packages []AnalyzedPackage `json:"packages"`
}

// MinimumAnalyzerVersion is the oldest analyzer CLI accepted.
const MinimumAnalyzerVersion = "v6.1.0"
