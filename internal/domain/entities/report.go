package entities

import (
	"fmt"
	"strings"
)

// ReportMarker is embedded in every report so that previous reports can be
// recognised on the pull request.
const ReportMarker = "<!-- depgate-report -->"

// RenderReport builds the markdown report posted to the CI platform.
func RenderReport(verdict Verdict, result AnalysisResult, analyzed []PackageDescriptor) string {
	var sb strings.Builder

	sb.WriteString(ReportMarker + "\n")
	switch {
	case verdict.Code == ReturnFail:
		sb.WriteString("## depgate: dependency risk thresholds failed\n\n")
	case result.Status == AnalysisIncomplete:
		sb.WriteString("## depgate: analysis incomplete\n\n")
		sb.WriteString("Some packages are still being processed. Re-run the job later for a complete verdict.\n\n")
	default:
		sb.WriteString("## depgate: all dependencies passed\n\n")
	}

	fmt.Fprintf(&sb, "Analyzed %d new dependencies", len(analyzed))
	if result.JobID != "" {
		fmt.Fprintf(&sb, " (job `%s`)", result.JobID)
	}
	sb.WriteString(".\n")

	if len(verdict.Failures) == 0 {
		return sb.String()
	}

	sb.WriteString("\n| Package | Version | Ecosystem | Domain | Score | Threshold |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, failure := range verdict.Failures {
		for _, domain := range failure.Failures {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %d | %d |\n",
				failure.Package.Name, failure.Package.Version, failure.Package.Ecosystem,
				domain.Domain, domain.Score, domain.Threshold)
		}
	}

	var issues []string
	for _, failure := range verdict.Failures {
		for _, issue := range failure.Package.Issues {
			issues = append(issues, fmt.Sprintf("- **%s** `%s`: [%s] %s",
				failure.Package.Name, failure.Package.Version, issue.Severity, issue.Title))
		}
	}
	if len(issues) > 0 {
		sb.WriteString("\n### Issues\n\n")
		sb.WriteString(strings.Join(issues, "\n"))
		sb.WriteString("\n")
	}

	return sb.String()
}
