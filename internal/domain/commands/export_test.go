package commands

// ClassifyByProvenance exports classifyByProvenance for testing.
var ClassifyByProvenance = classifyByProvenance //nolint:gochecknoglobals // test export

// CheckAnalyzerVersion exports checkAnalyzerVersion for testing.
var CheckAnalyzerVersion = checkAnalyzerVersion //nolint:gochecknoglobals // test export
