package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"specter/internal/busfactor"
	"specter/internal/coupling"
	"specter/internal/hotspots"
	"specter/internal/risk"
	"specter/internal/trajectory"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
	FormatYAML  OutputFormat = "yaml"
)

// FormatResponse renders a response in the requested output format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// printResponse formats and prints a command's payload on stdout
func printResponse(resp interface{}, format string) {
	output, err := FormatResponse(resp, OutputFormat(format))
	if err != nil {
		exitErr("formatting output", err)
	}
	fmt.Println(output)
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatYAML(resp interface{}) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *ScanResponseCLI:
		return formatScanHuman(v), nil
	case *StatusResponseCLI:
		return formatStatusHuman(v), nil
	case *ComplexityResponseCLI:
		return formatComplexityHuman(v), nil
	case *hotspots.Report:
		return formatHotspotsHuman(v), nil
	case *busfactor.Report:
		return formatBusFactorHuman(v), nil
	case *coupling.Analysis:
		return formatCouplingHuman(v), nil
	case *risk.Score:
		return formatRiskHuman(v), nil
	case *trajectory.Trajectory:
		return formatTrajectoryHuman(v), nil
	case *trajectory.Velocity:
		return formatVelocityHuman(v), nil
	case *SnapshotsResponseCLI:
		return formatSnapshotsHuman(v), nil
	default:
		// Unknown types fall back to JSON
		return formatJSON(resp)
	}
}

func header(b *strings.Builder, title string) {
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n" + title + ":\n")
	for _, item := range items {
		b.WriteString("  - " + item + "\n")
	}
}

func formatScanHuman(r *ScanResponseCLI) string {
	var b strings.Builder
	header(&b, "Scan complete")
	b.WriteString(fmt.Sprintf("  Files:    %d\n", r.FileCount))
	b.WriteString(fmt.Sprintf("  Lines:    %d\n", r.TotalLines))
	b.WriteString(fmt.Sprintf("  Nodes:    %d\n", r.NodeCount))
	b.WriteString(fmt.Sprintf("  Edges:    %d\n", r.EdgeCount))
	b.WriteString(fmt.Sprintf("  Duration: %dms\n", r.DurationMs))
	if len(r.Languages) > 0 {
		b.WriteString("  Languages:\n")
		for lang, count := range r.Languages {
			b.WriteString(fmt.Sprintf("    %-12s %d\n", lang, count))
		}
	}
	if r.SnapshotID != "" {
		b.WriteString(fmt.Sprintf("  Snapshot: %s (health %d)\n", r.SnapshotID, r.HealthScore))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatStatusHuman(r *StatusResponseCLI) string {
	var b strings.Builder
	header(&b, "Specter status")
	if !r.HasGraph {
		b.WriteString("  No knowledge graph persisted; run: specter scan\n")
		return strings.TrimRight(b.String(), "\n")
	}
	b.WriteString(fmt.Sprintf("  Scanned:  %s\n", r.ScannedAt))
	b.WriteString(fmt.Sprintf("  Files:    %d\n", r.FileCount))
	b.WriteString(fmt.Sprintf("  Nodes:    %d\n", r.NodeCount))
	b.WriteString(fmt.Sprintf("  Edges:    %d\n", r.EdgeCount))
	if r.Stale {
		b.WriteString(fmt.Sprintf("  Stale:    yes (%s)\n", r.StaleReason))
	} else {
		b.WriteString("  Stale:    no\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatComplexityHuman(r *ComplexityResponseCLI) string {
	var b strings.Builder
	header(&b, "Complexity report")
	b.WriteString(fmt.Sprintf("  Symbols: %d   Total: %d   Avg: %.2f   Max: %d\n\n",
		r.Report.SymbolCount, r.Report.TotalComplexity, r.Report.AvgComplexity, r.Report.MaxComplexity))

	b.WriteString("Distribution:\n")
	for _, cat := range categoryOrder {
		b.WriteString(fmt.Sprintf("  %s %-8s %d\n", cat.Emoji(), cat, r.Report.Distribution[cat]))
	}

	if len(r.Report.TopSymbols) > 0 {
		b.WriteString("\nMost complex symbols:\n")
		for _, s := range r.Report.TopSymbols {
			b.WriteString(fmt.Sprintf("  %s %3d  %s (%s:%d)\n", s.Category.Emoji(), s.Complexity, s.Name, s.FilePath, s.LineStart))
		}
	}

	if len(r.Targets) > 0 {
		b.WriteString("\nRefactor targets:\n")
		for _, t := range r.Targets {
			flag := ""
			if t.LongFunction {
				flag = " [long function]"
			}
			b.WriteString(fmt.Sprintf("  [%s]%s %s\n", t.Priority, flag, t.Suggestion))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatHotspotsHuman(r *hotspots.Report) string {
	var b strings.Builder
	header(&b, "Hotspots")
	b.WriteString(fmt.Sprintf("  Files analyzed: %d\n", r.FileCount))
	b.WriteString(fmt.Sprintf("  Refactor candidates: %d   Complex-stable: %d   Churning-simple: %d   Healthy: %d\n\n",
		r.Quadrants[hotspots.QuadrantRefactor],
		r.Quadrants[hotspots.QuadrantComplexStable],
		r.Quadrants[hotspots.QuadrantChurningSimple],
		r.Quadrants[hotspots.QuadrantHealthy]))
	for _, h := range r.Hotspots {
		b.WriteString(fmt.Sprintf("  %3d  %-22s cx=%d churn=%d  %s\n", h.Score, h.Quadrant, h.Complexity, h.Churn, h.FilePath))
	}
	writeList(&b, "Insights", r.Insights)
	return strings.TrimRight(b.String(), "\n")
}

func formatBusFactorHuman(r *busfactor.Report) string {
	var b strings.Builder
	header(&b, "Bus factor")
	if !r.Available {
		writeList(&b, "Insights", r.Insights)
		return strings.TrimRight(b.String(), "\n")
	}
	b.WriteString(fmt.Sprintf("  Overall bus factor: %d\n\n", r.OverallBusFactor))
	for _, area := range r.Areas {
		b.WriteString(fmt.Sprintf("  [%s] %s  bus factor %d, %d file(s)\n", area.Criticality, area.Name, area.BusFactor, area.FileCount))
		for _, c := range area.Contributors {
			b.WriteString(fmt.Sprintf("      %3d%%  %s\n", int(c.Share*100), c.Name))
		}
		if area.Remediation != "" {
			b.WriteString("      -> " + area.Remediation + "\n")
		}
	}
	writeList(&b, "Insights", r.Insights)
	return strings.TrimRight(b.String(), "\n")
}

func formatCouplingHuman(r *coupling.Analysis) string {
	var b strings.Builder
	header(&b, "Change coupling: "+r.TargetFile)
	b.WriteString(fmt.Sprintf("  Commits analyzed: %d\n\n", r.CommitCount))
	for _, c := range r.Couplings {
		marker := ""
		if c.Hidden {
			marker = " [hidden]"
		}
		b.WriteString(fmt.Sprintf("  %3d%% (%d/%d)%s %s\n", int(c.CouplingStrength*100), c.SharedCommits, c.TotalCommits, marker, c.FilePath))
	}
	writeList(&b, "Insights", r.Insights)
	writeList(&b, "Recommendations", r.Recommendations)
	return strings.TrimRight(b.String(), "\n")
}

func formatRiskHuman(r *risk.Score) string {
	var b strings.Builder
	header(&b, "Change risk")
	b.WriteString(fmt.Sprintf("  Overall: %d/100 (%s)\n", r.Overall, r.Level))
	b.WriteString("  " + r.Summary + "\n")
	if len(r.Factors) > 0 {
		b.WriteString("\nFactors:\n")
		for _, f := range r.Factors {
			b.WriteString(fmt.Sprintf("  %-18s %3d x %.2f  %s\n", f.Name, f.Score, f.Weight, f.Details))
		}
	}
	writeList(&b, "Recommendations", r.Recommendations)
	return strings.TrimRight(b.String(), "\n")
}

func formatTrajectoryHuman(r *trajectory.Trajectory) string {
	var b strings.Builder
	header(&b, "Health trajectory")
	b.WriteString(fmt.Sprintf("  Direction:  %s\n", r.Direction))
	b.WriteString(fmt.Sprintf("  Slope:      %+.2f points/week\n", r.SlopePerWeek))
	b.WriteString(fmt.Sprintf("  Confidence: %.2f (%d snapshots over %.1f weeks)\n", r.Confidence, r.DataPoints, r.SpanWeeks))
	if len(r.Scenarios) > 0 {
		b.WriteString("\nProjections:\n")
		for _, s := range r.Scenarios {
			b.WriteString(fmt.Sprintf("  %-9s %.1f (optimistic %.1f, pessimistic %.1f)\n", s.Label, s.Projected, s.Optimistic, s.Pessimistic))
		}
	}
	writeList(&b, "Insights", r.Insights)
	return strings.TrimRight(b.String(), "\n")
}

func formatVelocityHuman(r *trajectory.Velocity) string {
	var b strings.Builder
	header(&b, "Velocity")
	if !r.Available {
		writeList(&b, "Insights", r.Insights)
		return strings.TrimRight(b.String(), "\n")
	}
	b.WriteString(fmt.Sprintf("  Comparing snapshot %s -> %s (%.0f days)\n\n", r.From, r.To, r.SpanDays))
	for _, c := range r.Changes {
		b.WriteString(fmt.Sprintf("  %-14s %10.1f -> %-10.1f %+d%%\n", c.Metric, c.From, c.To, c.PercentChange))
	}
	if len(r.FileEstimates) > 0 {
		b.WriteString("\nEstimated per-file movement:\n")
		for _, f := range r.FileEstimates {
			b.WriteString(fmt.Sprintf("  %+4d%%  cx %d  %s\n", f.PercentChange, f.Current, f.FilePath))
		}
	}
	writeList(&b, "Insights", r.Insights)
	return strings.TrimRight(b.String(), "\n")
}

func formatSnapshotsHuman(r *SnapshotsResponseCLI) string {
	var b strings.Builder
	header(&b, "Health snapshots")
	if len(r.Snapshots) == 0 {
		b.WriteString("  No snapshots recorded; run: specter scan\n")
		return strings.TrimRight(b.String(), "\n")
	}
	for _, s := range r.Snapshots {
		b.WriteString(fmt.Sprintf("  %s  health=%3d avg=%.2f files=%d hotspots=%d\n",
			s.Timestamp.Format("2006-01-02 15:04"), s.Metrics.HealthScore, s.Metrics.AvgComplexity, s.Metrics.FileCount, s.Metrics.HotspotCount))
	}
	return strings.TrimRight(b.String(), "\n")
}
