package mcp

import (
	"fmt"
	"strings"
)

// FormatSearchResults formats search_packages output as markdown.
func FormatSearchResults(out SearchPackagesOutput) string {
	if len(out.Results) == 0 {
		return fmt.Sprintf("No applications found for \"%s\"", out.Query)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## Applications matching \"%s\"\n\n", out.Query))
	sb.WriteString(countLine(len(out.Results), out.Total, "result"))

	for i, e := range out.Results {
		formatEntry(&sb, i+1, e)
	}
	return sb.String()
}

// FormatInstalled formats list_installed output as markdown.
func FormatInstalled(out ListInstalledOutput) string {
	if len(out.Packages) == 0 {
		return "No installed applications found."
	}

	var sb strings.Builder
	sb.WriteString("## Installed Applications\n\n")
	sb.WriteString(countLine(len(out.Packages), out.Total, "package"))

	for i, e := range out.Packages {
		formatEntry(&sb, i+1, e)
	}
	return sb.String()
}

// FormatPackage formats show_package output as markdown.
func FormatPackage(out ShowPackageOutput) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## %s\n\n", out.Name))
	if out.Summary != "" {
		sb.WriteString(out.Summary + "\n\n")
	}
	sb.WriteString(fmt.Sprintf("**Backend:** %s  \n**ID:** `%s`  \n**Icon:** %s `%s`\n", out.Backend, out.ID, out.Icon.Kind, out.Icon.Value))

	for _, c := range out.Components {
		sb.WriteString(fmt.Sprintf("\n### %s (`%s`)\n\n", c.Name, c.ID))
		if c.Summary != "" {
			sb.WriteString(c.Summary + "\n\n")
		}
		if c.Description != "" {
			sb.WriteString(c.Description + "\n")
		}
	}
	if len(out.Components) == 0 {
		sb.WriteString("\nNo appstream components.\n")
	}
	return sb.String()
}

func countLine(shown, total int, noun string) string {
	line := fmt.Sprintf("Found %d %s", total, noun)
	if total != 1 {
		line += "s"
	}
	if shown < total {
		line += fmt.Sprintf(", showing %d", shown)
	}
	return line + "\n\n"
}

func formatEntry(sb *strings.Builder, n int, e PackageEntry) {
	sb.WriteString(fmt.Sprintf("%d. **%s**", n, e.Name))
	if e.Version != "" {
		sb.WriteString(" " + e.Version)
	}
	id := e.ID
	if e.ComponentID != "" {
		id = e.ComponentID
	}
	sb.WriteString(fmt.Sprintf(" (%s: `%s`)", e.Backend, id))
	if e.Weight != nil {
		sb.WriteString(fmt.Sprintf(" [tier %d]", *e.Weight))
	}
	if e.Summary != "" {
		sb.WriteString(" - " + e.Summary)
	}
	sb.WriteString("\n")
}
