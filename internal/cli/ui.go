package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/loupeteam/lpm/pkg/deps"
	"github.com/loupeteam/lpm/pkg/pipeline"
)

// =============================================================================
// Styles
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// Styles shared by the commands and the prompts.
var (
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Lines
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(StyleSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(StyleWarning.Render(iconWarning + " " + fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a path that was written.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a label padded to a fixed width, then value.
func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Report Display
// =============================================================================

// roleStyles colors package roles in listings.
var roleStyles = map[deps.Role]lipgloss.Style{
	deps.Project:    lipgloss.NewStyle().Foreground(colorCyan),
	deps.HMIProject: lipgloss.NewStyle().Foreground(colorCyan),
	deps.Program:    lipgloss.NewStyle().Foreground(colorBlue),
	deps.Package:    lipgloss.NewStyle().Foreground(colorBlue),
	deps.Library:    lipgloss.NewStyle().Foreground(colorGreen),
	deps.Undefined:  lipgloss.NewStyle().Foreground(colorDim),
}

// renderRole renders a role name in its color.
func renderRole(r deps.Role) string {
	if s, ok := roleStyles[r]; ok {
		return s.Render(r.String())
	}
	return r.String()
}

// printPackages prints one line per resolved package with its role.
func printPackages(report *pipeline.Report) {
	for _, ref := range report.Set().Refs() {
		fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(ref.FullName()) + " " + renderRole(report.Result.Role(ref)))
	}
}

// printCounts prints package and edge counts on a single line.
func printCounts(report *pipeline.Report) {
	parts := []string{fmt.Sprintf("%d packages", report.Set().Len())}
	if report.Result != nil && len(report.Result.Edges) > 0 {
		parts = append(parts, fmt.Sprintf("%d edges", len(report.Result.Edges)))
	}
	if len(report.Configs) > 0 {
		parts = append(parts, "deployed to "+strings.Join(report.Configs, ", "))
	}
	fmt.Println("  " + StyleDim.Render(strings.Join(parts, " · ")))
}

// printUndeployed tells the user nothing was deployed and how to fix it.
func printUndeployed() {
	printWarning("No deployment configurations are set, packages were not deployed")
	printNextStep("Choose the configurations to deploy to", appName+" configure")
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}
