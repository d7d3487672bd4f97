package render

import (
	"encoding/json"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	sectionHeaderStyle = color.New(color.Bold, color.FgHiWhite)
	labelStyle         = color.New(color.FgCyan)
	addressStyle       = color.New(color.FgWhite)
	faintStyle         = color.New(color.Faint)
	successStyle       = color.New(color.FgGreen)
	failureStyle       = color.New(color.FgRed)
	pendingStyle       = color.New(color.FgYellow)

	ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[mGKHF]`)
)

// FormatError formats an error message with the error icon
func FormatError(message string) string {
	if len(message) > 0 {
		message = strings.ToUpper(message[:1]) + message[1:]
	}
	return color.New(color.FgRed).Sprintf("❌ %s", message)
}

// FormatSuccess formats a success message with the success icon
func FormatSuccess(message string) string {
	return color.New(color.FgGreen).Sprintf("✅ %s", message)
}

// FormatWarning formats a warning message with the warning icon
func FormatWarning(message string) string {
	return color.New(color.FgYellow).Sprintf("⚠️  %s", message)
}

// HumanLabel turns a step label into words: "engineeringManager" -> "Engineering Manager",
// "haikuNFT" -> "Haiku NFT"
func HumanLabel(label string) string {
	runes := []rune(label)
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
		boundary := (unicode.IsLower(prev) && unicode.IsUpper(cur)) ||
			(unicode.IsUpper(prev) && unicode.IsUpper(cur) && nextLower) ||
			(unicode.IsDigit(prev) && unicode.IsUpper(cur)) ||
			cur == '-' || cur == '_'
		if boundary {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	words = append(words, string(runes[start:]))

	titler := cases.Title(language.English)
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, "-_")
		if w == "" {
			continue
		}
		if strings.ToUpper(w) == w {
			// acronyms stay as they are
			out = append(out, w)
			continue
		}
		out = append(out, titler.String(w))
	}
	return strings.Join(out, " ")
}

// stripAnsiCodes removes ANSI escape sequences from a string
func stripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// newTable creates a borderless table in the same style as the list views
func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateHeader = true
	t.Style().Options.SeparateColumns = false
	t.Style().Box.PaddingRight = "   "
	t.Style().Box.PaddingLeft = ""
	return t
}

// WriteJSON renders v as indented JSON
func WriteJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
