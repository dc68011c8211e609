// Package markdown maintains the daily plan journal: one Obsidian-compatible
// file per day with plans grouped under category headings.
package markdown

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-ports/focusflow/internal/models"
)

// FileName returns the journal file name for a day.
func FileName(dateStr string) string { return dateStr + "-plans.md" }

// planMarker tags a rendered section with its plan ID so it can be found again.
func planMarker(id string) string { return "<!-- plan:" + id + " -->" }

// RenderSection produces the ### block for a plan: a summary line followed by
// one checkbox per subtask.
func RenderSection(p *models.Plan) string {
	var sb strings.Builder
	sb.WriteString("### ")
	sb.WriteString(oneLine(p.RawText))
	sb.WriteString("\n")
	sb.WriteString(planMarker(p.ID))
	fmt.Fprintf(&sb, "\n**Slot:** %d min | **Total:** %d min | **XP:** %d", p.SlotMinutes, p.TotalMinutes, p.TotalXP)
	if p.Mood != "" {
		sb.WriteString(" | **Mood:** ")
		sb.WriteString(p.Mood)
	}
	sb.WriteString("\n")
	for _, t := range p.Tasks {
		box := "[ ]"
		if t.Done() {
			box = "[x]"
		}
		fmt.Fprintf(&sb, "\n- %s %s (%d min, %s, %d XP)", box, t.Title, t.EstimatedMinutes, t.Difficulty, t.XP)
	}
	return sb.String()
}

// WritePlan creates or appends to <dateStr>-plans.md inside vaultDir and
// returns the file path. The directory must already exist.
func WritePlan(vaultDir string, p *models.Plan, dateStr string) (string, error) {
	filePath := filepath.Join(vaultDir, FileName(dateStr))
	section := RenderSection(p)

	var content string
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		content = createJournal(p, dateStr, section)
	} else {
		existing, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		content = appendToJournal(string(existing), p, section)
	}

	if err := os.WriteFile(filePath, []byte(content), 0o644); err != nil { // #nosec G306 -- journal files hold redacted plan text only
		return "", err
	}
	return filePath, nil
}

// CheckTask ticks the checkbox at position (1-based) inside the section of
// planID in filePath. Returns false when the section or line is not found.
func CheckTask(filePath, planID string, position int) (bool, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return false, err
	}
	lines := strings.Split(string(data), "\n")
	marker := planMarker(planID)

	start := -1
	for i, line := range lines {
		if line == marker {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return false, nil
	}

	n := 0
	for i := start; i < len(lines); i++ {
		line := lines[i]
		if strings.HasPrefix(line, "### ") || strings.HasPrefix(line, "## ") {
			break
		}
		if !strings.HasPrefix(line, "- [") {
			continue
		}
		n++
		if n != position {
			continue
		}
		if strings.HasPrefix(line, "- [x]") {
			return true, nil
		}
		lines[i] = "- [x]" + strings.TrimPrefix(line, "- [ ]")
		return true, os.WriteFile(filePath, []byte(strings.Join(lines, "\n")), 0o644) // #nosec G306 -- see WritePlan
	}
	return false, nil
}

// ---------------------------------------------------------------------------
// File creation
// ---------------------------------------------------------------------------

func createJournal(p *models.Plan, dateStr, section string) string {
	var sb strings.Builder
	sb.WriteString("---\n")
	sb.WriteString("date: ")
	sb.WriteString(dateStr)
	sb.WriteString("\ncategories: [")
	sb.WriteString(string(p.Category))
	sb.WriteString("]\nmoods: [")
	sb.WriteString(p.Mood)
	sb.WriteString("]\ncreated: ")
	sb.WriteString(time.Now().UTC().Format(time.RFC3339))
	sb.WriteString("\n---\n\n# ")
	sb.WriteString(dateStr)
	sb.WriteString(" Plans\n\n## ")
	sb.WriteString(heading(p.Category))
	sb.WriteString("\n\n")
	sb.WriteString(section)
	sb.WriteString("\n")
	return sb.String()
}

// ---------------------------------------------------------------------------
// File appending
// ---------------------------------------------------------------------------

func appendToJournal(content string, p *models.Plan, section string) string {
	frontmatter, body := splitFrontmatter(content)
	if frontmatter == "" {
		return insertSection(body, p.Category, section)
	}
	return updateFrontmatter(frontmatter, p) + "\n" + insertSection(body, p.Category, section)
}

// splitFrontmatter returns ("", content) when no front matter is present.
func splitFrontmatter(content string) (frontmatter, body string) {
	parts := strings.SplitN(content, "---\n", 3)
	if len(parts) == 3 && parts[0] == "" {
		return "---\n" + parts[1] + "---", parts[2]
	}
	return "", content
}

var inlineArrayRe = regexp.MustCompile(`\[([^\]]*)\]`)

func parseInlineArray(line string) []string {
	m := inlineArrayRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	var out []string
	for _, s := range strings.Split(m[1], ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// updateFrontmatter merges the plan's category and mood into the day's lists.
// Categories keep priority order, moods are sorted.
func updateFrontmatter(frontmatter string, p *models.Plan) string {
	lines := strings.Split(frontmatter, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "categories:"):
			cats := append(parseInlineArray(line), string(p.Category))
			out = append(out, "categories: ["+strings.Join(orderCategories(cats), ", ")+"]")
		case strings.HasPrefix(line, "moods:"):
			moods := append(parseInlineArray(line), p.Mood)
			out = append(out, "moods: ["+strings.Join(sortedUniq(moods), ", ")+"]")
		default:
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// ---------------------------------------------------------------------------
// Body insertion
// ---------------------------------------------------------------------------

func insertSection(body string, cat models.Category, section string) string {
	h := heading(cat)
	if strings.Contains(body, "\n## "+h+"\n") || strings.HasPrefix(body, "## "+h+"\n") {
		return appendUnderHeading(body, h, section)
	}
	return insertHeading(body, cat, section)
}

// appendUnderHeading appends section at the end of the matching ## block.
func appendUnderHeading(body, h, section string) string {
	target := "## " + h
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	result := make([]string, 0, len(lines)+3)

	for i := 0; i < len(lines); i++ {
		result = append(result, lines[i])
		if lines[i] != target {
			continue
		}
		j := i + 1
		for j < len(lines) && !strings.HasPrefix(lines[j], "## ") {
			result = append(result, lines[j])
			j++
		}
		for len(result) > 0 && strings.TrimSpace(result[len(result)-1]) == "" {
			result = result[:len(result)-1]
		}
		result = append(result, "", section)
		if j < len(lines) {
			result = append(result, "")
		}
		i = j - 1
	}
	return strings.Join(result, "\n") + "\n"
}

// insertHeading adds a new ## block before the first heading of a
// lower-priority category.
func insertHeading(body string, cat models.Category, section string) string {
	target := categoryIndex(cat)
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	insertPos := len(lines)

	for i, line := range lines {
		if !strings.HasPrefix(line, "## ") {
			continue
		}
		if categoryIndex(categoryForHeading(strings.TrimPrefix(line, "## "))) > target {
			insertPos = i
			break
		}
	}

	block := []string{"## " + heading(cat), "", section}
	if insertPos < len(lines) {
		block = append(block, "")
	} else {
		block = append([]string{""}, block...)
	}
	merged := append(append(lines[:insertPos:insertPos], block...), lines[insertPos:]...)
	return strings.Join(merged, "\n") + "\n"
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func heading(cat models.Category) string {
	if h, ok := models.CategoryHeadings[cat]; ok {
		return h
	}
	return models.CategoryHeadings[models.CategoryGeneral]
}

func categoryForHeading(h string) models.Category {
	for cat, v := range models.CategoryHeadings {
		if v == h {
			return cat
		}
	}
	return ""
}

func categoryIndex(cat models.Category) int {
	for i, c := range models.Categories {
		if c == cat {
			return i
		}
	}
	return len(models.Categories)
}

func orderCategories(cats []string) []string {
	uniq := sortedUniq(cats)
	sort.SliceStable(uniq, func(i, j int) bool {
		return categoryIndex(models.Category(uniq[i])) < categoryIndex(models.Category(uniq[j]))
	})
	return uniq
}

func sortedUniq(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
