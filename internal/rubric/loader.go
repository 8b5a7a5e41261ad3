package rubric

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	titlePattern     = regexp.MustCompile(`(?m)^#\s+(.+?)\s*$`)
	subtitlePattern  = regexp.MustCompile(`(?m)^##\s+(?:A )?(.+?)\s*$`)
	sectionPattern   = regexp.MustCompile(`(?ms)^##\s+Grading Rubric\s*\n(.*?)(?:^##\s+[^#]|\z)`)
	categoryPattern  = regexp.MustCompile(`(?mi)^###\s+(\d+)\.\s+(.+?)\s+\((\d+)\s+points?\)`)
	criterionPattern = regexp.MustCompile(`(?mi)^####\s+(.+?)\s+\((\d+)\s+points?\)`)
	rangePattern     = regexp.MustCompile(`\((\d+)[-–](\d+)\)`)
)

// ParseMarkdown parses a rubric markdown document into structured data.
//
// Expected layout: an H1 title, category headings like
// "### 1. AI Collaboration Process (50 points)", criterion headings like
// "#### Starting Point & Initial Thinking (10 points)", and under each
// criterion a table whose header row names the four levels with their point
// ranges.
func ParseMarkdown(content string) (Rubric, error) {
	title := "AI-Assisted Writing Rubric"
	if m := titlePattern.FindStringSubmatch(content); m != nil {
		title = m[1]
	}

	description := "Process-focused assessment rubric"
	if m := subtitlePattern.FindStringSubmatch(content); m != nil {
		description = m[1]
	}

	section := content
	if m := sectionPattern.FindStringSubmatch(content); m != nil {
		section = m[1]
	}

	categories, err := parseCategories(section)
	if err != nil {
		return Rubric{}, err
	}

	total := 0
	for _, category := range categories {
		total += category.Weight
	}

	return Rubric{
		Name:        title,
		Description: description,
		Version:     "1.0",
		TotalPoints: total,
		Categories:  categories,
	}, nil
}

func parseCategories(section string) ([]Category, error) {
	matches := categoryPattern.FindAllStringSubmatchIndex(section, -1)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no category headings found in rubric")
	}

	categories := make([]Category, 0, len(matches))
	for i, match := range matches {
		order, _ := strconv.Atoi(section[match[2]:match[3]])
		name := strings.TrimSpace(section[match[4]:match[5]])
		weight, _ := strconv.Atoi(section[match[6]:match[7]])

		start := match[1]
		end := len(section)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		categories = append(categories, Category{
			Name:     name,
			Weight:   weight,
			Order:    order - 1,
			Criteria: parseCriteria(section[start:end]),
		})
	}

	return categories, nil
}

func parseCriteria(body string) []Criterion {
	matches := criterionPattern.FindAllStringSubmatchIndex(body, -1)

	criteria := make([]Criterion, 0, len(matches))
	for i, match := range matches {
		name := strings.TrimSpace(body[match[2]:match[3]])
		points, _ := strconv.Atoi(body[match[4]:match[5]])

		start := match[1]
		end := len(body)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		criteria = append(criteria, Criterion{
			Name:   name,
			Points: points,
			Order:  i,
			Levels: parseLevels(body[start:end], points),
		})
	}

	return criteria
}

// parseLevels reads the level table under a criterion heading. The header row
// carries level names with point ranges; the first non-separator body row
// carries the descriptions. Missing pieces fall back to estimated ranges.
func parseLevels(body string, points int) []Level {
	var headerCells, descCells []string

	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") || strings.Contains(line, "---") {
			continue
		}
		cells := splitTableRow(line)
		if headerCells == nil {
			headerCells = cells
			continue
		}
		descCells = cells
		break
	}

	if headerCells == nil {
		return defaultLevels(points)
	}

	names := []string{LevelExemplary, LevelProficient, LevelDeveloping, LevelInadequate}
	levels := make([]Level, 0, len(names))

	for order, name := range names {
		if order >= len(headerCells) {
			break
		}

		minPts, maxPts := estimateRange(order, points)
		if m := rangePattern.FindStringSubmatch(headerCells[order]); m != nil {
			minPts, _ = strconv.Atoi(m[1])
			maxPts, _ = strconv.Atoi(m[2])
		}

		description := ""
		if order < len(descCells) {
			description = descCells[order]
		}

		levels = append(levels, Level{
			Name:        name,
			MinPoints:   minPts,
			MaxPoints:   maxPts,
			Description: description,
			Order:       order,
		})
	}

	if len(levels) == 0 {
		return defaultLevels(points)
	}

	return levels
}

func splitTableRow(line string) []string {
	parts := strings.Split(strings.Trim(line, "|"), "|")
	cells := make([]string, 0, len(parts))
	for _, part := range parts {
		cell := strings.TrimSpace(strings.Trim(strings.TrimSpace(part), "*"))
		if cell != "" {
			cells = append(cells, cell)
		}
	}
	return cells
}

// estimateRange assigns a point range by level order when the table header
// does not carry one. Bands follow the canonical rubric sizes.
func estimateRange(order, points int) (int, int) {
	var bands [4][2]int
	switch {
	case points <= 5:
		bands = [4][2]int{{5, 5}, {4, 4}, {2, 3}, {0, 1}}
	case points <= 7:
		bands = [4][2]int{{6, 7}, {5, 5}, {3, 4}, {0, 2}}
	case points <= 10:
		bands = [4][2]int{{9, 10}, {7, 8}, {5, 6}, {0, 4}}
	default:
		bands = [4][2]int{{14, 15}, {11, 13}, {8, 10}, {0, 7}}
	}

	if order < 0 || order > 3 {
		return 0, points
	}
	return bands[order][0], bands[order][1]
}

func defaultLevels(points int) []Level {
	names := []string{LevelExemplary, LevelProficient, LevelDeveloping, LevelInadequate}
	levels := make([]Level, 0, len(names))
	for order, name := range names {
		minPts, maxPts := estimateRange(order, points)
		levels = append(levels, Level{
			Name:        name,
			MinPoints:   minPts,
			MaxPoints:   maxPts,
			Description: strings.ToUpper(name[:1]) + name[1:] + " performance",
			Order:       order,
		})
	}
	return levels
}
