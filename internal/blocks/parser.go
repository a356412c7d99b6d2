package blocks

import (
	"regexp"
	"strings"
)

// ParsedBlock is one raw block recovered from an LLM response, before IDs and
// ownership metadata are attached.
type ParsedBlock struct {
	Type                 BlockType
	Summary              string
	Content              string
	Sources              []string
	Priority             string
	ContainsPersonalData bool
}

// Primary block delimiters. These must stay in lockstep with the formation
// prompt template: the model is asked to emit exactly these markers.
const (
	BlockStartMarker = "---BLOCK_START---"
	BlockEndMarker   = "---BLOCK_END---"
)

var primaryPattern = regexp.MustCompile(`(?s)---BLOCK_START---(.*?)---BLOCK_END---`)

// Alternate fence styles the model sometimes drifts into, tried in priority
// order after the primary markers find nothing.
var alternatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?si)#+\s*BLOCK\s*START\s*#+(.*?)#+\s*BLOCK\s*END\s*#+`),
	regexp.MustCompile(`(?si)==+\s*BLOCK\s*START\s*==+(.*?)==+\s*BLOCK\s*END\s*==+`),
	regexp.MustCompile(`(?si)--+\s*BLOCK\s*START\s*--+(.*?)--+\s*BLOCK\s*END\s*--+`),
}

var typeLinePattern = regexp.MustCompile(`(?m)^BLOCK_TYPE:`)

// Parse extracts zero or more blocks from a free-text LLM response. Real
// model output drifts from the requested format, so parsing is an ordered
// fallback cascade; each tier is attempted only if the previous one found
// zero blocks:
//
//  1. literal ---BLOCK_START--- / ---BLOCK_END--- sections
//  2. alternate "# BLOCK START #"-style fences ("#", "=", "-")
//  3. split at lines beginning with "BLOCK_TYPE:"
//  4. the whole response as a single block
//
// Blocks without non-empty content are dropped. Parse never fails; callers
// treat an empty result as a parse failure.
func Parse(responseText string) []ParsedBlock {
	if found := parseDelimited(responseText, primaryPattern); len(found) > 0 {
		return found
	}

	for _, pattern := range alternatePatterns {
		if found := parseDelimited(responseText, pattern); len(found) > 0 {
			return found
		}
	}

	if found := parseByTypeLines(responseText); len(found) > 0 {
		return found
	}

	// Degenerate case: no boundaries at all, treat the entire response as
	// one block.
	var found []ParsedBlock
	if strings.TrimSpace(responseText) != "" {
		if block, ok := parseSingleBlock(responseText); ok {
			found = append(found, block)
		}
	}
	return found
}

func parseDelimited(text string, pattern *regexp.Regexp) []ParsedBlock {
	matches := pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	var parsed []ParsedBlock
	for _, m := range matches {
		if block, ok := parseSingleBlock(m[1]); ok {
			parsed = append(parsed, block)
		}
	}
	return parsed
}

// parseByTypeLines recovers blocks from marker-less output by treating every
// line that begins with "BLOCK_TYPE:" as the start of a new block, running to
// the next such line or the end of text.
func parseByTypeLines(text string) []ParsedBlock {
	starts := typeLinePattern.FindAllStringIndex(text, -1)
	if len(starts) == 0 {
		return nil
	}

	var parsed []ParsedBlock
	for i, loc := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		if block, ok := parseSingleBlock(text[loc[0]:end]); ok {
			parsed = append(parsed, block)
		}
	}
	return parsed
}

// parseSingleBlock parses one candidate block substring line by line. Field
// names match case-insensitively by prefix and the value is whatever follows
// the first ":" or "=". CONTENT is the only multi-line field: once seen,
// every remaining line (including blank ones) belongs to the content. Returns
// ok=false when the block has no non-empty content.
func parseSingleBlock(blockText string) (ParsedBlock, bool) {
	block := ParsedBlock{
		Type:     TypeUnknown,
		Priority: PriorityMedium,
	}

	if strings.TrimSpace(blockText) == "" {
		return block, false
	}

	contentStarted := false
	var contentLines []string

	for _, originalLine := range strings.Split(blockText, "\n") {
		line := strings.TrimSpace(originalLine)

		if line == "" {
			if contentStarted {
				contentLines = append(contentLines, "")
			}
			continue
		}

		lineLower := strings.ToLower(line)

		switch {
		case strings.HasPrefix(lineLower, "block_type"):
			block.Type = BlockType(strings.ToUpper(extractFieldValue(line)))
		case strings.HasPrefix(lineLower, "summary"):
			block.Summary = extractFieldValue(line)
		case strings.HasPrefix(lineLower, "source"):
			block.Sources = splitSources(extractFieldValue(line))
		case strings.HasPrefix(lineLower, "priority"):
			priority := strings.ToLower(extractFieldValue(line))
			if priority == PriorityHigh || priority == PriorityMedium || priority == PriorityLow {
				block.Priority = priority
			}
		case strings.HasPrefix(lineLower, "contains_personal_data") || strings.HasPrefix(lineLower, "personal_data"):
			block.ContainsPersonalData = parseBoolish(extractFieldValue(line))
		case strings.HasPrefix(lineLower, "content"):
			contentStarted = true
			if trailing := extractFieldValue(line); trailing != "" {
				contentLines = append(contentLines, trailing)
			}
		case contentStarted:
			contentLines = append(contentLines, strings.TrimRight(originalLine, " \t\r"))
		}
	}

	block.Content = strings.TrimSpace(strings.Join(contentLines, "\n"))
	if block.Content == "" {
		return block, false
	}

	// The model omitted or mangled the type: fall back to keyword inference
	// over whatever text we have.
	if block.Type == TypeUnknown || !IsValidType(block.Type) {
		block.Type = InferType(block.Summary + " " + block.Content)
	}

	return block, true
}

// extractFieldValue pulls the value out of a "FIELD: value" or "FIELD=value"
// line, preferring the colon separator.
func extractFieldValue(line string) string {
	if idx := strings.Index(line, ":"); idx >= 0 {
		return strings.TrimSpace(line[idx+1:])
	}
	if idx := strings.Index(line, "="); idx >= 0 {
		return strings.TrimSpace(line[idx+1:])
	}
	return ""
}

func splitSources(value string) []string {
	var sources []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			sources = append(sources, part)
		}
	}
	return sources
}

func parseBoolish(value string) bool {
	switch strings.ToLower(value) {
	case "true", "yes", "1", "t", "y":
		return true
	}
	return false
}
