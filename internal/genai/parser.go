package genai

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/osse101/LootChestBot_Go/internal/chest"
)

var (
	entryStartRe = regexp.MustCompile(`^\s*(\d+)\.\s*(.*)$`)
	headerRe     = regexp.MustCompile(`"(.*?)"\s*\(Rarity:\s*(\w+)\s*\|\s*Score:\s*(\d+)\)`)
	descRe       = regexp.MustCompile(`(?i)^Description:\s*(.*)$`)
)

const (
	placeholderName        = "Unidentified Relic"
	placeholderDescription = "Its true nature resists appraisal."
	placeholderScore       = 10000
)

// ParseLootItems extracts structured loot items from model output. The
// result always has exactly want entries: entries the model mangled, or
// failed to produce at all, become placeholders so an open never crashes
// on malformed text.
func ParseLootItems(text, fallbackRarity string, want int) []chest.GeneratedItem {
	entries := splitEntries(text)

	items := make([]chest.GeneratedItem, 0, want)
	for i := 0; i < want; i++ {
		if i < len(entries) {
			items = append(items, parseEntry(entries[i], fallbackRarity, i+1))
		} else {
			items = append(items, placeholderItem(fallbackRarity, i+1))
		}
	}
	return items
}

// splitEntries groups the text into blocks beginning at numbered lines.
func splitEntries(text string) []string {
	var entries []string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		if entryStartRe.MatchString(line) {
			if len(current) > 0 {
				entries = append(entries, strings.Join(current, "\n"))
			}
			current = []string{line}
			continue
		}
		if len(current) > 0 {
			current = append(current, line)
		}
	}
	if len(current) > 0 {
		entries = append(entries, strings.Join(current, "\n"))
	}
	return entries
}

func parseEntry(entry, fallbackRarity string, ordinal int) chest.GeneratedItem {
	item := placeholderItem(fallbackRarity, ordinal)

	if m := headerRe.FindStringSubmatch(entry); m != nil {
		item.Name = m[1]
		item.Rarity = m[2]
		if score, err := strconv.Atoi(m[3]); err == nil && score > 0 {
			item.Score = score
		}
	}

	for _, line := range strings.Split(entry, "\n") {
		if m := descRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil && m[1] != "" {
			item.Description = m[1]
			break
		}
	}
	return item
}

func placeholderItem(fallbackRarity string, ordinal int) chest.GeneratedItem {
	return chest.GeneratedItem{
		Name:        fmt.Sprintf("%s #%d", placeholderName, ordinal),
		Description: placeholderDescription,
		Rarity:      fallbackRarity,
		Score:       placeholderScore,
	}
}
