package dietary

import (
	"fmt"
	"strings"
)

// Tag is a dietary label attached to a recipe for tagging and search filters
type Tag string

const (
	TagLowFodmap    Tag = "low_fodmap"
	TagHighFodmap   Tag = "high_fodmap"
	TagFermented    Tag = "fermented"
	TagContainsNuts Tag = "contains_nuts"
	TagNutFree      Tag = "nut_free"
	TagPescatarian  Tag = "pescatarian"
)

var knownTags = map[Tag]struct{}{
	TagLowFodmap:    {},
	TagHighFodmap:   {},
	TagFermented:    {},
	TagContainsNuts: {},
	TagNutFree:      {},
	TagPescatarian:  {},
}

// ParseTag normalizes and validates a tag string
func ParseTag(s string) (Tag, error) {
	tag := Tag(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := knownTags[tag]; !ok {
		return "", fmt.Errorf("unknown dietary tag %q", s)
	}
	return tag, nil
}

// Tags returns the labels implied by the analysis, in a fixed order
func (r Result) Tags() []Tag {
	tags := make([]Tag, 0, 4)
	if r.IsLowFodmap {
		tags = append(tags, TagLowFodmap)
	} else {
		tags = append(tags, TagHighFodmap)
	}
	if r.IsFermented {
		tags = append(tags, TagFermented)
	}
	if r.HasNuts {
		tags = append(tags, TagContainsNuts)
	} else {
		tags = append(tags, TagNutFree)
	}
	if r.IsPescatarian {
		tags = append(tags, TagPescatarian)
	}
	return tags
}

// Satisfies reports whether the analysis carries every requested tag
func (r Result) Satisfies(required ...Tag) bool {
	have := make(map[Tag]bool, 4)
	for _, t := range r.Tags() {
		have[t] = true
	}
	for _, t := range required {
		if !have[t] {
			return false
		}
	}
	return true
}
