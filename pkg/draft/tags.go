package draft

import "strings"

// AddTag appends a tag to the draft's tag set in its canonical
// upper-case form, the shape the backend expects at submission.
// Comparison is case-insensitive so near-duplicates like "go" and "GO"
// collapse into one entry. Reports whether the tag was actually added.
func (d *Draft) AddTag(name string) bool {
	canonical := strings.ToUpper(strings.TrimSpace(name))
	if canonical == "" {
		return false
	}
	for _, existing := range d.Tags {
		if existing == canonical {
			return false
		}
	}
	d.Tags = append(d.Tags, canonical)
	return true
}

// RemoveTag drops a tag, matching case-insensitively
func (d *Draft) RemoveTag(name string) {
	canonical := strings.ToUpper(strings.TrimSpace(name))
	for i, existing := range d.Tags {
		if existing == canonical {
			d.Tags = append(d.Tags[:i], d.Tags[i+1:]...)
			return
		}
	}
}

// Vocabulary is the known tag set suggestions are filtered against
type Vocabulary []string

// DefaultVocabulary covers the stacks the original service suggests
var DefaultVocabulary = Vocabulary{
	"GO", "JAVA", "KOTLIN", "PYTHON", "RUST", "TYPESCRIPT", "JAVASCRIPT",
	"REACT", "NEXTJS", "VUE", "SPRING", "DJANGO", "NODEJS",
	"MYSQL", "POSTGRESQL", "REDIS", "MONGODB", "KAFKA",
	"DOCKER", "KUBERNETES", "AWS", "GCP", "LINUX", "GIT",
}

// Suggest returns vocabulary entries matching the free-text input,
// case-insensitively: prefix matches first, then substring matches.
// Empty input suggests nothing rather than the whole vocabulary.
func (v Vocabulary) Suggest(input string) []string {
	needle := strings.ToUpper(strings.TrimSpace(input))
	if needle == "" {
		return nil
	}

	var prefixed, contained []string
	for _, tag := range v {
		upper := strings.ToUpper(tag)
		switch {
		case strings.HasPrefix(upper, needle):
			prefixed = append(prefixed, tag)
		case strings.Contains(upper, needle):
			contained = append(contained, tag)
		}
	}
	return append(prefixed, contained...)
}
