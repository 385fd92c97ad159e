package catalog

import "strings"

// FallbackFilename is used when sanitization leaves nothing usable.
const FallbackFilename = "unnamed_file"

// DefaultFormat is assumed for files uploaded without an extension.
const DefaultFormat = "PDF"

// separators are the characters allowed between name parts.
const separators = "-_."

// CleanFilename scrubs a user-supplied filename into a storage-safe name.
// Spaces and path-ish characters become underscores, everything outside
// [A-Za-z0-9-_.] is dropped, runs of separators collapse to one, and leading
// or trailing separators are trimmed. The function is idempotent; an empty
// result falls back to FallbackFilename.
func CleanFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == ' ' || r == ':' || r == '/' || r == '\\' || r == '|':
			b.WriteByte('_')
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case strings.ContainsRune(separators, r):
			b.WriteRune(r)
		}
	}

	// Collapse each run of separators to its first character.
	raw := b.String()
	var out strings.Builder
	out.Grow(len(raw))
	inRun := false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if strings.IndexByte(separators, c) >= 0 {
			if !inRun {
				out.WriteByte(c)
				inRun = true
			}
			continue
		}
		out.WriteByte(c)
		inRun = false
	}

	safe := strings.Trim(out.String(), separators)
	if safe == "" {
		return FallbackFilename
	}
	return safe
}

// FileFormat derives the upper-cased format label from a filename extension,
// defaulting to DefaultFormat when there is none.
func FileFormat(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 || idx == len(filename)-1 {
		return DefaultFormat
	}
	return strings.ToUpper(filename[idx+1:])
}

// StripExtension returns the filename without its final extension. Used when
// deriving the stored title.
func StripExtension(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx <= 0 {
		return filename
	}
	return filename[:idx]
}
