package guildconfig

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

var (
	// ErrInvalidPatch is returned when a patch names an unknown field, carries a
	// value of the wrong type, or produces a document that fails validation.
	ErrInvalidPatch = errors.New("invalid patch")
	// ErrUnknownSection is returned by PatchSection for a name that is not an
	// object-valued top-level field.
	ErrUnknownSection = errors.New("unknown section")
)

// mapSections accept arbitrary keys (user IDs) instead of a fixed field set.
var mapSections = map[string]bool{"warnings": true}

// mergeFields returns a new document with every key of fields replacing the
// matching top-level field of cur.
func mergeFields(cur *models.GuildConfig, fields map[string]any) (*models.GuildConfig, error) {
	doc, err := rawObject(cur)
	if err != nil {
		return nil, err
	}
	if err := overlay(doc, fields, false); err != nil {
		return nil, err
	}
	return decodeDocument(doc)
}

// mergeSection returns a new document with fields merged one level deep into
// cur[section]. Sibling keys of the section keep their values.
func mergeSection(cur *models.GuildConfig, section string, fields map[string]any) (*models.GuildConfig, error) {
	if !models.IsSection(section) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}

	doc, err := rawObject(cur)
	if err != nil {
		return nil, err
	}

	inner := map[string]json.RawMessage{}
	if raw := doc[section]; len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPatch, section, err)
		}
	}
	if err := overlay(inner, fields, mapSections[section]); err != nil {
		return nil, fmt.Errorf("%w (section %s)", err, section)
	}

	merged, err := json.Marshal(inner)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	doc[section] = merged
	return decodeDocument(doc)
}

func rawObject(cfg *models.GuildConfig) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func overlay(dst map[string]json.RawMessage, fields map[string]any, allowNew bool) error {
	for key, value := range fields {
		if _, ok := dst[key]; !ok && !allowNew {
			return fmt.Errorf("%w: unknown field %q", ErrInvalidPatch, key)
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrInvalidPatch, key, err)
		}
		dst[key] = raw
	}
	return nil
}

// decodeDocument decodes into a fresh struct, so a JSON null resets a field
// to its zero value.
func decodeDocument(doc map[string]json.RawMessage) (*models.GuildConfig, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var out models.GuildConfig
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}
	out.Normalize()

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPatch, err)
	}
	return &out, nil
}
