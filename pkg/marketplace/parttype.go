package marketplace

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/torqueline/partsource/pkg/cache"
	"github.com/torqueline/partsource/pkg/errors"
	"github.com/torqueline/partsource/pkg/session"
)

// suggestCacheTTL is deliberately short: the remote suggestion index is not
// stable over time, so the term-to-PartType mapping must not be cached
// long-term.
const suggestCacheTTL = 15 * time.Minute

type suggestData struct {
	Suggest struct {
		Items []json.RawMessage `json:"items"`
	} `json:"suggest"`
}

// suggestionKind discriminates the polymorphic suggestion payload.
type suggestionKind int

const (
	suggestionUnknown suggestionKind = iota
	// suggestionPartType is a bare part type.
	suggestionPartType
	// suggestionAttributed is a search result wrapping one part type plus
	// display attributes.
	suggestionAttributed
	// suggestionGroup is a group containing several part types.
	suggestionGroup
)

// suggestion is the decoded form of one suggestion item. The payload is
// decoded exactly once at this boundary; downstream code switches on kind
// instead of probing field presence.
type suggestion struct {
	kind    suggestionKind
	part    PartType
	members []PartType
}

// decodeSuggestion maps a raw suggestion item onto the tagged union.
// Unrecognized shapes decode to suggestionUnknown.
func decodeSuggestion(raw json.RawMessage) suggestion {
	var probe struct {
		PartTypeID   string `json:"partTypeId"`
		PartTypeName string `json:"partTypeName"`
		PartType     *struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"partType"`
		Group *struct {
			PartTypes []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"partTypes"`
		} `json:"group"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return suggestion{kind: suggestionUnknown}
	}

	switch {
	case probe.Group != nil:
		members := make([]PartType, 0, len(probe.Group.PartTypes))
		for _, pt := range probe.Group.PartTypes {
			if pt.ID != "" {
				members = append(members, PartType{ID: pt.ID, Name: pt.Name})
			}
		}
		if len(members) == 0 {
			return suggestion{kind: suggestionUnknown}
		}
		return suggestion{kind: suggestionGroup, members: members}

	case probe.PartType != nil && probe.PartType.ID != "":
		return suggestion{
			kind: suggestionAttributed,
			part: PartType{ID: probe.PartType.ID, Name: probe.PartType.Name},
		}

	case probe.PartTypeID != "":
		return suggestion{
			kind: suggestionPartType,
			part: PartType{ID: probe.PartTypeID, Name: probe.PartTypeName},
		}

	default:
		return suggestion{kind: suggestionUnknown}
	}
}

// resolve picks the canonical part type from a decoded suggestion.
// Group suggestions deterministically yield the group's first member.
func (s suggestion) resolve() (PartType, bool) {
	switch s.kind {
	case suggestionPartType, suggestionAttributed:
		return s.part, true
	case suggestionGroup:
		return s.members[0], true
	default:
		return PartType{}, false
	}
}

// ResolvePartType maps a free-text search term to a canonical part type via
// the typeahead suggestion lookup, taking the first suggestion.
//
// Returns nil (not an error) when the suggestion list is empty or no part
// type id can be extracted from the first entry - a soft negative, distinct
// from a hard transport failure.
func (c *Client) ResolvePartType(ctx context.Context, term string, cred session.Credential) (*PartType, error) {
	key := "suggest:" + cache.Hash(strings.ToLower(strings.TrimSpace(term)))
	if data, ok, _ := c.cache.Get(ctx, key); ok {
		var pt PartType
		if err := json.Unmarshal(data, &pt); err == nil {
			return &pt, nil
		}
	}

	data, err := c.Execute(ctx, "PartTypeSuggest", partTypeSuggestQuery, map[string]any{"prefix": term}, cred)
	if err != nil {
		return nil, err
	}

	var decoded suggestData
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "malformed suggestion payload for %q", term)
	}

	items := decoded.Suggest.Items
	if len(items) == 0 {
		return nil, nil
	}

	pt, ok := decodeSuggestion(items[0]).resolve()
	if !ok {
		return nil, nil
	}

	if data, err := json.Marshal(pt); err == nil {
		_ = c.cache.Set(ctx, key, data, suggestCacheTTL)
	}
	return &pt, nil
}
