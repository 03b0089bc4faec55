package webflow

// Item is a CMS collection item as returned by the item-list endpoint.
type Item struct {
	ID         string         `json:"id"`
	Slug       string         `json:"slug,omitempty"`
	IsDraft    bool           `json:"isDraft,omitempty"`
	IsArchived bool           `json:"isArchived,omitempty"`
	FieldData  map[string]any `json:"fieldData"`
}

// SlugValue returns the item's slug: the field-data slug primarily, falling
// back to the top-level attribute some API versions return.
func (i Item) SlugValue() string {
	if i.FieldData != nil {
		if s, ok := i.FieldData["slug"].(string); ok && s != "" {
			return s
		}
	}
	return i.Slug
}

// ItemUpdate pairs an existing item's identifier with its new field data.
type ItemUpdate struct {
	ID        string         `json:"id"`
	FieldData map[string]any `json:"fieldData"`
}
