package models

import "fmt"

// ItemType identifies which of the three feed entity kinds an id refers to.
// It is stored as text in the embeddings table and carried through the
// ranking pipeline, so the values are part of the persisted schema.
type ItemType string

const (
	ItemTypeStore ItemType = "STORE"
	ItemTypeEvent ItemType = "EVENT"
	ItemTypePopup ItemType = "POPUP"
)

// ItemTypes lists every valid type. Code that partitions candidates by type
// iterates this instead of hand-writing the three cases.
var ItemTypes = []ItemType{ItemTypeStore, ItemTypeEvent, ItemTypePopup}

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	switch t {
	case ItemTypeStore, ItemTypeEvent, ItemTypePopup:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (t ItemType) String() string { return string(t) }

// ParseItemType converts a string into an ItemType or fails.
func ParseItemType(s string) (ItemType, error) {
	t := ItemType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown item type %q", s)
	}
	return t, nil
}
