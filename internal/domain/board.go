package domain

import "slices"

// Board is a logical workspace scoping a related set of items, assets,
// and vocabularies. The board record also owns the per-board
// vocabulary lists (categories, labels, payees) since they are small
// free-text sets mutated together with the board.
type Board struct {
	Stamped
	Name string `json:"name" validate:"required"`

	// Vocabularies: free-text sets, membership checked case-sensitively.
	Categories []string `json:"categories,omitempty"`
	Labels     []string `json:"labels,omitempty"`
	Payees     []string `json:"payees,omitempty"`
}

// addVocabEntry appends entry if not already present (exact match).
// Returns true if the list changed.
func addVocabEntry(list *[]string, entry string) bool {
	if entry == "" || slices.Contains(*list, entry) {
		return false
	}
	*list = append(*list, entry)
	return true
}

// removeVocabEntry removes entry if present. No-op when absent.
// Returns true if the list changed.
func removeVocabEntry(list *[]string, entry string) bool {
	idx := slices.Index(*list, entry)
	if idx < 0 {
		return false
	}
	*list = slices.Delete(*list, idx, idx+1)
	return true
}

// AddCategory adds a category to the board's vocabulary. Idempotent.
func (b *Board) AddCategory(entry string) bool { return addVocabEntry(&b.Categories, entry) }

// RemoveCategory removes a category. No-op when absent.
func (b *Board) RemoveCategory(entry string) bool { return removeVocabEntry(&b.Categories, entry) }

// AddLabel adds a label to the board's vocabulary. Idempotent.
func (b *Board) AddLabel(entry string) bool { return addVocabEntry(&b.Labels, entry) }

// RemoveLabel removes a label. No-op when absent.
func (b *Board) RemoveLabel(entry string) bool { return removeVocabEntry(&b.Labels, entry) }

// AddPayee adds a paid-to option to the board's vocabulary. Idempotent.
func (b *Board) AddPayee(entry string) bool { return addVocabEntry(&b.Payees, entry) }

// RemovePayee removes a paid-to option. No-op when absent.
func (b *Board) RemovePayee(entry string) bool { return removeVocabEntry(&b.Payees, entry) }
