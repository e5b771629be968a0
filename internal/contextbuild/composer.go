package contextbuild

import (
	"sort"
	"strings"
)

// Block priorities, lowest value emitted first. Only product-detail blocks
// are ever truncated; losing bulk listings is the least harmful degradation,
// so pinned and knowledge content always survives verbatim.
const (
	// PriorityPinned marks discount, user-identity, and cart blocks.
	PriorityPinned = iota
	// PriorityKnowledge marks store-policy and FAQ content.
	PriorityKnowledge
	// PriorityProduct marks the bulk product listing, cut first.
	PriorityProduct
)

// TruncatedMarker is appended to any block the composer had to shorten.
const TruncatedMarker = "\n[NỘI DUNG ĐÃ ĐƯỢC RÚT GỌN ĐỂ VỪA GIỚI HẠN]"

// blockSeparator joins adjacent blocks in the composed context.
const blockSeparator = "\n\n"

// ContextBlock is one named piece of prompt context with a truncation
// priority.
type ContextBlock struct {
	Name     string
	Priority int
	Text     string
}

// Compose merges blocks into one context string within maxChars (plus marker
// overhead). Blocks are ordered by priority, ties keeping input order. Empty
// blocks are dropped. Pinned blocks are always emitted byte-identical;
// lower-priority blocks are truncated from the least important upward until
// the total fits. maxChars <= 0 means unlimited.
func Compose(blocks []ContextBlock, maxChars int) string {
	kept := make([]ContextBlock, 0, len(blocks))
	for _, b := range blocks {
		if strings.TrimSpace(b.Text) != "" {
			kept = append(kept, b)
		}
	}
	if len(kept) == 0 {
		return ""
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Priority < kept[j].Priority
	})

	if maxChars > 0 {
		total := totalLen(kept)
		// Only product-detail blocks absorb the cut; pinned and knowledge
		// blocks always survive byte-identical.
		for i := len(kept) - 1; i >= 0 && total > maxChars; i-- {
			if kept[i].Priority != PriorityProduct {
				continue
			}
			shrink(&kept[i], total-maxChars)
			total = totalLen(kept)
		}
		// Drop blocks truncated down to nothing.
		filtered := kept[:0]
		for _, b := range kept {
			if b.Text != "" {
				filtered = append(filtered, b)
			}
		}
		kept = filtered
	}

	parts := make([]string, len(kept))
	for i, b := range kept {
		parts[i] = b.Text
	}
	return strings.Join(parts, blockSeparator)
}

// totalLen is the assembled length of the blocks including separators.
func totalLen(blocks []ContextBlock) int {
	n := 0
	for i, b := range blocks {
		if i > 0 {
			n += len(blockSeparator)
		}
		n += len(b.Text)
	}
	return n
}

// shrink removes at least over bytes from the block's tail, cutting at a line
// boundary where possible and appending the truncation marker.
func shrink(b *ContextBlock, over int) {
	if over >= len(b.Text) {
		b.Text = ""
		return
	}

	keep := len(b.Text) - over
	cut := b.Text[:keep]
	if i := strings.LastIndexByte(cut, '\n'); i > 0 {
		cut = cut[:i]
	}
	b.Text = cut + TruncatedMarker
}
