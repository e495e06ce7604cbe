package promptbuild

import "strings"

// BlockID names a parameter-free boilerplate block.
type BlockID string

const (
	BlockPlaceholders    BlockID = "placeholders"
	BlockSafety          BlockID = "safety"
	BlockChecklist       BlockID = "checklist"
	BlockQualityBar      BlockID = "quality_bar"
	BlockReferencePolicy BlockID = "reference_policy"
)

var blockIDs = []BlockID{
	BlockPlaceholders,
	BlockSafety,
	BlockChecklist,
	BlockQualityBar,
	BlockReferencePolicy,
}

// BlockIDs returns every known block id in a stable order.
func BlockIDs() []BlockID {
	out := make([]BlockID, len(blockIDs))
	copy(out, blockIDs)
	return out
}

func isBlockID(id BlockID) bool {
	for _, known := range blockIDs {
		if known == id {
			return true
		}
	}
	return false
}

// Blocks holds the boilerplate texts. The zero value has no texts.
// A Blocks value is never mutated after construction; With returns a copy.
type Blocks struct {
	texts map[BlockID]string
}

// NewBlocks copies texts into a new Blocks value. Texts are trimmed.
func NewBlocks(texts map[BlockID]string) Blocks {
	b := Blocks{texts: make(map[BlockID]string, len(texts))}
	for id, text := range texts {
		b.texts[id] = strings.TrimSpace(text)
	}
	return b
}

// Text returns the block text, or "" when the block is not defined.
func (b Blocks) Text(id BlockID) string {
	return b.texts[id]
}

// With returns a copy of b where id is set to text.
func (b Blocks) With(id BlockID, text string) Blocks {
	out := Blocks{texts: make(map[BlockID]string, len(b.texts)+1)}
	for k, v := range b.texts {
		out.texts[k] = v
	}
	out.texts[id] = strings.TrimSpace(text)
	return out
}

const placeholdersBlock = `<placeholders>
- <customer_name>
- <account_id>
- <subscription_plan>
- <ticket_id>
- <order_id>
- <error_code>
- <public_doc_link>
</placeholders>`

const safetyBlock = `Safety & Privacy:
- Do not invent or expose internal data, pricing, roadmaps, or credentials.
- If information is missing or sensitive, explicitly ask for a safe placeholder.
- Follow customer-safe language; avoid internal jargon.`

const checklistBlock = `Review checklist (for the human agent before sending):
- ✅ Accurate and consistent with known facts
- ✅ No sensitive/internal information; placeholders used where needed
- ✅ Tone matches audience and situation
- ✅ Clear next steps or resolution path
- ✅ Links are public and correct`

const qualityBarBlock = `Quality bar:
- Lead with the answer or resolution, then the supporting context.
- Every step is actionable and listed in the order the reader performs it.
- No filler, repeated apologies, or restated information.
- Prefer plain words over product or internal terminology.`

const referencePolicyBlock = `Reference sources:
- Only cite public documentation or help-center links given in the Task.
- If no source is given, say so instead of inventing a link.
- Use <public_doc_link> where a link is needed but not known.`

// DefaultBlocks returns the stock boilerplate texts.
func DefaultBlocks() Blocks {
	return NewBlocks(map[BlockID]string{
		BlockPlaceholders:    placeholdersBlock,
		BlockSafety:          safetyBlock,
		BlockChecklist:       checklistBlock,
		BlockQualityBar:      qualityBarBlock,
		BlockReferencePolicy: referencePolicyBlock,
	})
}
