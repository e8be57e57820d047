package asmcmp

import "strings"

// MismatchReason is a bitmask of reasons an instruction pair failed to
// match outright (spec.md §4.3).
type MismatchReason uint16

const (
	ReasonJumpLen      MismatchReason = 1 << iota
	ReasonMissingLeft
	ReasonMissingRight
	ReasonInvalidLeft
	ReasonInvalidRight
)

// AsmMismatchInfo is the verdict computed for one instruction pair.
type AsmMismatchInfo struct {
	MismatchBits      uint16
	MaybeMismatchBits uint16
	MismatchReasons   MismatchReason
}

// IsMatch reports whether the pair is a hard match: no bits, no reasons.
func (m AsmMismatchInfo) IsMatch() bool {
	return m.MismatchBits == 0 && m.MaybeMismatchBits == 0 && m.MismatchReasons == 0
}

// IsMaybe reports whether the pair's only disagreement is symbol-form
// ambiguity.
func (m AsmMismatchInfo) IsMaybe() bool {
	return m.MismatchBits == 0 && m.MaybeMismatchBits != 0 && m.MismatchReasons == 0
}

// IsHardMismatch reports whether the pair mismatches regardless of
// strictness.
func (m AsmMismatchInfo) IsHardMismatch() bool {
	return m.MismatchBits != 0 || m.MismatchReasons != 0
}

const maxTokenWords = 4

// tokenizeInstructionText splits text into up to maxTokenWords words: the
// mnemonic, then comma-separated operand slices at the top level. Commas
// inside a double-quoted region do not split. Leading spaces after a
// comma are skipped. Operands past the third stay together in the last
// word. Per spec.md §4.3.
func tokenizeInstructionText(text string) []string {
	words := make([]string, 0, maxTokenWords)

	mnemonicEnd := strings.IndexByte(text, ' ')
	var rest string
	if mnemonicEnd < 0 {
		words = append(words, text)
		return words
	}
	words = append(words, text[:mnemonicEnd])
	rest = text[mnemonicEnd+1:]

	inQuote := false
	start := 0
	for i := 0; i < len(rest) && len(words) < maxTokenWords-1; i++ {
		switch rest[i] {
		case '"':
			inQuote = !inQuote
		case ',':
			if !inQuote {
				word := rest[start:i]
				if word != "" {
					words = append(words, word)
				}
				start = i + 1
				for start < len(rest) && rest[start] == ' ' {
					start++
				}
			}
		}
	}
	if start < len(rest) {
		words = append(words, rest[start:])
	}
	return words
}

// InstructionTextArray is a per-function cache of pre-split instruction
// words, built once so repeated lookahead comparisons never re-tokenize.
type InstructionTextArray struct {
	words [][]string
}

// NewInstructionTextArray pre-tokenizes every instruction's text.
func NewInstructionTextArray(instructions AsmInstructions) *InstructionTextArray {
	arr := &InstructionTextArray{words: make([][]string, len(instructions))}
	for i, inst := range instructions {
		if inst.Invalid {
			continue
		}
		arr.words[i] = tokenizeInstructionText(inst.Text)
	}
	return arr
}

func (a *InstructionTextArray) at(i int) []string {
	if i < 0 || i >= len(a.words) {
		return nil
	}
	return a.words[i]
}

// unknownFormPrefixes are the case-insensitive pseudo-symbol prefixes
// compare_asm_text recognizes as candidates for a symbol-form skip.
var unknownFormPrefixes = []string{prefixSub, prefixOff, prefixUnk, prefixLoc}

// matchUnknownPrefix returns the prefix at the start of s (case
// insensitive), or "" if none matches.
func matchUnknownPrefix(s string) string {
	lower := strings.ToLower(s)
	for _, p := range unknownFormPrefixes {
		if strings.HasPrefix(lower, p) {
			return p
		}
	}
	return ""
}

// compareAsmText implements compare_asm_text (spec.md §4.3): a
// word-by-word, byte-by-byte comparison with symbol-form awareness.
func compareAsmText(aWords, bWords []string) (mismatchBits, maybeMismatchBits uint16) {
	n := len(aWords)
	if len(bWords) < n {
		n = len(bWords)
	}
	for i := 0; i < n; i++ {
		mm, maybe := compareWord(aWords[i], bWords[i])
		if mm {
			mismatchBits |= 1 << uint(i)
		}
		if maybe {
			maybeMismatchBits |= 1 << uint(i)
		}
	}
	for i := n; i < len(aWords); i++ {
		mismatchBits |= 1 << uint(i)
	}
	for i := n; i < len(bWords); i++ {
		mismatchBits |= 1 << uint(i)
	}
	return mismatchBits, maybeMismatchBits
}

// compareWord compares a single word from each side, byte by byte,
// attempting a symbol-form skip only at the character immediately
// following an opening quote — never mid-name, so a real symbol that
// merely contains "sub_"/"loc_"/etc. past its first character is
// compared literally instead of spuriously skipped.
func compareWord(a, b string) (mismatch, maybe bool) {
	ai, bi := 0, 0
	quoted := false
	atQuoteStart := false
	for ai < len(a) && bi < len(b) {
		ca, cb := a[ai], b[bi]

		if ca == '"' && cb == '"' {
			quoted = !quoted
			atQuoteStart = quoted
			ai++
			bi++
			continue
		}

		if quoted && atQuoteStart {
			pa := matchUnknownPrefix(a[ai:])
			pb := matchUnknownPrefix(b[bi:])
			if pa != "" || pb != "" {
				if pa == prefixLoc || pb == prefixLoc {
					if pa != pb {
						// loc_ must match exactly; fall through to
						// byte comparison, which will mismatch unless
						// the literal bytes happen to agree.
					} else {
						endA := skipToClosingQuote(a, ai)
						endB := skipToClosingQuote(b, bi)
						ai, bi = endA, endB
						atQuoteStart = false
						continue
					}
				} else {
					endA := skipToClosingQuote(a, ai)
					endB := skipToClosingQuote(b, bi)
					ai, bi = endA, endB
					maybe = true
					atQuoteStart = false
					continue
				}
			}
		}

		atQuoteStart = false

		if ca != cb {
			return true, maybe
		}
		ai++
		bi++
	}
	if ai < len(a) || bi < len(b) {
		return true, maybe
	}
	return false, maybe
}

// skipToClosingQuote returns the index of the closing `"` at or after
// start, or len(s) if none is found.
func skipToClosingQuote(s string, start int) int {
	idx := strings.IndexByte(s[start:], '"')
	if idx < 0 {
		return len(s)
	}
	return start + idx
}

// createMismatchInfo implements create_mismatch_info (spec.md §4.3): the
// priority-ordered verdict for one instruction pair. a or b may be nil to
// represent a missing side.
func createMismatchInfo(a, b *AsmInstruction) AsmMismatchInfo {
	if a == nil {
		return AsmMismatchInfo{MismatchReasons: ReasonMissingLeft}
	}
	if b == nil {
		return AsmMismatchInfo{MismatchReasons: ReasonMissingRight}
	}
	if a.Invalid != b.Invalid {
		if a.Invalid {
			return AsmMismatchInfo{MismatchReasons: ReasonInvalidLeft}
		}
		return AsmMismatchInfo{MismatchReasons: ReasonInvalidRight}
	}

	aWords := tokenizeInstructionText(a.Text)
	bWords := tokenizeInstructionText(b.Text)
	mismatchBits, maybeBits := compareAsmText(aWords, bWords)

	var reasons MismatchReason
	if a.IsJump && b.IsJump && a.JumpLen != b.JumpLen {
		reasons |= ReasonJumpLen
	}

	return AsmMismatchInfo{
		MismatchBits:      mismatchBits,
		MaybeMismatchBits: maybeBits,
		MismatchReasons:   reasons,
	}
}

// createMismatchInfoCached is the lookahead-friendly variant used by the
// matcher: it consults a pre-tokenized cache instead of re-splitting text.
func createMismatchInfoCached(a, b *AsmInstruction, aWords, bWords []string) AsmMismatchInfo {
	if a == nil {
		return AsmMismatchInfo{MismatchReasons: ReasonMissingLeft}
	}
	if b == nil {
		return AsmMismatchInfo{MismatchReasons: ReasonMissingRight}
	}
	if a.Invalid != b.Invalid {
		if a.Invalid {
			return AsmMismatchInfo{MismatchReasons: ReasonInvalidLeft}
		}
		return AsmMismatchInfo{MismatchReasons: ReasonInvalidRight}
	}

	mismatchBits, maybeBits := compareAsmText(aWords, bWords)

	var reasons MismatchReason
	if a.IsJump && b.IsJump && a.JumpLen != b.JumpLen {
		reasons |= ReasonJumpLen
	}

	return AsmMismatchInfo{
		MismatchBits:      mismatchBits,
		MaybeMismatchBits: maybeBits,
		MismatchReasons:   reasons,
	}
}
