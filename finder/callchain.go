package finder

import (
	"slices"

	"github.com/chazu/pslkit/syntax"
)

// WordAt returns the index of the word token under pos, or -1. A position
// just past the end of a word still hits it.
func WordAt(tokens []syntax.Token, pos syntax.Position) int {
	for i, tok := range tokens {
		if pos.Before(tok.Pos) {
			break
		}
		if tok.IsWord() && tok.Range().Contains(pos) {
			return i
		}
	}
	return -1
}

// CallChainAt returns the call chain ending with the word under pos:
// [a b c] for the "c" of "a.b(x).c". For "label^ROUTINE" with the cursor
// on the label the chain is [ROUTINE label].
func CallChainAt(tokens []syntax.Token, pos syntax.Position) []syntax.Token {
	i := WordAt(tokens, pos)
	if i < 0 {
		return nil
	}
	chain := chainEndingAt(tokens, i)
	if len(chain) == 1 && i+2 < len(tokens) && tokens[i+1].Type == syntax.TokenCaret && tokens[i+2].IsWord() {
		chain = []syntax.Token{tokens[i+2], tokens[i]}
	}
	return chain
}

// CompletionChainAt returns the chain before the "." at or before pos and
// the partial word typed after it. ok is false when pos does not follow a
// dereference.
func CompletionChainAt(tokens []syntax.Token, pos syntax.Position) (chain []syntax.Token, prefix string, ok bool) {
	dot := -1
	for i, tok := range tokens {
		if pos.Before(tok.End()) {
			break
		}
		dot = i
	}
	if dot < 0 {
		return nil, "", false
	}
	if tokens[dot].IsWord() && dot > 0 {
		prefix = tokens[dot].Text
		dot--
	}
	if tokens[dot].Type != syntax.TokenPeriod || dot == 0 {
		return nil, "", false
	}
	k, found := linkEndingAt(tokens, dot-1)
	if !found {
		return nil, "", false
	}
	return chainEndingAt(tokens, k), prefix, true
}

// chainEndingAt walks back from the word at i over "." links.
func chainEndingAt(tokens []syntax.Token, i int) []syntax.Token {
	chain := []syntax.Token{tokens[i]}
	for j := i - 1; j > 0 && tokens[j].Type == syntax.TokenPeriod; {
		k, ok := linkEndingAt(tokens, j-1)
		if !ok {
			break
		}
		chain = append(chain, tokens[k])
		j = k - 1
	}
	slices.Reverse(chain)
	return chain
}

// linkEndingAt returns the word of the link whose last token is at k,
// skipping a trailing argument list.
func linkEndingAt(tokens []syntax.Token, k int) (int, bool) {
	if k >= 0 && tokens[k].Type == syntax.TokenCloseParen {
		depth := 0
		for ; k >= 0; k-- {
			switch tokens[k].Type {
			case syntax.TokenCloseParen:
				depth++
			case syntax.TokenOpenParen:
				depth--
			}
			if depth == 0 {
				break
			}
		}
		k--
	}
	if k < 0 || !tokens[k].IsWord() {
		return -1, false
	}
	return k, true
}
