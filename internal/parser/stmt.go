package parser

import "hangeulscript/internal/lexer"

// arrayPostpositionMethods is the closed dispatch table for
// POSTPOSITION_CALL (spec.md Open Question 2, resolved in SPEC_FULL.md
// §9): these four verbs are the only ones the parser accepts as the method
// half of a postposition call, and only against an Array-typed target at
// runtime. Anything else is a TypeMismatch raised by the compiler/VM, not
// a parse error — the parser only needs to know these are call-shaped.
var arrayPostpositionMethods = map[string]bool{
	"정렬한다":      true,
	"역순으로_나열한다": true,
	"추가한다":      true,
	"합친다":       true,
}

// isPostpositionMethodName reports whether word is a recognized
// postposition-call method name.
func isPostpositionMethodName(word string) bool {
	return arrayPostpositionMethods[word]
}

// postpositionKinds lists every postposition TokenKind. Nothing in the
// package reads it; parsePostfix dispatches on Token.IsPostposition.
var postpositionKinds = []lexer.TokenKind{
	lexer.TokenPostpositionObj,
	lexer.TokenPostpositionSubj,
	lexer.TokenPostpositionTopic,
	lexer.TokenPostpositionGen,
	lexer.TokenPostpositionInstr,
	lexer.TokenPostpositionLocAt,
	lexer.TokenPostpositionLocFrom,
	lexer.TokenPostpositionOther,
}
