package cddl

import (
	"fmt"
	"strconv"
)

// Parser parses CDDL source into a File AST.
type Parser struct {
	lexer    *Lexer
	current  Token
	previous Token
	errors   []ParseError
	comments []*Comment
}

// ParseError represents a parsing error.
type ParseError struct {
	Position Position
	Message  string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Position.Filename, e.Position.Line, e.Position.Column, e.Message)
}

// NewParser creates a new parser for the given input.
func NewParser(filename, input string) *Parser {
	p := &Parser{lexer: NewLexer(filename, input)}
	p.advance()
	return p
}

// Parse parses the entire CDDL source into a File.
func (p *Parser) Parse() (*File, []ParseError) {
	file := &File{Position: p.current.Position}

	for !p.check(TokenEOF) {
		p.collectComments()
		if p.check(TokenEOF) {
			break
		}
		rule, err := p.parseRule()
		if err != nil {
			p.errors = append(p.errors, *err)
			p.synchronize()
			continue
		}
		file.Rules = append(file.Rules, rule)
	}

	return file, p.errors
}

// ParseFile is a convenience function that parses a CDDL source string.
func ParseFile(filename, input string) (*File, []ParseError) {
	p := NewParser(filename, input)
	return p.Parse()
}

// parseRule parses: ident genericparams? '=' ( Type | '(' grpent-list ')' )
func (p *Parser) parseRule() (*Rule, *ParseError) {
	comments := p.takeComments()
	startPos := p.current.Position

	if !p.check(TokenIdent) {
		return nil, p.error("expected rule name")
	}
	name := p.current.Value
	p.advance()

	var params []string
	if p.check(TokenLAngle) {
		p.advance()
		for {
			if !p.check(TokenIdent) {
				return nil, p.error("expected generic parameter name")
			}
			params = append(params, p.current.Value)
			p.advance()
			if p.check(TokenComma) {
				p.advance()
				continue
			}
			break
		}
		if !p.consume(TokenRAngle, "expected '>' after generic parameters") {
			return nil, p.error("expected '>' after generic parameters")
		}
	}

	if !p.consume(TokenEquals, "expected '=' after rule name") {
		return nil, p.error("expected '=' after rule name")
	}

	// Tentatively try a group-rule body: "( grpent (',' grpent)* )"
	if p.check(TokenLParen) {
		mark := p.mark()
		if gc, ok := p.tryParseGroupRuleBody(); ok {
			endPos := p.previous.Position
			return &Rule{
				Position:      startPos,
				EndPos:        endPos,
				Kind:          RuleGroup,
				Name:          name,
				GenericParams: params,
				GroupValue:    gc,
				Comments:      append(comments, p.takeTrailingComments(endPos.Line)...),
			}, nil
		}
		p.reset(mark)
	}

	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}

	return &Rule{
		Position:      startPos,
		EndPos:        typ.End(),
		Kind:          RuleType,
		Name:          name,
		GenericParams: params,
		TypeValue:     typ,
		Comments:      append(comments, p.takeTrailingComments(typ.End().Line)...),
	}, nil
}

// tryParseGroupRuleBody attempts to parse "( grpent, ... )" as a group
// rule body. It only reports ok=true when at least one entry carries an
// explicit member key or occurrence indicator, or there is more than one
// entry — distinguishing a genuine group body from an ordinary
// parenthesized single type (Type2Paren), which is handled by the
// normal Type/Type2 grammar instead.
func (p *Parser) tryParseGroupRuleBody() (*GroupChoice, bool) {
	startPos := p.current.Position
	p.advance() // consume '('

	gc := &GroupChoice{Position: startPos}
	for !p.check(TokenRParen) {
		if p.check(TokenEOF) {
			return nil, false
		}
		entry, err := p.parseGroupEntry()
		if err != nil {
			return nil, false
		}
		gc.Entries = append(gc.Entries, entry)
		if p.check(TokenComma) {
			p.advance()
			continue
		}
		break
	}
	if !p.check(TokenRParen) {
		return nil, false
	}
	gc.EndPos = p.current.Position
	p.advance() // consume ')'

	looksLikeGroup := len(gc.Entries) > 1
	for _, e := range gc.Entries {
		if e.Key != nil || e.Occur != nil {
			looksLikeGroup = true
		}
	}
	if !looksLikeGroup {
		return nil, false
	}
	return gc, true
}

// parseType parses: Type1 ('/' Type1)*
func (p *Parser) parseType() (*Type, *ParseError) {
	startPos := p.current.Position
	t1, err := p.parseType1()
	if err != nil {
		return nil, err
	}
	typ := &Type{Position: startPos, Choices: []*Type1{t1}}
	for p.check(TokenSlash) {
		p.advance()
		next, err := p.parseType1()
		if err != nil {
			return nil, err
		}
		typ.Choices = append(typ.Choices, next)
	}
	typ.EndPos = typ.Choices[len(typ.Choices)-1].End()
	return typ, nil
}

// parseType1 parses: Type2 (RangeOp | ControlOp)?
func (p *Parser) parseType1() (*Type1, *ParseError) {
	startPos := p.current.Position
	t2, err := p.parseType2()
	if err != nil {
		return nil, err
	}

	t1 := &Type1{Position: startPos, Type2: t2, EndPos: t2.End()}

	if p.check(TokenDotDot) || p.check(TokenDotDotDot) {
		inclusive := p.check(TokenDotDot)
		opStart := p.current.Position
		p.advance()
		upper, err := p.parseType2()
		if err != nil {
			return nil, err
		}
		op := &Operator{
			Position:    opStart,
			EndPos:      upper.End(),
			Kind:        OpRange,
			IsInclusive: inclusive,
			RHS:         &Type{Position: upper.Position, EndPos: upper.End(), Choices: []*Type1{{Position: upper.Position, EndPos: upper.End(), Type2: upper}}},
		}
		t1.Operator = op
		t1.EndPos = op.End()
		return t1, nil
	}

	if p.check(TokenDot) {
		opStart := p.current.Position
		p.advance()
		if !p.check(TokenIdent) {
			return nil, p.error("expected control operator name after '.'")
		}
		ctrl := p.current.Value
		p.advance()
		rhsStart := p.current.Position
		operand, err := p.parseType1()
		if err != nil {
			return nil, err
		}
		op := &Operator{
			Position: opStart,
			EndPos:   operand.End(),
			Kind:     OpControl,
			Ctrl:     ctrl,
			RHS:      &Type{Position: rhsStart, EndPos: operand.End(), Choices: []*Type1{operand}},
		}
		t1.Operator = op
		t1.EndPos = op.End()
		return t1, nil
	}

	return t1, nil
}

// parseType2 parses a single innermost type expression.
func (p *Parser) parseType2() (*Type2, *ParseError) {
	startPos := p.current.Position

	switch p.current.Type {
	case TokenUint:
		v, err := strconv.ParseUint(p.current.Value, 10, 64)
		if err != nil {
			return nil, p.error("invalid integer literal")
		}
		endPos := p.current.Position
		p.advance()
		return &Type2{Position: startPos, EndPos: endPos, Kind: Type2Uint, UintValue: v}, nil

	case TokenInt:
		v, err := strconv.ParseInt(p.current.Value, 10, 64)
		if err != nil {
			return nil, p.error("invalid integer literal")
		}
		endPos := p.current.Position
		p.advance()
		return &Type2{Position: startPos, EndPos: endPos, Kind: Type2Int, IntValue: v}, nil

	case TokenText:
		v := p.current.Value
		endPos := p.current.Position
		p.advance()
		return &Type2{Position: startPos, EndPos: endPos, Kind: Type2Text, TextValue: v}, nil

	case TokenLParen:
		p.advance()
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		endPos := p.current.Position
		if !p.consume(TokenRParen, "expected ')'") {
			return nil, p.error("expected ')'")
		}
		return &Type2{Position: startPos, EndPos: endPos, Kind: Type2Paren, Paren: inner}, nil

	case TokenLBracket:
		p.advance()
		group, err := p.parseGroup(TokenRBracket)
		if err != nil {
			return nil, err
		}
		endPos := p.current.Position
		if !p.consume(TokenRBracket, "expected ']'") {
			return nil, p.error("expected ']'")
		}
		return &Type2{Position: startPos, EndPos: endPos, Kind: Type2Array, Group: group}, nil

	case TokenLBrace:
		p.advance()
		group, err := p.parseGroup(TokenRBrace)
		if err != nil {
			return nil, err
		}
		endPos := p.current.Position
		if !p.consume(TokenRBrace, "expected '}'") {
			return nil, p.error("expected '}'")
		}
		return &Type2{Position: startPos, EndPos: endPos, Kind: Type2Map, Group: group}, nil

	case TokenHash:
		p.advance()
		if !p.check(TokenUint) || p.current.Value != "6" {
			return nil, p.error("only #6 (tag) major-type escapes are supported")
		}
		p.advance()
		if !p.consume(TokenDot, "expected '.' after '#6'") {
			return nil, p.error("expected '.' after '#6'")
		}
		if !p.check(TokenUint) {
			return nil, p.error("expected tag number")
		}
		tag, err := strconv.ParseUint(p.current.Value, 10, 64)
		if err != nil {
			return nil, p.error("invalid tag number")
		}
		p.advance()
		if !p.consume(TokenLParen, "expected '(' after tag number") {
			return nil, p.error("expected '(' after tag number")
		}
		inner, perr := p.parseType1()
		if perr != nil {
			return nil, perr
		}
		endPos := p.current.Position
		if !p.consume(TokenRParen, "expected ')' after tagged type") {
			return nil, p.error("expected ')' after tagged type")
		}
		return &Type2{Position: startPos, EndPos: endPos, Kind: Type2Tagged, Tag: tag, TagInner: inner}, nil

	case TokenIdent:
		ident := p.current.Value
		endPos := p.current.Position
		p.advance()
		t2 := &Type2{Position: startPos, EndPos: endPos, Kind: Type2Typename, Ident: ident}
		if p.check(TokenLAngle) {
			p.advance()
			for {
				arg, err := p.parseType1()
				if err != nil {
					return nil, err
				}
				t2.GenericArgs = append(t2.GenericArgs, arg)
				if p.check(TokenComma) {
					p.advance()
					continue
				}
				break
			}
			t2.EndPos = p.current.Position
			if !p.consume(TokenRAngle, "expected '>' after generic arguments") {
				return nil, p.error("expected '>' after generic arguments")
			}
		}
		return t2, nil

	default:
		return nil, p.error(fmt.Sprintf("unexpected token in type position: %s", p.current.Type))
	}
}

// parseGroup parses: GroupChoice ('//' GroupChoice)*  up to (but not consuming) closeTok.
func (p *Parser) parseGroup(closeTok TokenType) (*Group, *ParseError) {
	startPos := p.current.Position
	group := &Group{Position: startPos}

	choice, err := p.parseGroupChoice(closeTok)
	if err != nil {
		return nil, err
	}
	group.Choices = append(group.Choices, choice)

	for p.check(TokenDblSlash) {
		p.advance()
		choice, err := p.parseGroupChoice(closeTok)
		if err != nil {
			return nil, err
		}
		group.Choices = append(group.Choices, choice)
	}
	group.EndPos = group.Choices[len(group.Choices)-1].End()
	return group, nil
}

// parseGroupChoice parses a comma-separated list of group entries.
func (p *Parser) parseGroupChoice(closeTok TokenType) (*GroupChoice, *ParseError) {
	startPos := p.current.Position
	gc := &GroupChoice{Position: startPos, Comments: p.peekComments()}

	for {
		p.collectComments()
		if p.check(closeTok) || p.check(TokenDblSlash) || p.check(TokenEOF) {
			// Trailing comments before the delimiter belong to nothing
			// parseable; drop them rather than let them leak onto the
			// next rule's metadata.
			p.comments = nil
			break
		}
		entry, err := p.parseGroupEntry()
		if err != nil {
			return nil, err
		}
		gc.Entries = append(gc.Entries, entry)
		p.collectComments()
		if p.check(TokenComma) {
			p.advance()
			continue
		}
		if p.check(closeTok) || p.check(TokenDblSlash) {
			p.comments = nil
		}
		break
	}

	if len(gc.Entries) > 0 {
		gc.EndPos = gc.Entries[len(gc.Entries)-1].End()
	} else {
		gc.EndPos = startPos
	}
	return gc, nil
}

// parseGroupEntry parses: occur? memberkey? Type1
func (p *Parser) parseGroupEntry() (*GroupEntry, *ParseError) {
	comments := p.takeComments()
	startPos := p.current.Position

	var occur *Occur
	switch p.current.Type {
	case TokenQuestion:
		occur = &Occur{Position: p.current.Position, EndPos: p.current.Position, Kind: OccurOptional}
		p.advance()
	case TokenStar:
		occur = &Occur{Position: p.current.Position, EndPos: p.current.Position, Kind: OccurZeroOrMore}
		p.advance()
	case TokenPlus:
		occur = &Occur{Position: p.current.Position, EndPos: p.current.Position, Kind: OccurOneOrMore}
		p.advance()
	}

	key, err := p.tryParseMemberKey()
	if err != nil {
		return nil, err
	}

	value, err := p.parseType1()
	if err != nil {
		return nil, err
	}

	return &GroupEntry{
		Position: startPos,
		EndPos:   value.End(),
		Occur:    occur,
		Key:      key,
		Value:    value,
		Comments: comments,
	}, nil
}

// tryParseMemberKey attempts to parse a member key followed by ':' or
// '=>'. It backtracks (returning nil, nil) if what follows does not
// turn out to be a key.
func (p *Parser) tryParseMemberKey() (*MemberKey, *ParseError) {
	mark := p.mark()

	// bareword ':'
	if p.check(TokenIdent) {
		startPos := p.current.Position
		name := p.current.Value
		endPos := p.current.Position
		p.advance()
		if p.check(TokenColon) {
			p.advance()
			return &MemberKey{Position: startPos, EndPos: endPos, Kind: KeyBareword, Bareword: name}, nil
		}
		p.reset(mark)
	}

	// literal value ':' or '=>'
	if p.check(TokenUint) || p.check(TokenInt) || p.check(TokenText) {
		startPos := p.current.Position
		endPos := p.current.Position
		mk := &MemberKey{Position: startPos, EndPos: endPos, Kind: KeyValue}
		switch p.current.Type {
		case TokenUint:
			v, _ := strconv.ParseUint(p.current.Value, 10, 64)
			mk.UintValue = v
		case TokenInt:
			v, _ := strconv.ParseInt(p.current.Value, 10, 64)
			mk.IntValue = v
			mk.IsNegative = true
		case TokenText:
			mk.TextValue = p.current.Value
			mk.IsText = true
		}
		p.advance()
		if p.check(TokenColon) || p.check(TokenArrow) {
			p.advance()
			return mk, nil
		}
		p.reset(mark)
	}

	// Type1 '=>'
	t1, err := p.tryParseType1()
	if err == nil && t1 != nil && p.check(TokenArrow) {
		startPos := t1.Pos()
		endPos := t1.End()
		p.advance()
		return &MemberKey{Position: startPos, EndPos: endPos, Kind: KeyType1, Type1: t1}, nil
	}
	p.reset(mark)

	return nil, nil
}

// tryParseType1 parses a Type1 without surfacing parse errors to the
// caller (used for member-key lookahead); on failure it returns nil, nil
// and leaves the parser position unspecified (caller must reset).
func (p *Parser) tryParseType1() (t1 *Type1, err *ParseError) {
	defer func() {
		if r := recover(); r != nil {
			t1, err = nil, nil
		}
	}()
	res, perr := p.parseType1()
	if perr != nil {
		return nil, nil
	}
	return res, nil
}

// Helper methods.

func (p *Parser) advance() {
	p.previous = p.current
	p.current = p.lexer.Next()
}

func (p *Parser) check(typ TokenType) bool {
	return p.current.Type == typ
}

func (p *Parser) consume(typ TokenType, _ string) bool {
	if p.check(typ) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) error(msg string) *ParseError {
	return &ParseError{Position: p.current.Position, Message: msg}
}

// synchronize skips tokens until the next plausible rule start: an
// identifier immediately followed (ignoring generic params) by '='.
func (p *Parser) synchronize() {
	for !p.check(TokenEOF) {
		if p.check(TokenIdent) {
			mark := p.mark()
			p.advance()
			if p.check(TokenLAngle) {
				// Skip past generic params speculatively.
				depth := 1
				p.advance()
				for depth > 0 && !p.check(TokenEOF) {
					if p.check(TokenLAngle) {
						depth++
					} else if p.check(TokenRAngle) {
						depth--
					}
					p.advance()
				}
			}
			if p.check(TokenEquals) {
				p.reset(mark)
				return
			}
			p.reset(mark)
		}
		p.advance()
	}
}

// collectComments gathers comment tokens preceding the current token.
func (p *Parser) collectComments() {
	for p.check(TokenComment) {
		p.comments = append(p.comments, &Comment{
			Position: p.current.Position,
			EndPos:   p.current.Position,
			Text:     p.current.Value,
		})
		p.advance()
	}
}

// takeComments returns and clears comments collected so far.
func (p *Parser) takeComments() []*Comment {
	p.collectComments()
	result := p.comments
	p.comments = nil
	return result
}

// takeTrailingComments returns and removes pending comments that start
// on the given line, so "foo = bar ; @newtype" attaches the trailing
// annotation to foo rather than to whatever rule follows it.
func (p *Parser) takeTrailingComments(line int) []*Comment {
	p.collectComments()
	var taken, rest []*Comment
	for _, c := range p.comments {
		if c.Position.Line == line {
			taken = append(taken, c)
		} else {
			rest = append(rest, c)
		}
	}
	p.comments = rest
	return taken
}

// peekComments returns a snapshot of comments collected so far without
// clearing them, so both a GroupChoice and its first GroupEntry can see
// the same leading comment block (the "@name:" for the choice, a
// "@name:"/plain description for the field, whichever the writer meant).
func (p *Parser) peekComments() []*Comment {
	p.collectComments()
	if len(p.comments) == 0 {
		return nil
	}
	out := make([]*Comment, len(p.comments))
	copy(out, p.comments)
	return out
}

// lexState is a snapshot of parser/lexer position for backtracking.
type lexState struct {
	lexerPos    int
	lexerLine   int
	lexerColumn int
	current     Token
	previous    Token
}

func (p *Parser) mark() lexState {
	return lexState{
		lexerPos:    p.lexer.pos,
		lexerLine:   p.lexer.line,
		lexerColumn: p.lexer.column,
		current:     p.current,
		previous:    p.previous,
	}
}

func (p *Parser) reset(s lexState) {
	p.lexer.pos = s.lexerPos
	p.lexer.line = s.lexerLine
	p.lexer.column = s.lexerColumn
	p.current = s.current
	p.previous = s.previous
}
