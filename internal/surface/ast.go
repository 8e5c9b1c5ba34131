package surface

// Program is a parsed file: a flat list of function declarations. The
// scaffolding frontend has no struct/module/import syntax — everything it
// needs to exercise the orchestrator lives at the function level.
type Program struct {
	Funcs []*FuncDecl
}

// FuncDecl is `[pure] fn name(params) = body`.
type FuncDecl struct {
	Name     string
	NameSpan Span
	Pure     bool
	Params   []Param
	Body     Expr
}

// Param is one function parameter: its own span anchors the DefSpan every
// reference to it within the body resolves to.
type Param struct {
	Name string
	S    Span
}

// Span is a byte-offset range into the source the lexer tokenized.
type Span struct{ Start, End int }

// Expr is the surface expression sum type, lowered 1:1 onto mir.Expr/mir.Pattern.
type Expr interface{ exprSpan() Span }

type IdentExpr struct {
	Name string
	S    Span
}

type IntLitExpr struct {
	Value int64
	Sign  int
	S     Span
}

type BoolLitExpr struct {
	Value bool
	S     Span
}

type IfExpr struct {
	Cond, Then, Else Expr
	S                Span
}

type LetExpr struct {
	Name  string
	Value Expr
	Body  Expr
	S     Span
}

type MatchExpr struct {
	Scrutinee Expr
	Arms      []MatchArm
	S         Span
}

type MatchArm struct {
	Pattern Pattern
	Body    Expr
}

type CallExpr struct {
	Callee string
	Args   []Expr
	S      Span
}

func (e *IdentExpr) exprSpan() Span   { return e.S }
func (e *IntLitExpr) exprSpan() Span  { return e.S }
func (e *BoolLitExpr) exprSpan() Span { return e.S }
func (e *IfExpr) exprSpan() Span      { return e.S }
func (e *LetExpr) exprSpan() Span     { return e.S }
func (e *MatchExpr) exprSpan() Span   { return e.S }
func (e *CallExpr) exprSpan() Span    { return e.S }

// Pattern is the surface pattern sum type — only the shapes the
// scaffolding needs: wildcard, bound identifier, and literal.
type Pattern interface{ patSpan() Span }

type WildcardPat struct{ S Span }

type IdentPat struct {
	Name string
	S    Span
}

type IntLitPat struct {
	Value int64
	Sign  int
	S     Span
}

type BoolLitPat struct {
	Value bool
	S     Span
}

func (p *WildcardPat) patSpan() Span { return p.S }
func (p *IdentPat) patSpan() Span    { return p.S }
func (p *IntLitPat) patSpan() Span   { return p.S }
func (p *BoolLitPat) patSpan() Span  { return p.S }
