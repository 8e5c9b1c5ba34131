package surface

import (
	"testing"

	"github.com/sodigy-lang/sodigy/internal/diag"
	"github.com/sodigy-lang/sodigy/internal/ident"
)

func TestLexerTokensBasic(t *testing.T) {
	lex := NewLexer("fn add(x, y) = x;")
	var types []TokenType
	for {
		tok := lex.NextToken()
		types = append(types, tok.Type)
		if tok.Type == EOF {
			break
		}
	}
	want := []TokenType{FN, IDENT, LPAREN, IDENT, COMMA, IDENT, RPAREN, ASSIGN, IDENT, SEMI, EOF}
	if len(types) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(types), types)
	}
	for i, tt := range want {
		if types[i] != tt {
			t.Errorf("token %d: expected %s, got %s", i, tt, types[i])
		}
	}
}

func TestParseSimpleFunc(t *testing.T) {
	p := NewParser("pure fn id(x) = x;")
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	if len(prog.Funcs) != 1 {
		t.Fatalf("expected 1 func, got %d", len(prog.Funcs))
	}
	fn := prog.Funcs[0]
	if fn.Name != "id" || !fn.Pure || len(fn.Params) != 1 || fn.Params[0].Name != "x" {
		t.Fatalf("unexpected func decl: %+v", fn)
	}
	if _, ok := fn.Body.(*IdentExpr); !ok {
		t.Fatalf("expected identity body to be an IdentExpr, got %T", fn.Body)
	}
}

func TestParseIfMatchLet(t *testing.T) {
	src := `
fn choose(flag) = if flag then 1 else 0;
fn classify(n) = let doubled = n; match doubled {
	0 => 0
	| _ => 1
};
`
	p := NewParser(src)
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	if len(prog.Funcs) != 2 {
		t.Fatalf("expected 2 funcs, got %d", len(prog.Funcs))
	}
	if _, ok := prog.Funcs[0].Body.(*IfExpr); !ok {
		t.Fatalf("expected IfExpr body, got %T", prog.Funcs[0].Body)
	}
	letExpr, ok := prog.Funcs[1].Body.(*LetExpr)
	if !ok {
		t.Fatalf("expected LetExpr body, got %T", prog.Funcs[1].Body)
	}
	matchExpr, ok := letExpr.Body.(*MatchExpr)
	if !ok {
		t.Fatalf("expected MatchExpr let-body, got %T", letExpr.Body)
	}
	if len(matchExpr.Arms) != 2 {
		t.Fatalf("expected 2 match arms, got %d", len(matchExpr.Arms))
	}
}

func TestLowerResolvesParamsAndCalls(t *testing.T) {
	p := NewParser("fn id(x) = x;\nfn main() = id(1);")
	prog := p.ParseProgram()
	if len(p.Errors()) != 0 {
		t.Fatalf("unexpected parse errors: %v", p.Errors())
	}
	bag := &diag.Bag{}
	mod := Lower(ident.FileID(0), "main", prog, bag)
	if bag.HasErrors() {
		t.Fatalf("unexpected lowering errors: %v", bag.Errors())
	}

	idFunc, ok := mod.Funcs["id"]
	if !ok {
		t.Fatal("expected an 'id' function")
	}
	if idFunc.Body == nil || !idFunc.Body.IsIdent() {
		t.Fatalf("expected id's body to lower to an ident expr, got %v", idFunc.Body)
	}

	mainFunc, ok := mod.Funcs["main"]
	if !ok {
		t.Fatal("expected a 'main' function")
	}
	if mainFunc.Body == nil || !mainFunc.Body.IsCall() {
		t.Fatalf("expected main's body to lower to a call expr, got %v", mainFunc.Body)
	}
}

func TestLowerReportsUnresolvedIdentifier(t *testing.T) {
	p := NewParser("fn broken() = missing;")
	prog := p.ParseProgram()
	bag := &diag.Bag{}
	Lower(ident.FileID(0), "broken", prog, bag)
	if !bag.HasErrors() {
		t.Fatal("expected an unresolved-identifier error")
	}
}
