package migrate

import "testing"

func TestSplitStatements(t *testing.T) {
	script := `
create table a (id text);
insert into a values ('x;y');
create function f() returns void as $$ begin; end $$ language plpgsql;
`
	stmts := splitStatements(script)
	if len(stmts) != 3 {
		t.Fatalf("got %d statements, want 3: %q", len(stmts), stmts)
	}
}

func TestSplitStatementsTrailingWithoutSemicolon(t *testing.T) {
	stmts := splitStatements("select 1")
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
}

func TestSplitStatementsEmpty(t *testing.T) {
	if stmts := splitStatements("  \n "); len(stmts) != 0 {
		t.Fatalf("got %d statements, want 0", len(stmts))
	}
}
