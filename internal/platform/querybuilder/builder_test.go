package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	t.Parallel()

	query, args, err := Select("id", "remote_league_id").
		From("leagues").
		Where(Eq("platform_user_id", int64(7)), Eq("season", "2025")).
		OrderBy("season DESC", "remote_league_id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, remote_league_id FROM leagues WHERE platform_user_id = $1 AND season = $2 ORDER BY season DESC, remote_league_id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(7) || args[1] != "2025" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_RequiresTable(t *testing.T) {
	t.Parallel()

	if _, _, err := Select("id").ToSQL(); err == nil {
		t.Fatalf("expected error for missing table")
	}
}

func TestInsertBuilder_RowLengthMismatch(t *testing.T) {
	t.Parallel()

	_, _, err := InsertInto("leagues").Columns("a", "b").Values(1).ToSQL()
	if err == nil {
		t.Fatalf("expected row length error")
	}
}

type leagueRow struct {
	ID             int64  `db:"id,readonly"`
	RemoteLeagueID string `db:"remote_league_id"`
	PlatformUserID int64  `db:"platform_user_id"`
	Name           string `db:"name"`
	internal       string
	Ignored        string `db:"-"`
}

func TestInsertModel_WithConflictUpdate(t *testing.T) {
	t.Parallel()

	suffix := ConflictUpdate([]string{"remote_league_id", "platform_user_id"}, "name") + " RETURNING id"
	query, args, err := InsertModel("leagues", leagueRow{ID: 9, RemoteLeagueID: "L1", PlatformUserID: 3, Name: "Dynasty"}, suffix)
	if err != nil {
		t.Fatalf("build insert model query: %v", err)
	}

	wantQuery := "INSERT INTO leagues (remote_league_id, platform_user_id, name) VALUES ($1, $2, $3) " +
		"ON CONFLICT (remote_league_id, platform_user_id) DO UPDATE SET name = EXCLUDED.name RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "L1" || args[1] != int64(3) || args[2] != "Dynasty" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModels_MultiRowIgnore(t *testing.T) {
	t.Parallel()

	rows := []leagueRow{
		{RemoteLeagueID: "L1", PlatformUserID: 1, Name: "a"},
		{RemoteLeagueID: "L2", PlatformUserID: 1, Name: "b"},
	}
	query, args, err := InsertModels("leagues", rows, ConflictIgnore("remote_league_id", "platform_user_id"))
	if err != nil {
		t.Fatalf("build insert models query: %v", err)
	}

	wantQuery := "INSERT INTO leagues (remote_league_id, platform_user_id, name) VALUES ($1, $2, $3), ($4, $5, $6) " +
		"ON CONFLICT (remote_league_id, platform_user_id) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 6 || args[3] != "L2" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModels_Empty(t *testing.T) {
	t.Parallel()

	if _, _, err := InsertModels[leagueRow]("leagues", nil, ""); err == nil {
		t.Fatalf("expected error for empty models")
	}
}

func TestColumns(t *testing.T) {
	t.Parallel()

	cols := Columns(leagueRow{})
	if len(cols) != 3 || cols[0] != "remote_league_id" {
		t.Fatalf("unexpected columns: %v", cols)
	}
	if Columns(42) != nil {
		t.Fatalf("expected nil columns for non-struct")
	}
}
