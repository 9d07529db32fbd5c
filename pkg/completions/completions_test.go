package completions

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"clipdata/pkg/config"
	"clipdata/pkg/history"
	"clipdata/pkg/spreadsheet"
	"clipdata/pkg/tabular"
)

func TestFilterPrefix(t *testing.T) {
	c := NewCompleter()
	items := []string{"tab\tTab-separated", "table", "csv"}

	got := c.filterPrefix(items, "TA")
	want := []string{"tab\tTab-separated", "table"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("filterPrefix() = %v, want %v", got, want)
	}
	if got := c.filterPrefix(items, "x"); len(got) != 0 {
		t.Errorf("filterPrefix(x) = %v, want empty", got)
	}
}

func TestCompleteFormat(t *testing.T) {
	c := NewCompleter()
	got, _ := c.CompleteFormat(nil, nil, "ma")
	if len(got) != 1 || !strings.HasPrefix(got[0], "markdown\t") {
		t.Errorf("CompleteFormat(ma) = %v", got)
	}
}

func TestCompleteColumnType(t *testing.T) {
	c := NewCompleter()

	got, _ := c.CompleteColumnType(nil, nil, "zip=s")
	if !reflect.DeepEqual(got, []string{"zip=string"}) {
		t.Errorf("CompleteColumnType(zip=s) = %v", got)
	}
	got, _ = c.CompleteColumnType(nil, nil, "a=int,b=d")
	if !reflect.DeepEqual(got, []string{"a=int,b=date", "a=int,b=datetime"}) {
		t.Errorf("CompleteColumnType(a=int,b=d) = %v", got)
	}
	if got, _ := c.CompleteColumnType(nil, nil, "zip"); len(got) != 0 {
		t.Errorf("CompleteColumnType(zip) = %v, want nothing before '='", got)
	}
}

func TestCompletePreset(t *testing.T) {
	c := NewCompleter()
	c.loadConfig = func() (*config.Config, error) {
		return &config.Config{
			Presets:      []config.Preset{{Name: "excel-eu"}, {Name: "excel-us"}, {Name: "pandas"}},
			ActivePreset: "excel-us",
		}, nil
	}

	got, _ := c.CompletePreset(nil, nil, "ex")
	want := []string{"excel-eu", "excel-us\tactive"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CompletePreset(ex) = %v, want %v", got, want)
	}
}

func TestCompleteHistoryID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path, history.Config{})
	if err != nil {
		t.Fatal(err)
	}
	e, err := store.Record(context.Background(), history.Entry{
		Direction: history.Paste,
		Kind:      history.KindTable,
		Content:   "city\tpop\nPortland\t645291\n",
	})
	if err != nil {
		t.Fatal(err)
	}
	store.Close()

	c := NewCompleter()
	c.historyPath = path

	got, _ := c.CompleteHistoryID(nil, nil, "")
	if len(got) != 2 {
		t.Fatalf("CompleteHistoryID() = %v, want last and one entry", got)
	}
	if got[1] != e.ShortID()+"\tpaste table: city pop" {
		t.Errorf("entry completion = %q", got[1])
	}

	if got, _ := c.CompleteHistoryID(nil, []string{"x"}, ""); len(got) != 0 {
		t.Errorf("second argument should not complete, got %v", got)
	}
}

func TestCompleteSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	tbl, err := tabular.FromColumns([]string{"a"}, [][]any{{1}})
	if err != nil {
		t.Fatal(err)
	}
	if err := spreadsheet.WriteSheet(path, "Data", tbl); err != nil {
		t.Fatal(err)
	}

	c := NewCompleter()
	got, _ := c.CompleteSheet(nil, []string{path}, "d")
	if !reflect.DeepEqual(got, []string{"Data"}) {
		t.Errorf("CompleteSheet(d) = %v, want [Data]", got)
	}
	if got, _ := c.CompleteSheet(nil, nil, ""); len(got) != 0 {
		t.Errorf("CompleteSheet without FILE = %v, want empty", got)
	}
}
