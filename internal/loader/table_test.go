package loader

import (
	"strings"
	"testing"
)

func TestNewTablePadsShortRowsAndSkipsBlankOnes(t *testing.T) {
	table, err := newTable(
		[]string{"employee_id", "name", "salary"},
		[][]string{{"1", "Asha", "72000"}, {"2", "Ravi"}, {"", "", ""}, {"3", "Mira", "65000.50", ""}},
	)
	if err != nil {
		t.Fatalf("newTable() error = %v", err)
	}
	if len(table.Records) != 3 {
		t.Fatalf("records = %d, want 3", len(table.Records))
	}
	if len(table.Records[1]) != 3 || table.Records[1][2] != "" {
		t.Fatalf("short row not padded: %v", table.Records[1])
	}
	want := []ColumnType{ColumnInteger, ColumnText, ColumnReal}
	for i, typ := range want {
		if table.Types[i] != typ {
			t.Fatalf("Types[%d] = %s, want %s", i, table.Types[i], typ)
		}
	}
}

func TestNewTableRejectsExtraFields(t *testing.T) {
	_, err := newTable([]string{"a"}, [][]string{{"1", "2"}})
	if err == nil || !strings.Contains(err.Error(), "2 fields") {
		t.Fatalf("newTable() error = %v", err)
	}
	if _, err := newTable(nil, nil); err == nil {
		t.Fatal("expected error for empty header")
	}
}

func TestNormalizeHeader(t *testing.T) {
	got := normalizeHeader([]string{"\ufeffid", " Name ", "", "name", "Name"})
	want := []string{"id", "Name", "Unnamed: 2", "name.1", "Name.2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("normalizeHeader() = %q, want %q", got, want)
		}
	}
}

func TestTableValueConvertsByType(t *testing.T) {
	table, err := newTable([]string{"id", "score", "city"}, [][]string{{"7", "1.5", " Pune"}, {"", "", ""}, {"8", "", "Goa"}})
	if err != nil {
		t.Fatalf("newTable() error = %v", err)
	}
	id, _ := table.value(0, 0)
	score, _ := table.value(0, 1)
	city, _ := table.value(0, 2)
	if id != int64(7) || score != 1.5 || city != " Pune" {
		t.Fatalf("values = %#v %#v %#v", id, score, city)
	}
	empty, _ := table.value(1, 1)
	if empty != nil {
		t.Fatalf("empty cell = %#v, want nil", empty)
	}
}
