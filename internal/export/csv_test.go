package export

import (
	"bytes"
	"testing"

	"saldo/internal/core"
)

func TestWriteCSV(t *testing.T) {
	rows := []core.ExportRow{
		{Date: core.NewDate(2024, 2, 1), KindLabel: "Expense", CategoryName: "Food", Amount: core.Cents(-1250), Description: "lunch, with friends", GoalName: ""},
		{Date: core.NewDate(2024, 1, 31), KindLabel: "Income", CategoryName: "Pay", Amount: core.Cents(300000), Description: "salary", GoalName: "Bike"},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	want := "Date,Type,Category,Amount,Description,Goal\n" +
		"2024-02-01,Expense,Food,-12.50,\"lunch, with friends\",\n" +
		"2024-01-31,Income,Pay,3000.00,salary,Bike\n"
	if got := buf.String(); got != want {
		t.Errorf("WriteCSV() =\n%s\nwant\n%s", got, want)
	}
}

func TestWriteCSV_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if got := buf.String(); got != "Date,Type,Category,Amount,Description,Goal\n" {
		t.Errorf("WriteCSV(nil) = %q", got)
	}
}
