package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseRoutingDataset(t *testing.T) {
	input := "case_id,prompt,expected_agent\nr1,\"Transfer $50, please\",Operational\n\nr2,Hours?,Informational\n"
	cases, err := Parse(strings.NewReader(input), KindRouting)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("expected 2 cases, got %d", len(cases))
	}
	if cases[0].ID != "r1" || cases[0].Prompt != "Transfer $50, please" || cases[0].Expected != "Operational" {
		t.Fatalf("unexpected first case: %+v", cases[0])
	}
}

func TestParseToolDatasetColumnOrder(t *testing.T) {
	input := "expected_tool,case_id,prompt\npay_bill,t1,Pay my bill\n"
	cases, err := Parse(strings.NewReader(input), KindTool)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cases) != 1 || cases[0].Expected != "pay_bill" || cases[0].Prompt != "Pay my bill" {
		t.Fatalf("unexpected cases: %+v", cases)
	}
}

func TestParseRejectsDuplicateCaseIDs(t *testing.T) {
	input := "case_id,prompt,expected_agent\nr1,a,Operational\nr1,b,Informational\n"
	_, err := Parse(strings.NewReader(input), KindRouting)
	if !errors.Is(err, ErrDuplicateCase) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestParseRequiresColumns(t *testing.T) {
	if _, err := Parse(strings.NewReader("case_id,prompt,expected_agent\n"), KindTool); err == nil {
		t.Fatalf("expected missing expected_tool column error")
	}
	if _, err := Parse(strings.NewReader(""), KindRouting); err == nil {
		t.Fatalf("expected missing header error")
	}
	if _, err := Parse(strings.NewReader("case_id,prompt,expected_agent\n,x,Operational\n"), KindRouting); err == nil {
		t.Fatalf("expected empty case_id error")
	}
}

func TestParseHeaderOnlyIsEmpty(t *testing.T) {
	cases, err := Parse(strings.NewReader("case_id,prompt,expected_agent\n"), KindRouting)
	if err != nil || len(cases) != 0 {
		t.Fatalf("expected empty dataset, got %v (%v)", cases, err)
	}
}

func TestDefaultDatasets(t *testing.T) {
	routing, err := Default(KindRouting)
	if err != nil {
		t.Fatalf("routing: %v", err)
	}
	if routing.Name != "routing_dataset.csv" || len(routing.Cases) == 0 {
		t.Fatalf("unexpected routing dataset: %+v", routing)
	}
	labels := map[string]bool{}
	for _, c := range routing.Cases {
		labels[c.Expected] = true
	}
	for _, want := range []string{"Operational", "Informational", "FinancialCoach"} {
		if !labels[want] {
			t.Fatalf("expected routing label %s in default dataset", want)
		}
	}

	tools, err := Load("", KindTool)
	if err != nil {
		t.Fatalf("tool: %v", err)
	}
	if tools.Name != "tool_call_dataset.csv" || tools.Cases[0].Expected != "transfer_funds" {
		t.Fatalf("unexpected tool dataset: %+v", tools.Cases[0])
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.csv")
	if err := os.WriteFile(path, []byte("case_id,prompt,expected_tool\nx1,Pay,pay_bill\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ds, err := Load(path, KindTool)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Name != path || len(ds.Cases) != 1 {
		t.Fatalf("unexpected dataset: %+v", ds)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.csv"), KindTool); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestParseKind(t *testing.T) {
	for input, want := range map[string]Kind{"handoff": KindRouting, "routing": KindRouting, "Tool": KindTool, "tool_call": KindTool} {
		got, err := ParseKind(input)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseKind("qa"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
