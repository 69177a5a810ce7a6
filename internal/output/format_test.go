package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/arliden/semlabel/internal/labelpath"
	"github.com/arliden/semlabel/internal/model"
)

func pred(label string, conf float64) model.Prediction {
	p := model.Prediction{QueryID: "q-1", Confidence: conf}
	if label != "" {
		path, err := labelpath.Parse(label)
		if err != nil {
			panic(err)
		}
		p.Label = path
	}
	return p
}

func TestToRecord(t *testing.T) {
	r := ToRecord(pred("体育##篮球", 0.87))
	if r.Label != "体育##篮球" {
		t.Errorf("Label = %q", r.Label)
	}
	if r.Confidence != 0.87 {
		t.Errorf("Confidence = %v", r.Confidence)
	}
	if r.QueryID != "q-1" {
		t.Errorf("QueryID = %q", r.QueryID)
	}
}

func TestToRecordUnclassified(t *testing.T) {
	r := ToRecord(pred("", 0.21))
	if r.Label != model.UnclassifiedLabel {
		t.Errorf("Label = %q, want sentinel", r.Label)
	}
	if r.Confidence != 0.21 {
		t.Errorf("Confidence = %v, want preserved", r.Confidence)
	}
}

func TestRecordJSONKeys(t *testing.T) {
	data, err := json.Marshal(ToRecord(pred("体育", 0.5)))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"query_id", "label", "confidence"} {
		if _, ok := m[key]; !ok {
			t.Errorf("expected key %q in JSON", key)
		}
	}
}

func TestRecordTSV(t *testing.T) {
	line := ToRecord(pred("体育##篮球", 0.875)).TSV()
	fields := strings.Split(line, "\t")
	if len(fields) != 2 {
		t.Fatalf("got %d fields, want 2: %q", len(fields), line)
	}
	if fields[0] != "体育##篮球" {
		t.Errorf("label field = %q", fields[0])
	}
	if fields[1] != "0.875000" {
		t.Errorf("confidence field = %q", fields[1])
	}
}

func TestRecallTSV(t *testing.T) {
	path, _ := labelpath.Parse("教育##考研")
	line := RecallTSV(3, model.Neighbor{Label: path, Score: 0.5})
	if line != "3\t教育##考研\t0.500000" {
		t.Errorf("RecallTSV = %q", line)
	}
}
