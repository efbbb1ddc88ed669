package weaklabel

import (
	"os"
	"path/filepath"
	"testing"
)

const spamDataset = `{
  "label_functions": ["has_link", "all_caps", "known_sender"],
  "labels": [
    [1, 1, -1],
    [1, 0, 0],
    [-1, 0, -1],
    [0, 1, 0],
    [1, 1, 1],
    [-1, -1, -1],
    [0, 0, -1],
    [1, -1, 0]
  ],
  "gold": [1, 1, -1, 1, 1, -1, -1, 0],
  "dependencies": [
    {"lf1": "has_link", "lf2": "all_caps", "kind": "similar"}
  ]
}`

const fastConfig = `
generative:
  epochs: 5
noise_aware:
  iterations: 50
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTrainSaveLoad(t *testing.T) {
	dataset := writeFile(t, "spam.json", spamDataset)
	m, err := Train(dataset, &TrainConfig{ConfigPath: writeFile(t, "config.yaml", fastConfig)})
	if err != nil {
		t.Fatal(err)
	}
	if m.ID == "" {
		t.Error("expected a model id")
	}
	if len(m.LabelFunctions) != 3 {
		t.Fatalf("expected 3 label functions, got %d", len(m.LabelFunctions))
	}

	probs, err := m.MarginalsFile(dataset)
	if err != nil {
		t.Fatal(err)
	}
	if len(probs) != 8 {
		t.Fatalf("expected 8 marginals, got %d", len(probs))
	}
	for i, p := range probs {
		if p <= 0 || p >= 1 {
			t.Errorf("marginal %d = %v, outside (0, 1)", i, p)
		}
	}

	path := filepath.Join(t.TempDir(), "model.json")
	if err := m.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.ID != m.ID {
		t.Errorf("ID = %q, want %q", loaded.ID, m.ID)
	}
	if !loaded.TrainedAt.Equal(m.TrainedAt) {
		t.Errorf("TrainedAt = %v, want %v", loaded.TrainedAt, m.TrainedAt)
	}
	again, err := loaded.Marginals([][]int{
		{1, 1, -1}, {1, 0, 0}, {-1, 0, -1}, {0, 1, 0},
		{1, 1, 1}, {-1, -1, -1}, {0, 0, -1}, {1, -1, 0},
	})
	if err != nil {
		t.Fatal(err)
	}
	for i := range probs {
		if again[i] != probs[i] {
			t.Errorf("marginal %d after reload = %v, want %v", i, again[i], probs[i])
		}
	}
}

func TestMarginalsErrors(t *testing.T) {
	dataset := writeFile(t, "spam.json", spamDataset)
	m, err := Train(dataset, &TrainConfig{ConfigPath: writeFile(t, "config.yaml", fastConfig)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Marginals([][]int{{1, 0}}); err == nil {
		t.Error("expected error for wrong column count")
	}
	if _, err := m.Marginals([][]int{{1, 0, 5}}); err == nil {
		t.Error("expected error for invalid vote")
	}
	other := writeFile(t, "other.json", `{"label_functions": ["a", "b", "c"], "labels": [[1, 0, 0]]}`)
	if _, err := m.MarginalsFile(other); err == nil {
		t.Error("expected error for mismatched label functions")
	}
}

func TestEvaluate(t *testing.T) {
	dataset := writeFile(t, "spam.json", spamDataset)
	result, err := Evaluate(dataset, &EvalConfig{ConfigPath: writeFile(t, "config.yaml", fastConfig)})
	if err != nil {
		t.Fatal(err)
	}
	if result.Total != 7 {
		t.Errorf("Total = %d, want 7", result.Total)
	}
	if result.GenerativeAccuracy < 0 || result.GenerativeAccuracy > 1 {
		t.Errorf("GenerativeAccuracy = %v", result.GenerativeAccuracy)
	}
	if result.NoiseAwareAccuracy < 0 || result.NoiseAwareAccuracy > 1 {
		t.Errorf("NoiseAwareAccuracy = %v", result.NoiseAwareAccuracy)
	}
	if len(result.LabelFunctions) != 3 {
		t.Fatalf("expected 3 label function results, got %d", len(result.LabelFunctions))
	}
	// has_link votes on rows 0, 1, 2, 4, 5, 7; row 7 has no gold label.
	lf := result.LabelFunctions[0]
	if lf.Name != "has_link" || lf.EmpiricalAccuracy != 1 {
		t.Errorf("has_link result = %+v", lf)
	}
	if lf.Coverage != 6.0/8.0 {
		t.Errorf("has_link coverage = %v, want 0.75", lf.Coverage)
	}
}

func TestEvaluateThresholdZero(t *testing.T) {
	dataset := writeFile(t, "spam.json", spamDataset)
	threshold := 0.0
	result, err := Evaluate(dataset, &EvalConfig{
		ConfigPath: writeFile(t, "config.yaml", fastConfig),
		Threshold:  &threshold,
	})
	if err != nil {
		t.Fatal(err)
	}
	// Every marginal is above 0, so only the 4 positive gold labels match.
	if result.GenerativeCorrect != 4 {
		t.Errorf("GenerativeCorrect = %d, want 4", result.GenerativeCorrect)
	}
	if result.NoiseAwareCorrect != 4 {
		t.Errorf("NoiseAwareCorrect = %d, want 4", result.NoiseAwareCorrect)
	}
}

func TestLoadRejectsBadDependencyEdge(t *testing.T) {
	path := writeFile(t, "model.json", `{"id": "x", "label_functions": ["a", "b"], "config": {},
	  "weights": {"class_prior": 0, "accuracy": [1, 1],
	    "optional": [[0, 0], [0, 0], [0, 0]],
	    "dependencies": [[], [{"j": 0, "k": 7, "weight": 1}], [], []]}}`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for dependency edge outside the label functions")
	}
}

func TestEvaluateWithoutGold(t *testing.T) {
	dataset := writeFile(t, "nogold.json", `{"labels": [[1, -1], [0, 1]]}`)
	if _, err := Evaluate(dataset, nil); err == nil {
		t.Error("expected error for dataset without gold labels")
	}
}

func TestNoiseAware(t *testing.T) {
	dataset := writeFile(t, "spam.json", spamDataset)
	config := writeFile(t, "config.yaml", fastConfig+"  bias_term: true\n  sparse: true\n")
	result, err := NoiseAware(dataset, &TrainConfig{ConfigPath: config, Verbose: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Weights) != 4 {
		t.Errorf("expected 4 weights with bias term, got %d", len(result.Weights))
	}
	if len(result.Marginals) != 8 {
		t.Errorf("expected 8 marginals, got %d", len(result.Marginals))
	}
}

func TestLoadNonExistent(t *testing.T) {
	_, err := Load("nonexistent.json")
	if err == nil {
		t.Error("expected error for nonexistent model")
	}
}

func TestModelNotTrained(t *testing.T) {
	m := &Model{}
	if _, err := m.Marginals([][]int{{1}}); err == nil {
		t.Error("expected error for untrained model")
	}
	if err := m.Save(filepath.Join(t.TempDir(), "m.json")); err == nil {
		t.Error("expected error saving untrained model")
	}
}

func TestTrainEmptyDataset(t *testing.T) {
	dataset := writeFile(t, "empty.json", `{"labels": []}`)
	if _, err := Train(dataset, nil); err == nil {
		t.Error("expected error for dataset without candidates")
	}
}
