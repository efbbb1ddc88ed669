package cli

import (
	"os"
	"path/filepath"
	"testing"
)

const dataset = `{
  "label_functions": ["a", "b"],
  "labels": [[1, 1], [-1, 0], [0, -1], [1, -1]],
  "gold": [1, -1, -1, 1]
}`

func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New("test")
	c.rootCmd.SetArgs(append(args, "-s"))
	return c.Run()
}

func TestTrainRunEvaluate(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "d.json")
	if err := os.WriteFile(data, []byte(dataset), 0644); err != nil {
		t.Fatal(err)
	}
	model := filepath.Join(dir, "model.json")

	if err := execute(t, "train", model, "--dataset", data); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(model); err != nil {
		t.Fatalf("model not written: %v", err)
	}
	if err := execute(t, "run", model, "--dataset", data); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "evaluate", "--dataset", data); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "noise", "--dataset", data); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "data", "list", "--data-folder", dir); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "data", "stats", data); err != nil {
		t.Fatal(err)
	}
}

func TestTrainRequiresModelPath(t *testing.T) {
	if err := execute(t, "train"); err == nil {
		t.Error("expected error without model path")
	}
}

func TestRunMissingModel(t *testing.T) {
	if err := execute(t, "run", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing model")
	}
}
