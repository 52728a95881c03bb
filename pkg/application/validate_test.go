package application

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Run("valid model", func(t *testing.T) {
		inputPath := writeModel(t, "./data/model_*.json", map[string]string{
			"data/model_2020.json": levelDataset,
			"data/model_2021.json": levelDataset,
		})
		app, _ := newTestApp(t, nil)

		report := app.Validate(inputPath)
		if !report.Valid {
			t.Fatalf("Valid = false, problems = %+v", report.Problems)
		}
		if report.Partitions != 2 || report.Waves != 1 || report.RuleCount != 1 {
			t.Errorf("report = %+v, want 2 partitions, 1 wave, 1 rule", report)
		}
	})

	t.Run("unresolvable rule", func(t *testing.T) {
		inputPath := writeModel(t, "./data/levels.json", map[string]string{
			"data/levels.json": strings.Replace(levelDataset, "mesh2d_s1", "mesh2d_s2", 1),
		})
		// The mapping now misses its source variable, so drop it.
		content, _ := os.ReadFile(inputPath)
		content = []byte(strings.Replace(string(content), "      variable_mapping:\n        mesh2d_s1: water_level\n", "", 1))
		if err := os.WriteFile(inputPath, content, 0o644); err != nil {
			t.Fatal(err)
		}
		app, _ := newTestApp(t, nil)

		report := app.Validate(inputPath)
		if report.Valid {
			t.Fatal("Valid = true, want false")
		}
		if !hasProblem(report, "can not be resolved") {
			t.Errorf("problems = %+v, want unresolved rule", report.Problems)
		}
	})

	t.Run("unknown save_only variable", func(t *testing.T) {
		inputPath := writeModel(t, "./data/levels.json", map[string]string{
			"data/levels.json": levelDataset,
		})
		content, _ := os.ReadFile(inputPath)
		content = []byte(strings.Replace(string(content), "[water_level_cm]", "[water_level_cm, habitat]", 1))
		if err := os.WriteFile(inputPath, content, 0o644); err != nil {
			t.Fatal(err)
		}
		app, _ := newTestApp(t, nil)

		report := app.Validate(inputPath)
		if report.Valid || !hasProblem(report, `"habitat"`) {
			t.Errorf("problems = %+v, want habitat problem", report.Problems)
		}
	})

	t.Run("syntax error", func(t *testing.T) {
		inputPath := filepath.Join(t.TempDir(), "broken.yaml")
		if err := os.WriteFile(inputPath, []byte("version: [unclosed"), 0o644); err != nil {
			t.Fatal(err)
		}
		app, _ := newTestApp(t, nil)

		report := app.Validate(inputPath)
		if report.Valid || report.Errors() == 0 {
			t.Errorf("report = %+v, want parse problem", report)
		}
	})
}

func hasProblem(r *Report, substr string) bool {
	for _, p := range r.Problems {
		if strings.Contains(p.Message, substr) {
			return true
		}
	}
	return false
}
