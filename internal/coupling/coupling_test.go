package coupling

import (
	"strings"
	"testing"
)

func TestLevelOf(t *testing.T) {
	tests := []struct {
		strength float64
		want     Level
	}{
		{1.0, LevelHigh},
		{0.7, LevelHigh},
		{0.69, LevelMedium},
		{0.4, LevelMedium},
		{0.39, LevelLow},
		{0, LevelLow},
	}
	for _, tt := range tests {
		if got := LevelOf(tt.strength); got != tt.want {
			t.Errorf("LevelOf(%v) = %s, want %s", tt.strength, got, tt.want)
		}
	}
}

func TestGenerateInsights_Hidden(t *testing.T) {
	couplings := []Coupling{
		{File: "b.ts", FilePath: "src/b.ts", CouplingStrength: 0.8, Level: LevelHigh, Hidden: true},
		{File: "c.ts", FilePath: "src/c.ts", CouplingStrength: 0.5, Level: LevelMedium},
	}
	insights := generateInsights(couplings)
	found := false
	for _, in := range insights {
		if strings.Contains(in, "no import relationship") {
			found = true
		}
	}
	if !found {
		t.Errorf("hidden coupling insight missing from %v", insights)
	}
}

func TestGenerateInsights_TestCoupling(t *testing.T) {
	couplings := []Coupling{
		{File: "server.test.ts", FilePath: "src/server.test.ts", CouplingStrength: 0.9, Level: LevelHigh},
	}
	insights := generateInsights(couplings)
	found := false
	for _, in := range insights {
		if strings.Contains(in, "test updates") {
			found = true
		}
	}
	if !found {
		t.Errorf("test coupling insight missing from %v", insights)
	}
}

func TestGenerateInsights_StrongCoupling(t *testing.T) {
	couplings := []Coupling{
		{File: "a.ts", FilePath: "src/a.ts", CouplingStrength: 0.9, Level: LevelHigh},
		{File: "b.ts", FilePath: "src/b.ts", CouplingStrength: 0.8, Level: LevelHigh},
		{File: "c.ts", FilePath: "src/c.ts", CouplingStrength: 0.7, Level: LevelHigh},
	}
	insights := generateInsights(couplings)
	found := false
	for _, in := range insights {
		if strings.Contains(in, "Strong coupling detected with 3 other files") {
			found = true
		}
	}
	if !found {
		t.Errorf("strong coupling insight missing from %v", insights)
	}
}

func TestGenerateInsights_Fallback(t *testing.T) {
	insights := generateInsights(nil)
	if len(insights) != 1 || insights[0] != "No significant coupling patterns detected" {
		t.Errorf("insights = %v, want the no-patterns fallback", insights)
	}
}

func TestGenerateRecommendations(t *testing.T) {
	couplings := []Coupling{
		{File: "b.ts", FilePath: "src/b.ts", CouplingStrength: 0.9, Level: LevelHigh, Hidden: true},
		{File: "c.ts", FilePath: "src/c.ts", CouplingStrength: 0.6, Level: LevelMedium},
		{File: "d.ts", FilePath: "src/d.ts", CouplingStrength: 0.5, Level: LevelMedium},
		{File: "e.ts", FilePath: "src/e.ts", CouplingStrength: 0.4, Level: LevelMedium},
	}
	recs := generateRecommendations(couplings, "src/a.ts")
	if len(recs) == 0 {
		t.Fatal("no recommendations")
	}
	// Review recommendation names only the top three couplings.
	if !strings.Contains(recs[0], "b.ts, c.ts, d.ts") {
		t.Errorf("review recommendation = %q, want top three files", recs[0])
	}
	if strings.Contains(recs[0], "e.ts") {
		t.Errorf("review recommendation includes fourth coupling: %q", recs[0])
	}

	foundHidden := false
	for _, r := range recs {
		if strings.Contains(r, "hidden dependency") {
			foundHidden = true
		}
	}
	if !foundHidden {
		t.Errorf("hidden high coupling recommendation missing from %v", recs)
	}
}

func TestGenerateRecommendations_Empty(t *testing.T) {
	if recs := generateRecommendations(nil, "src/a.ts"); len(recs) != 0 {
		t.Errorf("recommendations = %v, want none", recs)
	}
}

func TestIsTestPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"src/server.test.ts", true},
		{"src/server.spec.ts", true},
		{"internal/store/store_test.go", true},
		{"src/__tests__/server.ts", true},
		{"src/server.ts", false},
	}
	for _, tt := range tests {
		if got := isTestPath(tt.path); got != tt.want {
			t.Errorf("isTestPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestIsConfigPath(t *testing.T) {
	if !isConfigPath("tsconfig.json") || !isConfigPath("ci.yaml") || !isConfigPath("specter.toml") {
		t.Error("config paths not recognized")
	}
	if isConfigPath("src/server.ts") {
		t.Error("source file treated as config")
	}
}
