package catalog

import "testing"

func TestDefault_Loads(t *testing.T) {
	c := Default()

	if len(c.Grades) < 3 {
		t.Fatalf("Expected at least 3 grades, got %d", len(c.Grades))
	}
	if len(c.SessionTypes) == 0 || len(c.Rites) == 0 || len(c.DressCodes) == 0 {
		t.Error("Expected session types, rites and dress codes to be populated")
	}
}

func TestGradeRank(t *testing.T) {
	c := Default()

	if c.GradeRank("aprendiz") != 1 {
		t.Errorf("Expected Aprendiz rank 1, got %d", c.GradeRank("aprendiz"))
	}
	if c.GradeRank("Mestre") <= c.GradeRank("Companheiro") {
		t.Error("Expected Mestre to outrank Companheiro")
	}
	if c.GradeRank("unknown") != 0 {
		t.Error("Expected unknown grade to rank 0")
	}
}

func TestGradeAdmits(t *testing.T) {
	c := Default()

	tests := []struct {
		minGrade, member string
		want             bool
	}{
		{"Aprendiz", "Aprendiz", true},
		{"Mestre", "Aprendiz", false},
		{"Companheiro", "Mestre", true},
		{"", "Aprendiz", true},
	}
	for _, tt := range tests {
		if got := c.GradeAdmits(tt.minGrade, tt.member); got != tt.want {
			t.Errorf("GradeAdmits(%q, %q) = %v, want %v", tt.minGrade, tt.member, got, tt.want)
		}
	}
}

func TestParse_RejectsDuplicateRank(t *testing.T) {
	doc := []byte("grades:\n  - name: A\n    rank: 1\n  - name: B\n    rank: 1\n")
	if _, err := Parse(doc); err == nil {
		t.Error("Expected duplicate rank to be rejected")
	}
}
