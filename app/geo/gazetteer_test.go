package geo

import (
	"testing"
)

func loadGazetteer(t *testing.T) *Gazetteer {
	t.Helper()
	g, err := Load()
	if err != nil {
		t.Fatalf("Failed to load gazetteer: %v", err)
	}
	return g
}

func TestGazetteer_Match_CountyWithQualifier(t *testing.T) {
	g := loadGazetteer(t)

	m := g.Match("Flooding closed several roads in Laurel County on Monday.")
	if len(m.Counties) != 1 || m.Counties[0] != "Laurel" {
		t.Errorf("Expected [Laurel], got %v", m.Counties)
	}
}

func TestGazetteer_Match_QualifierVariants(t *testing.T) {
	g := loadGazetteer(t)

	tests := []struct {
		text   string
		county string
	}{
		{"The Knox Co. fiscal court met Tuesday", "Knox"},
		{"Knox co officials responded", "Knox"},
		{"PULASKI COUNTY schools closed", "Pulaski"},
		{"McCreary County tourism is up", "McCreary"},
	}

	for _, tt := range tests {
		m := g.Match(tt.text)
		if len(m.Counties) != 1 || m.Counties[0] != tt.county {
			t.Errorf("Match(%q): expected [%s], got %v", tt.text, tt.county, m.Counties)
		}
	}
}

func TestGazetteer_Match_BareNameDoesNotMatch(t *testing.T) {
	g := loadGazetteer(t)

	m := g.Match("The clay on the riverbank was slick after the rain.")
	if len(m.Counties) != 0 {
		t.Errorf("Bare county name must not match, got %v", m.Counties)
	}
}

func TestGazetteer_Match_MultipleCounties(t *testing.T) {
	g := loadGazetteer(t)

	m := g.Match("The storm moved through Laurel County and Clay County overnight.")
	if len(m.Counties) != 2 {
		t.Fatalf("Expected 2 counties, got %v", m.Counties)
	}
	// Results are sorted
	if m.Counties[0] != "Clay" || m.Counties[1] != "Laurel" {
		t.Errorf("Expected [Clay Laurel], got %v", m.Counties)
	}
}

func TestGazetteer_Match_StateSignal(t *testing.T) {
	g := loadGazetteer(t)

	if !g.Match("Kentucky lawmakers passed the bill.").StateSignal {
		t.Error("Expected state signal for full state name")
	}
	if !g.Match("The London, KY. plant is hiring.").StateSignal {
		t.Error("Expected state signal for abbreviation")
	}
	if g.Match("The sky was clear.").StateSignal {
		t.Error("Unexpected state signal")
	}
}

func TestGazetteer_Match_OtherStates(t *testing.T) {
	g := loadGazetteer(t)

	m := g.Match("Police in Tennessee arrested the suspect near Nashville.")
	if len(m.OtherStates) != 1 || m.OtherStates[0] != "Tennessee" {
		t.Errorf("Expected [Tennessee], got %v", m.OtherStates)
	}

	// Ohio County is a Kentucky county; the county match and the
	// neighboring-state mention coexist
	m = g.Match("The Ohio County fair opens Friday.")
	if len(m.Counties) != 1 || m.Counties[0] != "Ohio" {
		t.Errorf("Expected Ohio county match, got %v", m.Counties)
	}
	if len(m.OtherStates) == 0 {
		t.Error("Expected Ohio to also register as a neighboring-state mention")
	}
}

func TestGazetteer_CityCounties(t *testing.T) {
	g := loadGazetteer(t)

	counties := g.CityCounties("A new restaurant opened in Somerset last week.")
	if len(counties) != 1 || counties[0] != "Pulaski" {
		t.Errorf("Expected [Pulaski], got %v", counties)
	}

	counties = g.CityCounties("Crews repaved Main Street in Bowling Green.")
	if len(counties) != 1 || counties[0] != "Warren" {
		t.Errorf("Expected [Warren], got %v", counties)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Laurel County, Ky.", "laurel county ky"},
		{"  Multiple   spaces\n\tand tabs ", "multiple spaces and tabs"},
		{"Café-style décor!", "cafe style decor"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
