package audit

import (
	"testing"

	"github.com/omniscale/osmtables/mapping/config"
)

func TestAddressNormalize(t *testing.T) {
	a, err := NewAddressNormalizer(config.Default().Address)
	if err != nil {
		t.Fatal(err)
	}

	for _, test := range []struct {
		input    string
		expected string
	}{
		{"N. Lincoln St.", "North Lincoln Street"},
		{"123 W Madison", "123 West Madison"},
		{"n chicago st", "North Chicago Street"},
		{"WEST LEXINGTON ST.", "West Lexington Street"},
		{"jianguomen ave", "Jianguomen Avenue"},
		{"e grand str", "East Grand Street"},
		{"Research Bldg. 2", "Research Building 2"},
		{"lake shore dr  ", "Lake Shore Drive"},
		{"S  Wacker Dr", "South Wacker Drive"},
		{"Stone Rd", "Stone Road"},
		{"Main Street", "Main Street"},
		{"Eastern Pky", "Eastern Parkway"},
		{"Nst", "Nst"},
		{"", ""},
	} {
		if result := a.Normalize(test.input); result != test.expected {
			t.Errorf("%q: got %q, want %q", test.input, result, test.expected)
		}
	}
}

func TestAddressNormalizeNoAbbreviations(t *testing.T) {
	a, err := NewAddressNormalizer(config.Address{})
	if err != nil {
		t.Fatal(err)
	}
	if result := a.Normalize("n lincoln st "); result != "N Lincoln St" {
		t.Fatal(result)
	}
}
