package domain

import "testing"

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in   string
		want Location
		ok   bool
	}{
		{"12.9716,77.5946", Location{Lat: 12.9716, Lng: 77.5946}, true},
		{" -33.5 , 151 ", Location{Lat: -33.5, Lng: 151}, true},
		{"91,0", Location{}, false},
		{"0,181", Location{}, false},
		{"MG Road, Bangalore", Location{}, false},
		{"", Location{}, false},
	}

	for _, tc := range tests {
		got, ok := ParseLocation(tc.in)
		if ok != tc.ok {
			t.Errorf("ParseLocation(%q) ok = %v, want %v", tc.in, ok, tc.ok)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseLocation(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestLocationKeyAndCoords(t *testing.T) {
	l := Location{Lat: 1.5, Lng: -2.25}
	if l.Key() != "1.500000,-2.250000" {
		t.Fatalf("Key = %q", l.Key())
	}
	c := l.CoordsToList()
	if c[0] != -2.25 || c[1] != 1.5 {
		t.Fatalf("CoordsToList = %v, want [lng lat]", c)
	}
}

func TestPartnerReturnLocation(t *testing.T) {
	p := &Partner{CurrentLocation: Location{Lat: 1, Lng: 1}}
	if p.ReturnLocation() != p.CurrentLocation {
		t.Fatalf("without home base, return location should be current location")
	}

	home := Location{Lat: 2, Lng: 2}
	p.HomeBase = &home
	if p.ReturnLocation() != home {
		t.Fatalf("return location = %v, want %v", p.ReturnLocation(), home)
	}
}

func TestPartnerValidateHomeBase(t *testing.T) {
	p := &Partner{Name: "A", MaxPackages: 1, MaxDeliveryTime: 60, CurrentLocation: Location{Lat: 1, Lng: 1}}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := Location{Lat: 500, Lng: -900}
	p.HomeBase = &bad
	if err := p.Validate(); err == nil {
		t.Fatalf("home base %v should be rejected", bad)
	}
}

func TestOrderValidatePackageBounds(t *testing.T) {
	for _, n := range []int{0, 6} {
		o := &Order{PackageCount: n}
		if err := o.Validate(); err == nil {
			t.Errorf("package count %d should be rejected", n)
		}
	}
	o := &Order{PackageCount: 5}
	if err := o.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
