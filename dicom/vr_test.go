package dicom

import "testing"

func TestLookupVRByName(t *testing.T) {
	vr, err := LookupVRByName("PN")
	if err != nil {
		t.Fatalf("LookupVRByName(PN) error: %v", err)
	}
	if vr != PNVR {
		t.Fatalf("LookupVRByName(PN) = %v, want PNVR", vr)
	}
}

func TestLookupVRByNameUnknown(t *testing.T) {
	if _, err := LookupVRByName("ZZ"); err == nil {
		t.Fatalf("LookupVRByName(ZZ) error = nil, want an error")
	}
}

func TestVRHeaderSize(t *testing.T) {
	tests := []struct {
		name string
		vr   *VR
		want int
	}{
		{"short header (DA)", DAVR, 8},
		{"long header (SQ)", SQVR, 12},
		{"long header (OB)", OBVR, 12},
		{"short header (US)", USVR, 8},
		{"short header (LT)", LTVR, 8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.vr.HeaderSize(); got != tc.want {
				t.Fatalf("HeaderSize() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestVRIsString(t *testing.T) {
	tests := []struct {
		name string
		vr   *VR
		want bool
	}{
		{"PN is a string VR", PNVR, true},
		{"UI is a string VR", UIVR, true},
		{"US is not a string VR", USVR, false},
		{"SQ is not a string VR", SQVR, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.vr.IsString(); got != tc.want {
				t.Fatalf("IsString() = %v, want %v", got, tc.want)
			}
		})
	}
}
