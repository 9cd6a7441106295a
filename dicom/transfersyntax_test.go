package dicom

import "testing"

func TestLookupTransferSyntax(t *testing.T) {
	tests := []struct {
		name string
		uid  string
		want TransferSyntax
	}{
		{"implicit vr little endian", ImplicitVRLittleEndianUID, ImplicitVRLittleEndian},
		{"explicit vr little endian", ExplicitVRLittleEndianUID, ExplicitVRLittleEndian},
		{"explicit vr big endian", ExplicitVRBigEndianUID, ExplicitVRBigEndian},
		{"deflated explicit vr little endian", DeflatedExplicitVRLittleEndianUID, DeflatedExplicitVRLittleEndian},
		{"deflated explicit vr little endian, retired uid", DeflatedExplicitVRLittleEndianRetiredUID, DeflatedExplicitVRLittleEndian},
		{"unrecognized uid falls back to explicit vr little endian", "1.2.840.10008.1.2.4.70", ExplicitVRLittleEndian},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := LookupTransferSyntax(tc.uid); got != tc.want {
				t.Fatalf("LookupTransferSyntax(%q) = %v, want %v", tc.uid, got, tc.want)
			}
		})
	}
}

func TestTransferSyntaxByteOrder(t *testing.T) {
	if ExplicitVRLittleEndian.ByteOrder() == ExplicitVRBigEndian.ByteOrder() {
		t.Fatalf("little and big endian syntaxes must not share a ByteOrder")
	}
}

func TestHasLongHeader(t *testing.T) {
	tests := []struct {
		name string
		vr   *VR
		want bool
	}{
		{"SQ is a long header", SQVR, true},
		{"OB is a long header", OBVR, true},
		{"DA is a short header", DAVR, false},
		{"LT is a short header, despite its large practical value size", LTVR, false},
		{"nil VR (implicit VR elements carry no VR) is not a long header", nil, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := hasLongHeader(tc.vr); got != tc.want {
				t.Fatalf("hasLongHeader(%v) = %v, want %v", tc.vr, got, tc.want)
			}
		})
	}
}
