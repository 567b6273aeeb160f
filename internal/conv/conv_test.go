package conv

import (
	"math"
	"testing"
)

func TestIntToUint32(t *testing.T) {
	tests := []struct {
		in   int
		want uint32
	}{
		{0, 0},
		{1, 1},
		{65536, 65536},
		{math.MaxUint32, math.MaxUint32},
	}
	for _, tt := range tests {
		if got := IntToUint32(tt.in); got != tt.want {
			t.Errorf("IntToUint32(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestIntToUint32_PanicsOnNegative(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("IntToUint32(-1) did not panic")
		}
	}()
	IntToUint32(-1)
}

func TestUint64ToUint32_PanicsOnOverflow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Uint64ToUint32(MaxUint32+1) did not panic")
		}
	}()
	Uint64ToUint32(math.MaxUint32 + 1)
}

func TestAddUint32(t *testing.T) {
	tests := []struct {
		a, b   uint32
		want   uint32
		wantOK bool
	}{
		{1, 2, 3, true},
		{math.MaxUint32, 0, math.MaxUint32, true},
		{math.MaxUint32, 1, 0, false},
		{1 << 31, 1 << 31, 0, false},
	}
	for _, tt := range tests {
		got, ok := AddUint32(tt.a, tt.b)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("AddUint32(%d, %d) = (%d, %v), want (%d, %v)", tt.a, tt.b, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestMulUint32(t *testing.T) {
	tests := []struct {
		a, b   uint32
		want   uint32
		wantOK bool
	}{
		{0, math.MaxUint32, 0, true},
		{8, 1000, 8000, true},
		{8, 1 << 29, 0, false},
		{1 << 16, 1 << 16, 0, false},
	}
	for _, tt := range tests {
		got, ok := MulUint32(tt.a, tt.b)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("MulUint32(%d, %d) = (%d, %v), want (%d, %v)", tt.a, tt.b, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestAlignUp(t *testing.T) {
	tests := []struct {
		n, align uint32
		want     uint32
		wantOK   bool
	}{
		{0, 8, 0, true},
		{1, 8, 8, true},
		{8, 8, 8, true},
		{9, 8, 16, true},
		{math.MaxUint32 - 2, 8, 0, false},
	}
	for _, tt := range tests {
		got, ok := AlignUp(tt.n, tt.align)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("AlignUp(%d, %d) = (%d, %v), want (%d, %v)", tt.n, tt.align, got, ok, tt.want, tt.wantOK)
		}
	}
}
