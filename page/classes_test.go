package page

import "testing"

// TestClassify covers spec.md scenario S1 (class mapping).
func TestClassify(t *testing.T) {
	cases := []struct {
		size     int64
		expected int64
	}{
		{1, 16},
		{16, 16},
		{17, 32},
		{32, 32},
		{513, 1024},
	}
	for _, c := range cases {
		idx := Classify(c.size)
		if idx == Oversize {
			t.Fatalf("Classify(%d): got Oversize, want class %d", c.size, c.expected)
		}
		if got := Classes[idx]; got != c.expected {
			t.Errorf("Classify(%d) = class %d, want %d", c.size, got, c.expected)
		}
	}
}

func TestClassifyOversize(t *testing.T) {
	largest := Classes[len(Classes)-1]
	if idx := Classify(largest); idx == Oversize {
		t.Errorf("Classify(%d) should still fit the largest class", largest)
	}
	if idx := Classify(largest + 1); idx != Oversize {
		t.Errorf("Classify(%d) = %d, want Oversize", largest+1, idx)
	}
	if idx := Classify(PageSize); idx != Oversize {
		t.Errorf("Classify(PageSize) = %d, want Oversize", idx)
	}
}

func TestNSlots(t *testing.T) {
	for i, size := range Classes {
		if got := NSlots(i); got != PageSize/size {
			t.Errorf("NSlots(%d) = %d, want %d", i, got, PageSize/size)
		}
	}
}
