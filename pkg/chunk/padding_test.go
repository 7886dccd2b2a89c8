package chunk

import "testing"

func TestPaddingOverhead(t *testing.T) {
	cases := []struct {
		cipherBlock int
		want        int
	}{
		{16, 1},
		{128, 1},
		{256, 1},
		{257, 2},
		{344, 2}, // a ciphertext block above 256 bytes (RSA modulus larger than 2048 bits)
	}
	for _, c := range cases {
		if got := PaddingOverhead(c.cipherBlock); got != c.want {
			t.Errorf("PaddingOverhead(%d) = %d, want %d", c.cipherBlock, got, c.want)
		}
	}
}

func TestWritePaddingSingleByteOverhead(t *testing.T) {
	buf := make([]byte, PaddingWireSize(5, 1))
	n, err := WritePadding(buf, 5, 1)
	if err != nil {
		t.Fatalf("WritePadding error: %v", err)
	}
	if n != 6 {
		t.Fatalf("n = %d, want 6", n)
	}
	want := []byte{5, 5, 5, 5, 5, 5}
	for i, b := range want {
		if buf[i] != b {
			t.Errorf("buf[%d] = %d, want %d", i, buf[i], b)
		}
	}
}

func TestWritePaddingSingleByteOverflow(t *testing.T) {
	buf := make([]byte, 300)
	_, err := WritePadding(buf, 256, 1)
	if err != ErrPaddingTooLarge {
		t.Errorf("err = %v, want ErrPaddingTooLarge", err)
	}
}

func TestWritePaddingTwoByteOverhead(t *testing.T) {
	paddingSize := 300 // exceeds a single byte, needs the extra-padding-size byte
	buf := make([]byte, PaddingWireSize(paddingSize, 2))
	n, err := WritePadding(buf, paddingSize, 2)
	if err != nil {
		t.Fatalf("WritePadding error: %v", err)
	}
	if n != paddingSize+2 {
		t.Fatalf("n = %d, want %d", n, paddingSize+2)
	}

	low := byte(paddingSize & 0xFF)
	high := byte(paddingSize >> 8)
	if buf[0] != low {
		t.Errorf("buf[0] = %d, want %d", buf[0], low)
	}
	for i := 0; i < paddingSize; i++ {
		if buf[1+i] != low {
			t.Fatalf("buf[%d] = %d, want %d", 1+i, buf[1+i], low)
		}
	}
	if buf[1+paddingSize] != high {
		t.Errorf("extra padding byte = %d, want %d", buf[1+paddingSize], high)
	}
}

func TestWritePaddingZero(t *testing.T) {
	buf := make([]byte, 1)
	n, err := WritePadding(buf, 0, 1)
	if err != nil {
		t.Fatalf("WritePadding error: %v", err)
	}
	if n != 1 || buf[0] != 0 {
		t.Errorf("n=%d buf[0]=%d, want n=1 buf[0]=0", n, buf[0])
	}
}
