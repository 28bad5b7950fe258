package component

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseFelt(t *testing.T) {
	tests := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{"0x0", 0, false},
		{"0x00", 0, false},
		{"0x2a", 42, false},
		{"0x002A", 42, false},
		{" 0x10 ", 16, false},
		{"42", 0, true},
		{"0x", 0, true},
		{"0xzz", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFelt(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFelt) {
					t.Errorf("ParseFelt(%q) error = %v, want ErrInvalidFelt", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFelt(%q) error = %v", tt.in, err)
			}
			if got.Uint64() != tt.want {
				t.Errorf("ParseFelt(%q) = %d, want %d", tt.in, got.Uint64(), tt.want)
			}
		})
	}
}

func TestShortString(t *testing.T) {
	f, err := ShortString("Pragma Hackathon")
	if err != nil {
		t.Fatalf("ShortString() error = %v", err)
	}
	if f.Hex() != "0x507261676d61204861636b6174686f6e" {
		t.Errorf("ShortString() = %s", f.Hex())
	}
	s, err := f.ShortStringValue()
	if err != nil || s != "Pragma Hackathon" {
		t.Errorf("ShortStringValue() = %q, %v", s, err)
	}

	if _, err := ShortString("this string is definitely too long"); !errors.Is(err, ErrShortStringSize) {
		t.Errorf("ShortString(long) error = %v, want ErrShortStringSize", err)
	}
}

func TestFeltJSON(t *testing.T) {
	var got struct {
		A Felt `json:"a"`
		B Felt `json:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":"0xff","b":7}`), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.A.Uint64() != 255 || got.B.Uint64() != 7 {
		t.Errorf("got a=%d b=%d", got.A.Uint64(), got.B.Uint64())
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"a":"0xff","b":"0x7"}` {
		t.Errorf("Marshal() = %s", data)
	}
}

func TestParseFelts(t *testing.T) {
	values, err := ParseFelts([]string{"0x1", "0x2"})
	if err != nil || len(values) != 2 || values[1].Uint64() != 2 {
		t.Fatalf("ParseFelts() = %v, %v", values, err)
	}
	if _, err := ParseFelts([]string{"0x1", "nope"}); !errors.Is(err, ErrInvalidFelt) {
		t.Errorf("ParseFelts() error = %v, want ErrInvalidFelt", err)
	}
	if hex := FeltsToHex(values); hex[0] != "0x1" || hex[1] != "0x2" {
		t.Errorf("FeltsToHex() = %v", hex)
	}
}
